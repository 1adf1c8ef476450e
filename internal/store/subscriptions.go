package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"loom-downtime-backend/internal/model"
)

// SaveSubscription upserts the subscription and replaces its machine set.
func (s *gormStore) SaveSubscription(ctx context.Context, sub model.PushSubscription, machines []int64) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = s.now()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Machines").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return err
		}

		var found []*model.Machine
		if len(machines) > 0 {
			if err := tx.Find(&found, machines).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&sub).Association("Machines").Replace(found); err != nil {
			return fmt.Errorf("replace subscribed machines: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Preload("Machines").First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return model.PushSubscription{}, notFound(err, ErrNotFound)
	}
	return sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := model.PushSubscription{Endpoint: endpoint}
		if err := tx.Model(&sub).Association("Machines").Clear(); err != nil {
			return err
		}
		return tx.Delete(&sub).Error
	})
}

// SubscriptionsForMachine returns every subscription watching a machine.
func (s *gormStore) SubscriptionsForMachine(ctx context.Context, code int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_machine_mapping ON subscription_machine_mapping.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("subscription_machine_mapping.machine_code = ?", code).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("subscriptions for machine %d: %w", code, err)
	}
	return subs, nil
}

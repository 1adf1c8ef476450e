package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"loom-downtime-backend/internal/model"
)

func (s *gormStore) ListReasons(ctx context.Context) ([]model.Reason, error) {
	var reasons []model.Reason
	if err := s.db.WithContext(ctx).Order("code").Find(&reasons).Error; err != nil {
		return nil, fmt.Errorf("list reasons: %w", err)
	}
	return reasons, nil
}

// UpsertReason creates the reason or replaces the description of an
// existing code.
func (s *gormStore) UpsertReason(ctx context.Context, r model.Reason) (model.Reason, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"description"}),
	}).Create(&r).Error
	if err != nil {
		return model.Reason{}, fmt.Errorf("upsert reason %d: %w", r.Code, err)
	}
	return r, nil
}

func (s *gormStore) DeleteReason(ctx context.Context, code int64) error {
	if err := s.db.WithContext(ctx).Delete(&model.Reason{}, code).Error; err != nil {
		return fmt.Errorf("delete reason %d: %w", code, err)
	}
	return nil
}

func (s *gormStore) ListShiftWindows(ctx context.Context) ([]model.ShiftWindow, error) {
	var windows []model.ShiftWindow
	if err := s.db.WithContext(ctx).Order("weekday").Order("shift").Find(&windows).Error; err != nil {
		return nil, fmt.Errorf("list shift windows: %w", err)
	}
	return windows, nil
}

// UpsertShiftWindow replaces the definition of (weekday, shift).
func (s *gormStore) UpsertShiftWindow(ctx context.Context, w model.ShiftWindow) (model.ShiftWindow, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "weekday"}, {Name: "shift"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_time", "end_time"}),
	}).Create(&w).Error
	if err != nil {
		return model.ShiftWindow{}, fmt.Errorf("upsert shift window %d/%d: %w", w.Weekday, w.Shift, err)
	}
	return w, nil
}

func (s *gormStore) DeleteShiftWindow(ctx context.Context, weekday, shift int) error {
	err := s.db.WithContext(ctx).
		Where("weekday = ? AND shift = ?", weekday, shift).
		Delete(&model.ShiftWindow{}).Error
	if err != nil {
		return fmt.Errorf("delete shift window %d/%d: %w", weekday, shift, err)
	}
	return nil
}

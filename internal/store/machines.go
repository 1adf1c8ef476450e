package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"loom-downtime-backend/internal/model"
	"loom-downtime-backend/internal/parse"
)

func (s *gormStore) ListMachines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	if err := s.db.WithContext(ctx).Order("code").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	return machines, nil
}

func (s *gormStore) GetMachine(ctx context.Context, code int64) (model.Machine, error) {
	var m model.Machine
	if err := s.db.WithContext(ctx).First(&m, "code = ?", code).Error; err != nil {
		return model.Machine{}, notFound(err, ErrMachineNotFound)
	}
	return m, nil
}

// CreateMachine assigns the next free code, one past the highest in use.
func (s *gormStore) CreateMachine(ctx context.Context, name string) (model.Machine, error) {
	var m model.Machine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxCode int64
		if err := tx.Model(&model.Machine{}).Select("COALESCE(MAX(code), 0)").Scan(&maxCode).Error; err != nil {
			return err
		}
		code := maxCode + 1
		m = model.Machine{Code: code, Name: parse.MachineName(code, name)}
		return tx.Create(&m).Error
	})
	if err != nil {
		return model.Machine{}, fmt.Errorf("create machine: %w", err)
	}
	return m, nil
}

// RenameMachine sets a new name. A blank name restores the default one.
func (s *gormStore) RenameMachine(ctx context.Context, code int64, name string) (model.Machine, error) {
	m, err := s.GetMachine(ctx, code)
	if err != nil {
		return model.Machine{}, err
	}
	m.Name = parse.MachineName(code, name)
	if err := s.db.WithContext(ctx).Model(&m).Update("name", m.Name).Error; err != nil {
		return model.Machine{}, fmt.Errorf("rename machine %d: %w", code, err)
	}
	return m, nil
}

func (s *gormStore) DeleteMachine(ctx context.Context, code int64) error {
	if err := s.db.WithContext(ctx).Delete(&model.Machine{}, code).Error; err != nil {
		return fmt.Errorf("delete machine %d: %w", code, err)
	}
	return nil
}

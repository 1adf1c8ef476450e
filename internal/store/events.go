package store

import (
	"context"
	"fmt"

	"loom-downtime-backend/internal/model"
)

// AppendEvent stores a new event. Events are never updated.
func (s *gormStore) AppendEvent(ctx context.Context, e *model.Event) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = s.now()
	}
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("append event for machine %d: %w", e.MachineCode, err)
	}
	return nil
}

// ListEvents returns events ordered by machine and time.
func (s *gormStore) ListEvents(ctx context.Context, f EventFilter) ([]model.Event, error) {
	q := s.db.WithContext(ctx).Model(&model.Event{})
	if len(f.Machines) > 0 {
		q = q.Where("machine_code IN ?", f.Machines)
	}
	if !f.Until.IsZero() {
		q = q.Where("at <= ?", f.Until)
	}

	var events []model.Event
	if err := q.Order("machine_code").Order("at").Order("id").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

package model

import "time"

// Event is one recorded state change of a machine. State 0 is stopped and
// 1 is running.
type Event struct {
	ID          int64     `gorm:"primaryKey"`
	MachineCode int64     `gorm:"not null;index:idx_events_machine_at,priority:1"`
	At          time.Time `gorm:"not null;index:idx_events_machine_at,priority:2"`
	State       int       `gorm:"not null"`
	Reason      *int64
	Shift       int       `gorm:"not null"`
	RecordedAt  time.Time `gorm:"not null"`
	RecordedBy  int64
}

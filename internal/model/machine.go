package model

import "time"

// Machine represents a loom on the plant floor.
type Machine struct {
	Code      int64     `gorm:"primaryKey;autoIncrement:false" json:"code"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reason is a stoppage reason code.
type Reason struct {
	Code        int64  `gorm:"primaryKey;autoIncrement:false" json:"code"`
	Description string `gorm:"size:256;not null" json:"description"`
}

// ShiftWindow is the weekly definition of one shift on one weekday.
// Start and End are "HH:MM"; End <= Start crosses midnight.
type ShiftWindow struct {
	Weekday int    `gorm:"primaryKey;autoIncrement:false" json:"weekday"` // 1=Monday .. 7=Sunday
	Shift   int    `gorm:"primaryKey;autoIncrement:false" json:"shift"`
	Start   string `gorm:"column:start_time;size:5;not null" json:"start"`
	End     string `gorm:"column:end_time;size:5;not null" json:"end"`
}

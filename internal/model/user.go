package model

import "time"

// User is an operator account.
type User struct {
	ID           int64  `gorm:"primaryKey"`
	Name         string `gorm:"size:128;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:128;not null"`
	Role         int    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a bearer token issued at login.
type Session struct {
	Token     string    `gorm:"primaryKey;size:64"`
	UserID    int64     `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

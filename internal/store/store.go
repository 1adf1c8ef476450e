package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"loom-downtime-backend/internal/model"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrMachineNotFound = errors.New("machine not found")
	ErrDuplicateName   = errors.New("name already exists")
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	ListMachines(ctx context.Context) ([]model.Machine, error)
	GetMachine(ctx context.Context, code int64) (model.Machine, error)
	CreateMachine(ctx context.Context, name string) (model.Machine, error)
	RenameMachine(ctx context.Context, code int64, name string) (model.Machine, error)
	DeleteMachine(ctx context.Context, code int64) error

	ListReasons(ctx context.Context) ([]model.Reason, error)
	UpsertReason(ctx context.Context, r model.Reason) (model.Reason, error)
	DeleteReason(ctx context.Context, code int64) error

	ListShiftWindows(ctx context.Context) ([]model.ShiftWindow, error)
	UpsertShiftWindow(ctx context.Context, w model.ShiftWindow) (model.ShiftWindow, error)
	DeleteShiftWindow(ctx context.Context, weekday, shift int) error

	AppendEvent(ctx context.Context, e *model.Event) error
	ListEvents(ctx context.Context, f EventFilter) ([]model.Event, error)

	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	FindUserByName(ctx context.Context, name string) (model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	UpdateUser(ctx context.Context, id int64, up UserUpdate) (model.User, error)
	DeleteUser(ctx context.Context, id int64) error
	CreateSession(ctx context.Context, userID int64) (string, error)
	UserByToken(ctx context.Context, token string) (model.User, error)

	SaveSubscription(ctx context.Context, sub model.PushSubscription, machines []int64) error
	GetSubscription(ctx context.Context, endpoint string) (model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsForMachine(ctx context.Context, code int64) ([]model.PushSubscription, error)
}

// EventFilter narrows ListEvents. Zero values mean no restriction.
type EventFilter struct {
	Machines []int64
	Until    time.Time
}

// UserUpdate carries the fields to change; nil fields are left alone.
type UserUpdate struct {
	Name         *string
	PasswordHash *string
	Role         *int
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, now: time.Now}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

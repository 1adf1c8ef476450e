package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"loom-downtime-backend/config"
	"loom-downtime-backend/internal/model"
)

// Init opens the configured database, applies pool settings and runs
// migrations.
func Init(cfg *config.DatabaseConfig, log zerolog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	log.Info().Str("driver", cfg.Driver).Msg("running database migrations")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info().Msg("database initialization complete")
	return db, nil
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.Driver) {
	case "postgres", "postgresql":
		return postgres.Open(cfg.DSN), nil
	case "sqlite", "":
		return sqlite.Open(cfg.DSN), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Machine{},
		&model.Reason{},
		&model.ShiftWindow{},
		&model.Event{},
		&model.User{},
		&model.Session{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// DefaultReasons are inserted when the reason table is empty.
var DefaultReasons = []model.Reason{
	{Code: 103, Description: "Sem operador"},
	{Code: 204, Description: "Falta programação"},
}

// DefaultShiftWindows returns the three daily shifts for every weekday.
func DefaultShiftWindows() []model.ShiftWindow {
	out := make([]model.ShiftWindow, 0, 21)
	for wd := 1; wd <= 7; wd++ {
		out = append(out,
			model.ShiftWindow{Weekday: wd, Shift: 1, Start: "05:00", End: "14:00"},
			model.ShiftWindow{Weekday: wd, Shift: 2, Start: "14:00", End: "22:00"},
			model.ShiftWindow{Weekday: wd, Shift: 3, Start: "22:00", End: "05:00"},
		)
	}
	return out
}

// Seed fills empty reference tables and creates the bootstrap admin when
// there are no users. passwordHash is the stored form of the admin password.
func Seed(db *gorm.DB, adminName, passwordHash string, log zerolog.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Reason{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if err := tx.Create(&DefaultReasons).Error; err != nil {
				return fmt.Errorf("seed reasons: %w", err)
			}
			log.Info().Int("count", len(DefaultReasons)).Msg("seeded stoppage reasons")
		}

		if err := tx.Model(&model.ShiftWindow{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			windows := DefaultShiftWindows()
			if err := tx.Create(&windows).Error; err != nil {
				return fmt.Errorf("seed shift windows: %w", err)
			}
			log.Info().Int("count", len(windows)).Msg("seeded shift windows")
		}

		if err := tx.Model(&model.User{}).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if adminName == "" {
				return errors.New("seed admin: empty name")
			}
			admin := model.User{Name: adminName, PasswordHash: passwordHash, Role: 6}
			if err := tx.Create(&admin).Error; err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}
			log.Info().Str("user", adminName).Msg("created bootstrap admin")
		}
		return nil
	})
}

package db

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom-downtime-backend/config"
	"loom-downtime-backend/internal/model"
)

func TestInit_SeedIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	db, err := Init(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:seed_test?mode=memory&cache=shared",
	}, log)
	require.NoError(t, err)

	require.NoError(t, Seed(db, "admin", "hash", log))
	require.NoError(t, Seed(db, "admin", "other", log))

	var reasons []model.Reason
	require.NoError(t, db.Order("code").Find(&reasons).Error)
	require.Len(t, reasons, 2)
	assert.Equal(t, "Sem operador", reasons[0].Description)

	var windows int64
	require.NoError(t, db.Model(&model.ShiftWindow{}).Count(&windows).Error)
	assert.Equal(t, int64(21), windows)

	var users []model.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, 6, users[0].Role)
	assert.Equal(t, "hash", users[0].PasswordHash)

	assert.Contains(t, buf.String(), "created bootstrap admin")
}

func TestInit_UnknownDriver(t *testing.T) {
	_, err := Init(&config.DatabaseConfig{Driver: "oracle", DSN: "x"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestDefaultShiftWindows(t *testing.T) {
	ws := DefaultShiftWindows()
	require.Len(t, ws, 21)
	assert.Equal(t, model.ShiftWindow{Weekday: 7, Shift: 3, Start: "22:00", End: "05:00"}, ws[20])
}

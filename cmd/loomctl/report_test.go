package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"loom-downtime-backend/internal/db"
	"loom-downtime-backend/internal/model"
	"loom-downtime-backend/internal/report"
	"loom-downtime-backend/internal/store"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, db.Migrate(gdb))
	require.NoError(t, db.Seed(gdb, "admin", "admin", zerolog.Nop()))

	st := store.NewGormStore(gdb)
	ctx := context.Background()
	for range 2 {
		_, err := st.CreateMachine(ctx, "")
		require.NoError(t, err)
	}

	reason := int64(103)
	for _, e := range []model.Event{
		{MachineCode: 1, At: time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC), State: 0, Reason: &reason, Shift: 1},
		{MachineCode: 1, At: time.Date(2024, 1, 1, 7, 30, 0, 0, time.UTC), State: 1, Shift: 1},
		{MachineCode: 2, At: time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC), State: 0, Shift: 1},
		{MachineCode: 2, At: time.Date(2024, 1, 2, 12, 45, 0, 0, time.UTC), State: 1, Shift: 1},
	} {
		require.NoError(t, st.AppendEvent(ctx, &e))
	}
	return st
}

// lines splits tabular output into whitespace separated fields.
func lines(out string) [][]string {
	var rows [][]string
	for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
		rows = append(rows, strings.Fields(l))
	}
	return rows
}

var testRange = reportRange{
	since:  "2024-01-01",
	until:  "2024-01-02",
	shifts: []int{1},
	now:    time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
}

func Test_runMachineReport(t *testing.T) {
	st := newStore(t)

	var buf bytes.Buffer
	require.NoError(t, runMachineReport(context.Background(), &buf, st, time.UTC, testRange, nil, report.ModeStopped))
	assert.Equal(t, [][]string{
		{"machine", "2024-01-01", "2024-01-02", "total"},
		{"tear01", "1:30", "0:00", "1:30"},
		{"tear02", "0:00", "0:45", "0:45"},
		{"total", "1:30", "0:45", "2:15"},
	}, lines(buf.String()))

	buf.Reset()
	require.NoError(t, runMachineReport(context.Background(), &buf, st, time.UTC, testRange, []int{2}, report.ModeRunning))
	assert.Equal(t, [][]string{
		{"machine", "2024-01-01", "2024-01-02", "total"},
		{"tear02", "9:00", "8:15", "17:15"},
		{"total", "9:00", "8:15", "17:15"},
	}, lines(buf.String()))
}

func Test_runReasonReport(t *testing.T) {
	st := newStore(t)

	var buf bytes.Buffer
	require.NoError(t, runReasonReport(context.Background(), &buf, st, time.UTC, testRange, 2, nil))
	rows := lines(buf.String())
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"0", "0:00", "0:45", "0:45"}, rows[1])
	assert.Equal(t, "Sem", rows[2][0])

	err := runReasonReport(context.Background(), &buf, st, time.UTC, testRange, 9, nil)
	assert.ErrorIs(t, err, store.ErrMachineNotFound)
}

func Test_reportRange_days(t *testing.T) {
	r := reportRange{now: time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)}
	days, err := r.days(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}, days)

	_, err = reportRange{since: "2024-03-05", until: "2024-03-01"}.days(time.UTC)
	assert.Error(t, err)
	_, err = reportRange{since: "05/03/2024"}.days(time.UTC)
	assert.Error(t, err)
}

func Test_hours(t *testing.T) {
	assert.Equal(t, "0:00", hours(0))
	assert.Equal(t, "0:45", hours(45))
	assert.Equal(t, "17:15", hours(1035))
}

package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 is a Monday.
func at(day, hour, minute int) time.Time {
	return time.Date(2024, 1, day, hour, minute, 0, 0, time.UTC)
}

func plantCalendar() *Calendar {
	var ws []Window
	for wd := 1; wd <= 7; wd++ {
		ws = append(ws,
			Window{Weekday: wd, Shift: 1, Start: Clock{5, 0}, End: Clock{14, 0}},
			Window{Weekday: wd, Shift: 2, Start: Clock{14, 0}, End: Clock{22, 0}},
			Window{Weekday: wd, Shift: 3, Start: Clock{22, 0}, End: Clock{5, 0}},
		)
	}
	return NewCalendar(ws)
}

func totalMinutes(ivs []Interval) int {
	var total time.Duration
	for _, iv := range ivs {
		total += iv.End.Sub(iv.Start)
	}
	return int(total / time.Minute)
}

func TestWindowsForDay(t *testing.T) {
	cal := plantCalendar()

	testCases := []struct {
		name     string
		day      time.Time
		shifts   []int
		expected []Interval
	}{
		{
			name:     "Same-day shift",
			day:      at(1, 0, 0),
			shifts:   []int{1},
			expected: []Interval{{Start: at(1, 5, 0), End: at(1, 14, 0)}},
		},
		{
			name:   "Midnight-crossing shift yields both fragments",
			day:    at(2, 0, 0),
			shifts: []int{3},
			expected: []Interval{
				{Start: at(2, 22, 0), End: at(3, 0, 0)},
				{Start: at(2, 0, 0), End: at(2, 5, 0)},
			},
		},
		{
			name:     "No selected shifts",
			day:      at(1, 12, 0),
			shifts:   nil,
			expected: nil,
		},
		{
			name:     "Unknown shift id",
			day:      at(1, 0, 0),
			shifts:   []int{9},
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, cal.WindowsForDay(tc.day, tc.shifts))
		})
	}
}

func TestWindowsForDay_MidnightCrossingSumsToFullShift(t *testing.T) {
	cal := NewCalendar([]Window{
		{Weekday: 1, Shift: 3, Start: Clock{22, 0}, End: Clock{5, 0}},
	})

	monday := cal.WindowsForDay(at(1, 0, 0), []int{3})
	tuesday := cal.WindowsForDay(at(2, 0, 0), []int{3})

	assert.Equal(t, 120, totalMinutes(monday))
	assert.Equal(t, 300, totalMinutes(tuesday))
	assert.Equal(t, 7*60, totalMinutes(monday)+totalMinutes(tuesday))
}

func TestWindowsForDay_SpilloverUsesPreviousWeekday(t *testing.T) {
	// Sunday night ends at 06:00 while Monday night ends at 05:00.
	cal := NewCalendar([]Window{
		{Weekday: 7, Shift: 3, Start: Clock{23, 0}, End: Clock{6, 0}},
		{Weekday: 1, Shift: 3, Start: Clock{22, 0}, End: Clock{5, 0}},
	})

	got := cal.WindowsForDay(at(1, 0, 0), []int{3})
	require.Len(t, got, 2)
	assert.Equal(t, Interval{Start: at(1, 22, 0), End: at(2, 0, 0)}, got[0])
	assert.Equal(t, Interval{Start: at(1, 0, 0), End: at(1, 6, 0)}, got[1])
}

func TestNewCalendar_LaterDefinitionWins(t *testing.T) {
	cal := NewCalendar([]Window{
		{Weekday: 3, Shift: 1, Start: Clock{5, 0}, End: Clock{14, 0}},
		{Weekday: 3, Shift: 1, Start: Clock{6, 0}, End: Clock{13, 0}},
	})

	ws := cal.Windows()
	require.Len(t, ws, 1)
	assert.Equal(t, Clock{6, 0}, ws[0].Start)
}

func TestCalendarAt(t *testing.T) {
	cal := plantCalendar()

	testCases := []struct {
		name          string
		t             time.Time
		expectedShift int
		expectedIv    Interval
	}{
		{name: "Morning", t: at(1, 8, 0), expectedShift: 1, expectedIv: Interval{Start: at(1, 5, 0), End: at(1, 14, 0)}},
		{name: "Afternoon boundary", t: at(1, 14, 0), expectedShift: 2, expectedIv: Interval{Start: at(1, 14, 0), End: at(1, 22, 0)}},
		{name: "Night before midnight", t: at(1, 23, 30), expectedShift: 3, expectedIv: Interval{Start: at(1, 22, 0), End: at(2, 5, 0)}},
		{name: "Night after midnight", t: at(2, 2, 0), expectedShift: 3, expectedIv: Interval{Start: at(1, 22, 0), End: at(2, 5, 0)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, iv, ok := cal.At(tc.t)
			require.True(t, ok)
			assert.Equal(t, tc.expectedShift, w.Shift)
			assert.Equal(t, tc.expectedIv, iv)
		})
	}
}

func TestCalendarShiftAt_Fallback(t *testing.T) {
	cal := NewCalendar([]Window{
		{Weekday: 1, Shift: 2, Start: Clock{14, 0}, End: Clock{22, 0}},
	})

	assert.Equal(t, 2, cal.ShiftAt(at(1, 15, 0)))
	assert.Equal(t, 1, cal.ShiftAt(at(1, 8, 0)))
	assert.Equal(t, 1, cal.ShiftAt(at(2, 15, 0)))
}

func TestClipToDay(t *testing.T) {
	iv, ok := ClipToDay(Interval{Start: at(1, 20, 0), End: at(2, 3, 0)}, at(2, 12, 0))
	require.True(t, ok)
	assert.Equal(t, Interval{Start: at(2, 0, 0), End: at(2, 3, 0)}, iv)

	_, ok = ClipToDay(Interval{Start: at(1, 20, 0), End: at(1, 22, 0)}, at(2, 0, 0))
	assert.False(t, ok)
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, 1, Weekday(at(1, 0, 0)))
	assert.Equal(t, 7, Weekday(at(7, 0, 0)))
}

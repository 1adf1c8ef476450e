package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom-downtime-backend/internal/shift"
)

func TestMachineName(t *testing.T) {
	assert.Equal(t, "tear01", MachineName(1, ""))
	assert.Equal(t, "tear10", MachineName(10, "   "))
	assert.Equal(t, "tear100", MachineName(100, ""))
	assert.Equal(t, "Jacquard A", MachineName(3, "  Jacquard A "))
}

func TestIntList(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  []int
		expectErr bool
	}{
		{name: "Empty", raw: "", expected: nil},
		{name: "Single", raw: "3", expected: []int{3}},
		{name: "Spaces and blanks", raw: " 1, 2,,3 ", expected: []int{1, 2, 3}},
		{name: "Not a number", raw: "1,x", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := IntList(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestClock(t *testing.T) {
	testCases := []struct {
		raw       string
		expected  shift.Clock
		expectErr bool
	}{
		{raw: "05:00", expected: shift.Clock{Hour: 5}},
		{raw: "5:07", expected: shift.Clock{Hour: 5, Minute: 7}},
		{raw: "22:00:59", expected: shift.Clock{Hour: 22}},
		{raw: "24:00", expectErr: true},
		{raw: "12:60", expectErr: true},
		{raw: "noon", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := Clock(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestTimestamp(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)

	got, err := Timestamp("2024-05-06T12:00:00Z", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 9, 0, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())

	got, err = Timestamp("2024-05-06 09:15", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 9, 15, 0, 0, loc), got)

	_, err = Timestamp("yesterday", loc)
	assert.Error(t, err)
}

func TestDate(t *testing.T) {
	got, err := Date("2024-02-29", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	_, err = Date("29/02/2024", time.UTC)
	assert.Error(t, err)
}

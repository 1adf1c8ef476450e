package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"loom-downtime-backend/internal/shift"
)

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?$`)

// Clock parses "HH:MM" (seconds are accepted and dropped).
func Clock(raw string) (shift.Clock, error) {
	m := clockRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return shift.Clock{}, fmt.Errorf("invalid time of day %q", raw)
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h > 23 || mm > 59 {
		return shift.Clock{}, fmt.Errorf("time of day out of range: %q", raw)
	}
	return shift.Clock{Hour: h, Minute: mm}, nil
}

// naive layouts carry no offset and are read in the plant location.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Timestamp parses an ISO-8601 instant. Values with a zone are converted
// to loc; values without one are taken as wall clock time in loc.
func Timestamp(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q (use ISO-8601)", raw)
}

// Date parses a YYYY-MM-DD day at midnight in loc.
func Date(raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", raw)
	}
	return t, nil
}

// Package shift models the weekly shift calendar of the plant floor.
package shift

import (
	"fmt"
	"slices"
	"time"
)

// Clock is a time of day with minute precision.
type Clock struct {
	Hour   int
	Minute int
}

// Minutes returns the number of minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// On places the clock on the calendar date of day.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, day.Location())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Window is the definition of one shift on one weekday.
// An End at or before Start means the window crosses midnight.
type Window struct {
	Weekday int // 1=Monday .. 7=Sunday
	Shift   int
	Start   Clock
	End     Clock
}

// CrossesMidnight reports whether the window ends on the next calendar day.
func (w Window) CrossesMidnight() bool {
	return w.End.Minutes() <= w.Start.Minutes()
}

// Interval is a concrete half-open [Start, End) range of instants.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Empty reports whether the interval has no positive duration.
func (i Interval) Empty() bool {
	return !i.End.After(i.Start)
}

// Contains reports whether t falls inside [Start, End).
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// Calendar holds the weekly shift definitions.
type Calendar struct {
	windows []Window
}

// NewCalendar builds a calendar. A later definition for the same
// (weekday, shift) pair replaces an earlier one.
func NewCalendar(windows []Window) *Calendar {
	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		i := slices.IndexFunc(out, func(o Window) bool {
			return o.Weekday == w.Weekday && o.Shift == w.Shift
		})
		if i >= 0 {
			out[i] = w
			continue
		}
		out = append(out, w)
	}
	slices.SortFunc(out, func(a, b Window) int {
		if a.Weekday != b.Weekday {
			return a.Weekday - b.Weekday
		}
		return a.Shift - b.Shift
	})
	return &Calendar{windows: out}
}

// Windows returns a copy of the definitions, ordered by weekday and shift.
func (c *Calendar) Windows() []Window {
	return slices.Clone(c.windows)
}

func (c *Calendar) lookup(weekday, shift int) (Window, bool) {
	for _, w := range c.windows {
		if w.Weekday == weekday && w.Shift == shift {
			return w, true
		}
	}
	return Window{}, false
}

// WindowsForDay returns the concrete intervals of the selected shifts that
// fall on day, clipped to that calendar day. A shift crossing midnight
// contributes its evening part on the day it starts and its morning part
// on the following day, so both fragments are returned exactly once.
func (c *Calendar) WindowsForDay(day time.Time, shifts []int) []Interval {
	dayStart := StartOfDay(day)
	weekday := Weekday(dayStart)
	prevWeekday := weekday - 1
	if prevWeekday == 0 {
		prevWeekday = 7
	}

	var out []Interval
	for _, id := range shifts {
		if w, ok := c.lookup(weekday, id); ok {
			start := w.Start.On(dayStart)
			end := w.End.On(dayStart)
			if w.CrossesMidnight() {
				end = end.AddDate(0, 0, 1)
			}
			if iv, ok := ClipToDay(Interval{Start: start, End: end}, dayStart); ok {
				out = append(out, iv)
			}
		}

		// Yesterday's instance of a midnight-crossing shift spills into today.
		if w, ok := c.lookup(prevWeekday, id); ok && w.CrossesMidnight() {
			start := w.Start.On(dayStart.AddDate(0, 0, -1))
			end := w.End.On(dayStart)
			if iv, ok := ClipToDay(Interval{Start: start, End: end}, dayStart); ok {
				out = append(out, iv)
			}
		}
	}
	return out
}

// At returns the weekly definition active at t together with its concrete
// interval. Windows that crossed midnight are matched against the weekday
// on which they started.
func (c *Calendar) At(t time.Time) (Window, Interval, bool) {
	day := StartOfDay(t)
	weekday := Weekday(day)
	minute := t.Hour()*60 + t.Minute()

	for _, w := range c.windows {
		if w.Weekday != weekday {
			continue
		}
		if !w.CrossesMidnight() {
			iv := Interval{Start: w.Start.On(day), End: w.End.On(day)}
			if iv.Contains(t) {
				return w, iv, true
			}
			continue
		}
		if minute >= w.Start.Minutes() {
			return w, Interval{Start: w.Start.On(day), End: w.End.On(day.AddDate(0, 0, 1))}, true
		}
		if minute < w.End.Minutes() {
			return w, Interval{Start: w.Start.On(day.AddDate(0, 0, -1)), End: w.End.On(day)}, true
		}
	}
	return Window{}, Interval{}, false
}

// ShiftAt returns the shift id active at t, or 1 when no window matches.
func (c *Calendar) ShiftAt(t time.Time) int {
	if w, _, ok := c.At(t); ok {
		return w.Shift
	}
	return 1
}

// Weekday returns the ISO weekday of t, Monday=1 through Sunday=7.
func Weekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// StartOfDay returns midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ClipToDay intersects iv with the calendar day of day. The second
// return value is false when nothing of positive length remains.
func ClipToDay(iv Interval, day time.Time) (Interval, bool) {
	ds := StartOfDay(day)
	de := ds.AddDate(0, 0, 1)

	//       ds                 de
	//       |------------------|
	//   iv.Start         iv.End
	//   |----------------|
	// -> [ds, iv.End)
	start := iv.Start
	if ds.After(start) {
		start = ds
	}
	end := iv.End
	if de.Before(end) {
		end = de
	}
	out := Interval{Start: start, End: end}
	if out.Empty() {
		return Interval{}, false
	}
	return out, true
}

// Package bucket computes worked and stopped minutes of a machine for one
// calendar day under a selection of shifts.
package bucket

import (
	"time"

	"loom-downtime-backend/internal/shift"
	"loom-downtime-backend/internal/timeline"
)

// Totals are the minutes attributed to one day bucket.
type Totals struct {
	Worked  int
	Stopped int
}

// Running is the worked time not spent stopped. It is never negative.
func (t Totals) Running() int {
	if t.Stopped >= t.Worked {
		return 0
	}
	return t.Worked - t.Stopped
}

// Add sums two totals.
func (t Totals) Add(o Totals) Totals {
	return Totals{Worked: t.Worked + o.Worked, Stopped: t.Stopped + o.Stopped}
}

// Engine evaluates day buckets against a fixed calendar, shift selection
// and reference instant. It holds no mutable state.
type Engine struct {
	cal    *shift.Calendar
	shifts []int
	now    time.Time
}

// NewEngine captures now once so every bucket of a report is truncated
// against the same instant.
func NewEngine(cal *shift.Calendar, shifts []int, now time.Time) *Engine {
	return &Engine{cal: cal, shifts: shifts, now: now}
}

// Now returns the reference instant.
func (e *Engine) Now() time.Time {
	return e.now
}

// Windows returns the intervals of day that count toward its bucket, after
// clipping to the day and truncating at now.
func (e *Engine) Windows(day time.Time) []shift.Interval {
	var out []shift.Interval
	for _, w := range e.cal.WindowsForDay(day, e.shifts) {
		iv, ok := shift.ClipToDay(w, day)
		if !ok {
			continue
		}
		// Days after today are fully in the future and skip here as well.
		if iv.End.After(e.now) {
			if !e.now.After(iv.Start) {
				continue
			}
			iv.End = e.now
		}
		if timeline.Minutes(iv.Start, iv.End) <= 0 {
			continue
		}
		out = append(out, iv)
	}
	return out
}

// DayTotals sums the window durations of day as worked time and the
// stoppages of log inside those windows as stopped time. Overlapping
// windows are counted once each.
func (e *Engine) DayTotals(day time.Time, log timeline.Log) Totals {
	var t Totals
	for _, iv := range e.Windows(day) {
		t.Worked += timeline.Minutes(iv.Start, iv.End)
		t.Stopped += log.StoppedMinutes(iv.Start, iv.End)
	}
	return t
}

// StoppagesByReason walks the same windows as DayTotals and returns the
// stopped minutes of day keyed by reason code.
func (e *Engine) StoppagesByReason(day time.Time, log timeline.Log) map[int]int {
	acc := make(map[int]int)
	for _, iv := range e.Windows(day) {
		for reason, m := range log.StoppedMinutesByReason(iv.Start, iv.End) {
			acc[reason] += m
		}
	}
	return acc
}

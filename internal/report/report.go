// Package report builds day-by-day minute matrices on top of the bucket
// engine. Values are minutes; formatting is left to callers.
package report

import (
	"fmt"
	"slices"
	"time"

	"loom-downtime-backend/internal/bucket"
	"loom-downtime-backend/internal/shift"
	"loom-downtime-backend/internal/timeline"
)

// DateLayout is the layout of day labels and date query parameters.
const DateLayout = "2006-01-02"

// Mode selects which side of a day bucket a machine matrix reports.
type Mode string

const (
	ModeRunning Mode = "running"
	ModeStopped Mode = "stopped"
)

// ParseMode accepts "running", "stopped" or an empty string (running).
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeRunning:
		return ModeRunning, nil
	case ModeStopped:
		return ModeStopped, nil
	}
	return "", fmt.Errorf("unknown report mode %q", s)
}

// Machine is a matrix row subject.
type Machine struct {
	Code int
	Name string
}

// Reason is a reason code with its description.
type Reason struct {
	Code        int
	Description string
}

// Row is one labeled line of a matrix.
type Row struct {
	Key   int    `json:"key"`
	Label string `json:"label"`
	Cells []int  `json:"cells"`
	Total int    `json:"total"`
}

// Matrix holds per-cell minutes with row, column and grand totals.
type Matrix struct {
	Days         []time.Time `json:"-"`
	Labels       []string    `json:"days"`
	Rows         []Row       `json:"rows"`
	ColumnTotals []int       `json:"column_totals"`
	GrandTotal   int         `json:"grand_total"`
}

// Point is one day of a single machine series.
type Point struct {
	Day     string `json:"day"`
	Running int    `json:"running"`
	Stopped int    `json:"stopped"`
}

// Days lists every calendar day from since to until inclusive, at midnight
// in since's location. It is empty when until is before since.
func Days(since, until time.Time) []time.Time {
	var out []time.Time
	end := shift.StartOfDay(until.In(since.Location()))
	for d := shift.StartOfDay(since); !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func newMatrix(days []time.Time) Matrix {
	m := Matrix{
		Days:         days,
		Labels:       make([]string, len(days)),
		Rows:         []Row{},
		ColumnTotals: make([]int, len(days)),
	}
	for i, d := range days {
		m.Labels[i] = d.Format(DateLayout)
	}
	return m
}

func (m *Matrix) addRow(r Row) {
	for j, v := range r.Cells {
		r.Total += v
		m.ColumnTotals[j] += v
	}
	m.GrandTotal += r.Total
	m.Rows = append(m.Rows, r)
}

// MachineMatrix reports one row per machine, ordered by code, with the
// running or stopped minutes of every day.
func MachineMatrix(e *bucket.Engine, days []time.Time, machines []Machine, logs map[int]timeline.Log, mode Mode) Matrix {
	m := newMatrix(days)
	ordered := slices.Clone(machines)
	slices.SortFunc(ordered, func(a, b Machine) int { return a.Code - b.Code })

	for _, mc := range ordered {
		row := Row{Key: mc.Code, Label: mc.Name, Cells: make([]int, len(days))}
		log := logs[mc.Code]
		for j, day := range days {
			t := e.DayTotals(day, log)
			if mode == ModeStopped {
				row.Cells[j] = t.Stopped
			} else {
				row.Cells[j] = t.Running()
			}
		}
		m.addRow(row)
	}
	return m
}

// ReasonMatrix reports the stopped minutes of one machine broken down by
// reason. With an empty selection the rows are every defined reason plus
// any code observed in the log. Codes without a definition get an empty
// label.
func ReasonMatrix(e *bucket.Engine, days []time.Time, log timeline.Log, reasons []Reason, selected []int) Matrix {
	m := newMatrix(days)

	perDay := make([]map[int]int, len(days))
	for j, day := range days {
		perDay[j] = e.StoppagesByReason(day, log)
	}

	labels := make(map[int]string, len(reasons))
	for _, r := range reasons {
		labels[r.Code] = r.Description
	}

	codes := slices.Clone(selected)
	if len(codes) == 0 {
		for _, r := range reasons {
			codes = append(codes, r.Code)
		}
		for _, mp := range perDay {
			for code := range mp {
				codes = append(codes, code)
			}
		}
	}
	slices.Sort(codes)
	codes = slices.Compact(codes)

	for _, code := range codes {
		row := Row{Key: code, Label: labels[code], Cells: make([]int, len(days))}
		for j := range days {
			row.Cells[j] = perDay[j][code]
		}
		m.addRow(row)
	}
	return m
}

// DailySeries reports running and stopped minutes of one machine per day.
func DailySeries(e *bucket.Engine, days []time.Time, log timeline.Log) []Point {
	out := make([]Point, 0, len(days))
	for _, day := range days {
		t := e.DayTotals(day, log)
		out = append(out, Point{
			Day:     day.Format(DateLayout),
			Running: t.Running(),
			Stopped: t.Stopped,
		})
	}
	return out
}

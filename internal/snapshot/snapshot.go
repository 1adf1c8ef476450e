// Package snapshot reads the stored machines, reasons, shift windows and
// events into the in-memory types the report engine works on.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"loom-downtime-backend/internal/model"
	"loom-downtime-backend/internal/parse"
	"loom-downtime-backend/internal/report"
	"loom-downtime-backend/internal/shift"
	"loom-downtime-backend/internal/store"
	"loom-downtime-backend/internal/timeline"
)

// Snapshot is a consistent read of everything a report needs.
type Snapshot struct {
	Calendar *shift.Calendar
	Machines []report.Machine
	Reasons  []report.Reason
	Logs     map[int]timeline.Log
}

// Load reads the reference data and the events selected by f. Event times
// are converted to loc.
func Load(ctx context.Context, st store.Store, loc *time.Location, f store.EventFilter) (*Snapshot, error) {
	windows, err := st.ListShiftWindows(ctx)
	if err != nil {
		return nil, err
	}
	cal, err := Calendar(windows)
	if err != nil {
		return nil, err
	}

	machines, err := st.ListMachines(ctx)
	if err != nil {
		return nil, err
	}
	reasons, err := st.ListReasons(ctx)
	if err != nil {
		return nil, err
	}
	events, err := st.ListEvents(ctx, f)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Calendar: cal,
		Machines: make([]report.Machine, 0, len(machines)),
		Reasons:  make([]report.Reason, 0, len(reasons)),
		Logs:     timeline.GroupByMachine(Events(events, loc)),
	}
	for _, m := range machines {
		snap.Machines = append(snap.Machines, report.Machine{Code: int(m.Code), Name: m.Name})
	}
	for _, r := range reasons {
		snap.Reasons = append(snap.Reasons, report.Reason{Code: int(r.Code), Description: r.Description})
	}
	return snap, nil
}

// SelectMachines keeps the machines whose code is in codes. An empty codes
// keeps all of them.
func (s *Snapshot) SelectMachines(codes []int) []report.Machine {
	if len(codes) == 0 {
		return s.Machines
	}
	want := make(map[int]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	var out []report.Machine
	for _, m := range s.Machines {
		if want[m.Code] {
			out = append(out, m)
		}
	}
	return out
}

// Calendar parses stored shift windows into a calendar.
func Calendar(windows []model.ShiftWindow) (*shift.Calendar, error) {
	out := make([]shift.Window, 0, len(windows))
	for _, w := range windows {
		start, err := parse.Clock(w.Start)
		if err != nil {
			return nil, fmt.Errorf("shift window %d/%d: %w", w.Weekday, w.Shift, err)
		}
		end, err := parse.Clock(w.End)
		if err != nil {
			return nil, fmt.Errorf("shift window %d/%d: %w", w.Weekday, w.Shift, err)
		}
		out = append(out, shift.Window{Weekday: w.Weekday, Shift: w.Shift, Start: start, End: end})
	}
	return shift.NewCalendar(out), nil
}

// Events converts stored events. A stoppage without a reason lands in
// timeline.NoReason.
func Events(events []model.Event, loc *time.Location) []timeline.Event {
	out := make([]timeline.Event, 0, len(events))
	for _, e := range events {
		te := timeline.Event{
			Machine: int(e.MachineCode),
			At:      e.At.In(loc),
			State:   timeline.State(e.State),
		}
		if e.Reason != nil {
			te.Reason = int(*e.Reason)
		}
		out = append(out, te)
	}
	return out
}

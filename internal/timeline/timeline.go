// Package timeline reconstructs machine state from the sparse log of
// recorded state changes.
package timeline

import (
	"math"
	"slices"
	"sort"
	"time"
)

// State is the operating state of a machine.
type State int

const (
	Stopped State = 0
	Running State = 1
)

func (s State) String() string {
	if s == Stopped {
		return "stopped"
	}
	return "running"
}

// NoReason is the bucket for stoppages recorded without a reason code.
const NoReason = 0

// Event is a single recorded state change of one machine.
type Event struct {
	Machine int
	At      time.Time
	State   State
	Reason  int
}

// Log is the chronologically ordered event history of a single machine.
type Log []Event

// linearScanMax is the log size below which StateAt scans instead of
// bisecting.
const linearScanMax = 16

// ForMachine extracts and orders the events of one machine.
func ForMachine(events []Event, machine int) Log {
	var out Log
	for _, e := range events {
		if e.Machine == machine {
			out = append(out, e)
		}
	}
	sortLog(out)
	return out
}

// GroupByMachine splits events into one ordered log per machine.
func GroupByMachine(events []Event) map[int]Log {
	out := make(map[int]Log)
	for _, e := range events {
		out[e.Machine] = append(out[e.Machine], e)
	}
	for _, l := range out {
		sortLog(l)
	}
	return out
}

func sortLog(l Log) {
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].At.Before(l[j].At)
	})
}

// StateAt returns the state in effect at t along with its reason. A machine
// with no event at or before t is Running.
func (l Log) StateAt(t time.Time) (State, int) {
	i := l.lastAtOrBefore(t)
	if i < 0 {
		return Running, NoReason
	}
	return l[i].State, l[i].Reason
}

// lastAtOrBefore returns the index of the last event with At <= t, or -1.
func (l Log) lastAtOrBefore(t time.Time) int {
	if len(l) <= linearScanMax {
		for i := len(l) - 1; i >= 0; i-- {
			if !l[i].At.After(t) {
				return i
			}
		}
		return -1
	}
	// first index whose event is strictly after t
	n := sort.Search(len(l), func(i int) bool {
		return l[i].At.After(t)
	})
	return n - 1
}

// Minutes returns the whole minutes between a and b, rounded to the
// nearest minute and never negative.
func Minutes(a, b time.Time) int {
	m := math.Round(float64(b.Sub(a)) / float64(time.Minute))
	if m < 0 {
		return 0
	}
	return int(m)
}

// StoppedMinutesByReason partitions [ini, fim] into constant-state runs and
// sums the stopped ones by reason code. Each run is rounded to minutes on
// its own. Running time is not reported.
func (l Log) StoppedMinutesByReason(ini, fim time.Time) map[int]int {
	out := make(map[int]int)
	if len(l) == 0 || !ini.Before(fim) {
		return out
	}

	type boundary struct {
		at     time.Time
		state  State
		reason int
	}

	state, reason := l.StateAt(ini)
	seq := []boundary{{at: ini, state: state, reason: reason}}

	var inside Log
	for _, e := range l {
		if !e.At.Before(ini) && !e.At.After(fim) {
			inside = append(inside, e)
		}
	}
	sortLog(inside)
	for _, e := range inside {
		seq = append(seq, boundary{at: e.At, state: e.State, reason: e.Reason})
	}

	last := seq[len(seq)-1]
	seq = append(seq, boundary{at: fim.Add(time.Nanosecond), state: last.state, reason: last.reason})

	for i := 0; i < len(seq)-1; i++ {
		cur, next := seq[i], seq[i+1]
		if cur.state != Stopped {
			continue
		}
		a, b := cur.at, next.at
		if i == 0 {
			a = ini
		}
		if i+1 == len(seq)-1 {
			b = fim
		}
		out[cur.reason] += Minutes(a, b)
	}
	return out
}

// StoppedMinutes is the sum of StoppedMinutesByReason over every reason.
func (l Log) StoppedMinutes(ini, fim time.Time) int {
	total := 0
	for _, m := range l.StoppedMinutesByReason(ini, fim) {
		total += m
	}
	return total
}

// Status is the current state of a machine and how long it has held it.
type Status struct {
	Machine int
	State   State
	Reason  int
	Since   *time.Time
	Hours   *float64
}

// CurrentStatus reports the state of the last event. Since is the start of
// the trailing run of events sharing that state.
func (l Log) CurrentStatus(machine int, now time.Time) Status {
	if len(l) == 0 {
		return Status{Machine: machine, State: Running}
	}
	last := l[len(l)-1]
	since := last.At
	for _, prev := range slices.Backward(l[:len(l)-1]) {
		if prev.State != last.State {
			break
		}
		since = prev.At
	}
	hours := math.Round(now.Sub(since).Hours()*100) / 100
	return Status{
		Machine: machine,
		State:   last.State,
		Reason:  last.Reason,
		Since:   &since,
		Hours:   &hours,
	}
}

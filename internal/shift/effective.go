package shift

import "time"

// Tolerance is how long after a shift change an instant still belongs to
// the shift that just ended.
const Tolerance = 10 * time.Minute

// Fixed shift changes used for write-time admission. These do not follow
// the weekly calendar.
var (
	firstShiftStart  = Clock{Hour: 5, Minute: 0}
	secondShiftStart = Clock{Hour: 13, Minute: 30}
	thirdShiftStart  = Clock{Hour: 22, Minute: 0}
)

// Effective returns the shift (1, 2 or 3) that t is attributed to.
//
//	1: 05:00-13:30
//	2: 13:30-22:00
//	3: 22:00-05:00 (+1 day)
//
// The first Tolerance of every shift still counts as the previous one.
func Effective(t time.Time) int {
	t1 := firstShiftStart.On(t)
	t2 := secondShiftStart.On(t)
	t3 := thirdShiftStart.On(t)

	switch {
	case !t.Before(t1) && t.Before(t2):
		if t.Before(t1.Add(Tolerance)) {
			return 3
		}
		return 1
	case !t.Before(t2) && t.Before(t3):
		if t.Before(t2.Add(Tolerance)) {
			return 1
		}
		return 2
	default:
		if !t.Before(t3) && t.Before(t3.Add(Tolerance)) {
			return 2
		}
		return 3
	}
}

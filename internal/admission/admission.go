// Package admission decides whether a submitted state change may be
// recorded by a given role at a given moment.
package admission

import (
	"errors"
	"fmt"
	"time"

	"loom-downtime-backend/internal/auth"
	"loom-downtime-backend/internal/shift"
)

var (
	ErrNotAuthorized    = errors.New("not authorized to record stoppages or running events")
	ErrFutureTimestamp  = errors.New("future timestamp not allowed")
	ErrOtherShift       = errors.New("timestamp belongs to a different shift than the current one")
	ErrOutsideRoleShift = errors.New("role may only record within its own shift")
	ErrReasonRequired   = errors.New("reason required for a stoppage")
)

// Request is a proposed event as seen by the gate.
type Request struct {
	Role      auth.Role
	At        time.Time
	Stoppage  bool
	HasReason bool
}

// Admit applies the admission rules in order and returns the first
// rejection, or nil.
func Admit(req Request, now time.Time) error {
	if !req.Role.CanRecord() {
		return ErrNotAuthorized
	}
	if req.At.After(now) {
		return ErrFutureTimestamp
	}
	if req.Role.Unrestricted() {
		return nil
	}

	proposed := shift.Effective(req.At)
	if proposed != shift.Effective(now) {
		return ErrOtherShift
	}
	if own := req.Role.Shift(); own != 0 && own != proposed {
		return fmt.Errorf("%w (shift %d)", ErrOutsideRoleShift, own)
	}
	if req.Stoppage && !req.HasReason {
		return ErrReasonRequired
	}
	return nil
}

// Forbidden reports whether err is a rejection about who is recording
// rather than what is being recorded.
func Forbidden(err error) bool {
	return errors.Is(err, ErrNotAuthorized) || errors.Is(err, ErrOutsideRoleShift)
}

// Rule names the rejection for metrics labels.
func Rule(err error) string {
	switch {
	case errors.Is(err, ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, ErrFutureTimestamp):
		return "future"
	case errors.Is(err, ErrOtherShift):
		return "other_shift"
	case errors.Is(err, ErrOutsideRoleShift):
		return "role_shift"
	case errors.Is(err, ErrReasonRequired):
		return "reason_required"
	}
	return "other"
}

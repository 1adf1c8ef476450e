// Package recorder admits and stores machine state changes submitted by
// operators, then fans them out to push alerts and the event stream.
package recorder

//go:generate go tool mockgen -destination=../../testing/mock/recorder.go -package=mock . Notifier,Publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"loom-downtime-backend/internal/admission"
	"loom-downtime-backend/internal/auth"
	"loom-downtime-backend/internal/metrics"
	"loom-downtime-backend/internal/model"
	"loom-downtime-backend/internal/publish"
	"loom-downtime-backend/internal/snapshot"
	"loom-downtime-backend/internal/timeline"
)

// Notifier announces a recorded stoppage. Implementations must not block.
type Notifier interface {
	NotifyStoppage(ctx context.Context, machine int64, reason *int64)
}

// Publisher forwards a recorded event downstream.
type Publisher interface {
	Publish(ctx context.Context, msg publish.EventMessage) error
}

// Repository is the storage the service records through.
type Repository interface {
	GetMachine(ctx context.Context, code int64) (model.Machine, error)
	ListShiftWindows(ctx context.Context) ([]model.ShiftWindow, error)
	AppendEvent(ctx context.Context, e *model.Event) error
}

// Submission is a state change proposed by a user.
type Submission struct {
	User    model.User
	Machine int64
	At      time.Time
	State   timeline.State
	Reason  *int64
}

// Service records admitted events.
type Service struct {
	repo      Repository
	notifier  Notifier
	publisher Publisher
	loc       *time.Location
	now       func() time.Time
	log       zerolog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a service evaluating shifts in loc.
func New(repo Repository, loc *time.Location, log zerolog.Logger, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		loc:     loc,
		now:     time.Now,
		log:     log.With().Str("component", "recorder").Logger(),
		metrics: m,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Now returns the service clock in the plant location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Record runs the admission rules against a single reading of the clock and
// stores the event. Admission errors wrap the admission sentinels; a missing
// machine yields store.ErrMachineNotFound.
func (s *Service) Record(ctx context.Context, sub Submission) (model.Event, error) {
	now := s.Now()
	at := sub.At.In(s.loc)
	stoppage := sub.State == timeline.Stopped

	err := admission.Admit(admission.Request{
		Role:      auth.Role(sub.User.Role),
		At:        at,
		Stoppage:  stoppage,
		HasReason: sub.Reason != nil,
	}, now)
	if err != nil {
		s.metrics.IncRejected(admission.Rule(err))
		s.log.Info().Err(err).Int64("machine", sub.Machine).Str("user", sub.User.Name).Msg("event rejected")
		return model.Event{}, err
	}

	if _, err := s.repo.GetMachine(ctx, sub.Machine); err != nil {
		return model.Event{}, err
	}

	windows, err := s.repo.ListShiftWindows(ctx)
	if err != nil {
		return model.Event{}, fmt.Errorf("load shift windows: %w", err)
	}
	cal, err := snapshot.Calendar(windows)
	if err != nil {
		return model.Event{}, err
	}

	e := model.Event{
		MachineCode: sub.Machine,
		At:          at,
		State:       int(sub.State),
		RecordedAt:  now,
		RecordedBy:  sub.User.ID,
	}
	if stoppage {
		e.Reason = sub.Reason
		e.Shift = cal.ShiftAt(now)
	} else {
		e.Shift = cal.ShiftAt(at)
	}

	if err := s.repo.AppendEvent(ctx, &e); err != nil {
		return model.Event{}, err
	}
	s.metrics.IncAdmitted(sub.State.String())
	s.log.Info().
		Int64("machine", e.MachineCode).
		Str("state", sub.State.String()).
		Int("shift", e.Shift).
		Str("user", sub.User.Name).
		Msg("event recorded")

	if stoppage && s.notifier != nil {
		s.notifier.NotifyStoppage(ctx, e.MachineCode, e.Reason)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, Message(e)); err != nil {
			s.log.Warn().Err(err).Int64("machine", e.MachineCode).Msg("failed to publish event")
		}
	}
	return e, nil
}

// Message converts a stored event for the event stream.
func Message(e model.Event) publish.EventMessage {
	return publish.EventMessage{
		ID:         e.ID,
		Machine:    e.MachineCode,
		At:         e.At,
		State:      timeline.State(e.State).String(),
		Reason:     e.Reason,
		Shift:      e.Shift,
		RecordedAt: e.RecordedAt,
		RecordedBy: e.RecordedBy,
	}
}

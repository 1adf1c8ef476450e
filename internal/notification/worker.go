package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"

	"loom-downtime-backend/internal/metrics"
	"loom-downtime-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Repository is the storage the workers read subscriptions and labels from.
type Repository interface {
	SubscriptionsForMachine(ctx context.Context, code int64) ([]model.PushSubscription, error)
	GetMachine(ctx context.Context, code int64) (model.Machine, error)
	ListReasons(ctx context.Context) ([]model.Reason, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Alert is a stoppage to announce to the subscribers of a machine.
type Alert struct {
	Machine int64
	Reason  *int64
}

// queueDepth is how many alerts each worker may have waiting.
const queueDepth = 16

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Alert
	repo    Repository
	webpush *webpush.Options
	sender  NotificationSender
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, repo Repository, webpushOptions *webpush.Options, log zerolog.Logger, m *metrics.Metrics) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Alert, size*queueDepth),
		repo:    repo,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
		log:     log.With().Str("component", "notification").Logger(),
		metrics: m,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Info().Int("worker", id).Msg("notification worker started")
	for {
		select {
		case a := <-wp.jobs:
			wp.log.Debug().Int("worker", id).Int64("machine", a.Machine).Msg("processing stoppage alert")
			wp.sendAlert(ctx, a)
		case <-ctx.Done():
			wp.log.Info().Int("worker", id).Msg("notification worker shutting down")
			return
		}
	}
}

// Dispatch queues an alert. It never blocks; when the queue is full the
// alert is dropped and false is returned.
func (wp *WorkerPool) Dispatch(a Alert) bool {
	select {
	case wp.jobs <- a:
		return true
	default:
		wp.log.Warn().Int64("machine", a.Machine).Msg("notification queue full, alert dropped")
		wp.metrics.IncPush("dropped")
		return false
	}
}

// NotifyStoppage queues an alert for a recorded stoppage.
func (wp *WorkerPool) NotifyStoppage(_ context.Context, machine int64, reason *int64) {
	wp.Dispatch(Alert{Machine: machine, Reason: reason})
}

// Message builds the notification text for an alert.
func (wp *WorkerPool) Message(ctx context.Context, a Alert) string {
	label := fmt.Sprintf("tear %d", a.Machine)
	if m, err := wp.repo.GetMachine(ctx, a.Machine); err != nil {
		wp.log.Warn().Err(err).Int64("machine", a.Machine).Msg("failed to fetch machine for alert")
	} else if m.Name != "" {
		label = m.Name
	}

	if a.Reason == nil {
		return label + " parado"
	}
	reasons, err := wp.repo.ListReasons(ctx)
	if err != nil {
		wp.log.Warn().Err(err).Msg("failed to fetch reasons for alert")
	}
	for _, r := range reasons {
		if r.Code == *a.Reason {
			return fmt.Sprintf("%s parado: %s", label, r.Description)
		}
	}
	return fmt.Sprintf("%s parado: motivo %d", label, *a.Reason)
}

func (wp *WorkerPool) sendAlert(ctx context.Context, a Alert) {
	subscriptions, err := wp.repo.SubscriptionsForMachine(ctx, a.Machine)
	if err != nil {
		wp.log.Error().Err(err).Int64("machine", a.Machine).Msg("failed to fetch subscriptions")
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	wp.log.Info().Int("count", len(subscriptions)).Int64("machine", a.Machine).Msg("sending stoppage notifications")
	payload := []byte(wp.Message(ctx, a))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to send notification")
		wp.metrics.IncPush("failed")
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		wp.log.Info().Str("endpoint", sub.Endpoint).Msg("subscription expired, deleting")
		wp.metrics.IncPush("expired")
		if err := wp.repo.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to delete expired subscription")
		}
		return
	}
	wp.metrics.IncPush("sent")
}

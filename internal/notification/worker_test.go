package notification

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loom-downtime-backend/internal/model"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

type fakeRepo struct {
	mu       sync.Mutex
	subs     map[int64][]model.PushSubscription
	machines map[int64]model.Machine
	reasons  []model.Reason
	deleted  []string
}

func (r *fakeRepo) SubscriptionsForMachine(_ context.Context, code int64) ([]model.PushSubscription, error) {
	return r.subs[code], nil
}

func (r *fakeRepo) GetMachine(_ context.Context, code int64) (model.Machine, error) {
	m, ok := r.machines[code]
	if !ok {
		return model.Machine{}, errors.New("machine not found")
	}
	return m, nil
}

func (r *fakeRepo) ListReasons(context.Context) ([]model.Reason, error) {
	return r.reasons, nil
}

func (r *fakeRepo) DeleteSubscription(_ context.Context, endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, endpoint)
	return nil
}

func (r *fakeRepo) deletedEndpoints() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deleted...)
}

func response(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewBufferString(""))}
}

func newRepo() *fakeRepo {
	return &fakeRepo{
		subs: map[int64][]model.PushSubscription{
			101: {{Endpoint: "https://example.com/push", P256DH: "test_p256dh", Auth: "test_auth"}},
			102: {{Endpoint: "https://example.com/expired", P256DH: "p", Auth: "a"}},
			103: {{Endpoint: "https://example.com/fallback", P256DH: "p", Auth: "a"}},
		},
		machines: map[int64]model.Machine{
			101: {Code: 101, Name: "tear101"},
			102: {Code: 102, Name: "tear102"},
		},
		reasons: []model.Reason{{Code: 103, Description: "Sem operador"}},
	}
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(1, newRepo(), &webpush.Options{}, zerolog.Nop(), nil)

	reason := int64(103)
	require.True(t, wp.Dispatch(Alert{Machine: 123, Reason: &reason}))

	select {
	case job := <-wp.jobs:
		assert.Equal(t, int64(123), job.Machine)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchDropsWhenFull(t *testing.T) {
	wp := NewWorkerPool(1, newRepo(), &webpush.Options{}, zerolog.Nop(), nil)
	for i := 0; i < queueDepth; i++ {
		require.True(t, wp.Dispatch(Alert{Machine: int64(i)}))
	}
	assert.False(t, wp.Dispatch(Alert{Machine: 999}))
}

func TestWorkerPool_Message(t *testing.T) {
	wp := NewWorkerPool(1, newRepo(), &webpush.Options{}, zerolog.Nop(), nil)
	ctx := context.Background()
	known, unknown := int64(103), int64(555)

	assert.Equal(t, "tear101 parado: Sem operador", wp.Message(ctx, Alert{Machine: 101, Reason: &known}))
	assert.Equal(t, "tear101 parado: motivo 555", wp.Message(ctx, Alert{Machine: 101, Reason: &unknown}))
	assert.Equal(t, "tear 103 parado", wp.Message(ctx, Alert{Machine: 103}))
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	repo := newRepo()
	wp := NewWorkerPool(1, repo, &webpush.Options{}, zerolog.Nop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)
	reason := int64(103)

	t.Run("sends notification for one subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t, "test_p256dh", sub.Keys.P256dh)
				assert.Equal(t, "tear101 parado: Sem operador", string(payload))
				return response(http.StatusCreated), nil
			},
		}

		wp.Dispatch(Alert{Machine: 101, Reason: &reason})
		wg.Wait()
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				return response(http.StatusGone), nil
			},
		}

		wp.Dispatch(Alert{Machine: 102, Reason: &reason})
		wg.Wait()

		assert.Eventually(t, func() bool {
			return len(repo.deletedEndpoints()) == 1
		}, time.Second, 10*time.Millisecond)
		assert.Equal(t, []string{"https://example.com/expired"}, repo.deletedEndpoints())
	})

	t.Run("falls back to machine code when lookup fails", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				defer wg.Done()
				assert.Equal(t, "https://example.com/fallback", sub.Endpoint)
				assert.Equal(t, "tear 103 parado: Sem operador", string(payload))
				return response(http.StatusCreated), nil
			},
		}

		wp.Dispatch(Alert{Machine: 103, Reason: &reason})
		wg.Wait()
	})
}

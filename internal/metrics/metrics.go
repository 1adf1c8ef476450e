// Package metrics exposes Prometheus collectors for the HTTP surface, the
// recording path and report builds.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application metrics that are safe to scrape via Prometheus.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	eventsAdmitted      *prometheus.CounterVec
	eventsRejected      *prometheus.CounterVec
	reportDuration      *prometheus.HistogramVec
	pushSent            *prometheus.CounterVec
}

// New creates a fresh registry with every collector registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loom",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "loom",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	eventsAdmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loom",
		Name:      "events_admitted_total",
		Help:      "Machine events accepted and stored",
	}, []string{"state"})

	eventsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loom",
		Name:      "events_rejected_total",
		Help:      "Machine events refused by the admission rules",
	}, []string{"rule"})

	reportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "loom",
		Name:      "report_build_duration_seconds",
		Help:      "Time spent building report matrices",
		Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"kind"})

	pushSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "loom",
		Name:      "push_notifications_total",
		Help:      "Stoppage push notifications by outcome",
	}, []string{"outcome"})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		eventsAdmitted,
		eventsRejected,
		reportDuration,
		pushSent,
	)

	return &Metrics{
		registry:            registry,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
		eventsAdmitted:      eventsAdmitted,
		eventsRejected:      eventsRejected,
		reportDuration:      reportDuration,
		pushSent:            pushSent,
	}
}

// ObserveHTTPRequest records a single HTTP request/response cycle.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// IncAdmitted counts a stored event by state ("stopped" or "running").
func (m *Metrics) IncAdmitted(state string) {
	if m == nil {
		return
	}
	m.eventsAdmitted.WithLabelValues(state).Inc()
}

// IncRejected counts an admission rejection by rule.
func (m *Metrics) IncRejected(rule string) {
	if m == nil {
		return
	}
	m.eventsRejected.WithLabelValues(rule).Inc()
}

// ObserveReport records how long a report of the given kind took.
func (m *Metrics) ObserveReport(kind string, duration time.Duration) {
	if m == nil {
		return
	}
	m.reportDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// IncPush counts a push delivery attempt by outcome.
func (m *Metrics) IncPush(outcome string) {
	if m == nil {
		return
	}
	m.pushSent.WithLabelValues(outcome).Inc()
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

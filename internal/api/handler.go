package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"loom-downtime-backend/internal/admission"
	"loom-downtime-backend/internal/auth"
	"loom-downtime-backend/internal/metrics"
	"loom-downtime-backend/internal/recorder"
	"loom-downtime-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	recorder *recorder.Service
	hasher   *auth.Hasher
	loc      *time.Location
	webpush  *webpush.Options
	metrics  *metrics.Metrics
	log      zerolog.Logger
	now      func() time.Time
}

// Deps are the collaborators of a Handler. Webpush and Metrics may be nil.
type Deps struct {
	Store    store.Store
	Recorder *recorder.Service
	Hasher   *auth.Hasher
	Location *time.Location
	Webpush  *webpush.Options
	Metrics  *metrics.Metrics
	Log      zerolog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	h := &Handler{
		store:    d.Store,
		recorder: d.Recorder,
		hasher:   d.Hasher,
		loc:      loc,
		webpush:  d.Webpush,
		metrics:  d.Metrics,
		log:      d.Log.With().Str("component", "api").Logger(),
		now:      time.Now,
	}
	if d.Recorder != nil {
		h.now = d.Recorder.Now
	}
	return h
}

// clock returns the current time in the plant location.
func (h *Handler) clock() time.Time {
	return h.now().In(h.loc)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// fail maps err onto a status code and writes the error body.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrMachineNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateName):
		status = http.StatusConflict
	case admission.Forbidden(err):
		status = http.StatusForbidden
	case admission.Rule(err) != "other":
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": h.clock().Format(time.RFC3339)})
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"loom-downtime-backend/internal/model"
	"loom-downtime-backend/internal/parse"
	"loom-downtime-backend/internal/snapshot"
	"loom-downtime-backend/internal/store"
	"loom-downtime-backend/internal/timeline"
)

type statusResponse struct {
	Machine int64      `json:"machine"`
	Name    string     `json:"name"`
	State   string     `json:"state"`
	Reason  *int       `json:"reason"`
	Since   *time.Time `json:"since"`
	Hours   *float64   `json:"hours"`
}

// GetStatus reports the current state of every machine.
func (h *Handler) GetStatus(c *gin.Context) {
	now := h.clock()
	snap, err := snapshot.Load(c.Request.Context(), h.store, h.loc, store.EventFilter{Until: now})
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]statusResponse, 0, len(snap.Machines))
	for _, m := range snap.Machines {
		st := snap.Logs[m.Code].CurrentStatus(m.Code, now)
		r := statusResponse{
			Machine: int64(m.Code),
			Name:    m.Name,
			State:   st.State.String(),
			Since:   st.Since,
			Hours:   st.Hours,
		}
		if st.State == timeline.Stopped {
			reason := st.Reason
			r.Reason = &reason
		}
		out = append(out, r)
	}
	c.JSON(http.StatusOK, out)
}

type eventResponse struct {
	ID         int64     `json:"id"`
	Machine    int64     `json:"machine"`
	At         time.Time `json:"at"`
	State      string    `json:"state"`
	Reason     *int64    `json:"reason"`
	Shift      int       `json:"shift"`
	RecordedAt time.Time `json:"recorded_at"`
	RecordedBy int64     `json:"recorded_by"`
}

func (h *Handler) toEventResponse(e model.Event) eventResponse {
	return eventResponse{
		ID:         e.ID,
		Machine:    e.MachineCode,
		At:         e.At.In(h.loc),
		State:      timeline.State(e.State).String(),
		Reason:     e.Reason,
		Shift:      e.Shift,
		RecordedAt: e.RecordedAt.In(h.loc),
		RecordedBy: e.RecordedBy,
	}
}

// GetEvents lists recorded events, optionally for one machine and a
// [since, until] day range.
func (h *Handler) GetEvents(c *gin.Context) {
	var f store.EventFilter
	if raw := c.Query("machine"); raw != "" {
		code, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "machine must be an integer")
			return
		}
		f.Machines = []int64{code}
	}

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		d, err := parse.Date(raw, h.loc)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		since = d
	}
	if raw := c.Query("until"); raw != "" {
		d, err := parse.Date(raw, h.loc)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		f.Until = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	events, err := h.store.ListEvents(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		if !since.IsZero() && e.At.Before(since) {
			continue
		}
		out = append(out, h.toEventResponse(e))
	}
	c.JSON(http.StatusOK, out)
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loom-downtime-backend/internal/mw"
	"loom-downtime-backend/internal/parse"
	"loom-downtime-backend/internal/recorder"
	"loom-downtime-backend/internal/timeline"
)

type eventRequest struct {
	Machine int64  `json:"machine" binding:"required"`
	At      string `json:"at"`
	Reason  *int64 `json:"reason"`
}

// PostStoppage records that a machine stopped.
func (h *Handler) PostStoppage(c *gin.Context) {
	h.record(c, timeline.Stopped)
}

// PostRunning records that a machine resumed.
func (h *Handler) PostRunning(c *gin.Context) {
	h.record(c, timeline.Running)
}

// record reads an event submission. A missing timestamp means now.
func (h *Handler) record(c *gin.Context, state timeline.State) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "machine is required")
		return
	}

	at := h.clock()
	if req.At != "" {
		t, err := parse.Timestamp(req.At, h.loc)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		at = t
	}

	u, _ := mw.CurrentUser(c)
	e, err := h.recorder.Record(c.Request.Context(), recorder.Submission{
		User:    u,
		Machine: req.Machine,
		At:      at,
		State:   state,
		Reason:  req.Reason,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toEventResponse(e))
}

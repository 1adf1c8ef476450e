package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"loom-downtime-backend/internal/model"
	"loom-downtime-backend/internal/parse"
)

func pathInt(c *gin.Context, name string) (int64, bool) {
	n, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		badRequest(c, name+" must be an integer")
		return 0, false
	}
	return n, true
}

type machineRequest struct {
	Name string `json:"name"`
}

func (h *Handler) ListMachines(c *gin.Context) {
	machines, err := h.store.ListMachines(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// CreateMachine adds a loom with the next free code.
func (h *Handler) CreateMachine(c *gin.Context) {
	var req machineRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request")
			return
		}
	}
	m, err := h.store.CreateMachine(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) RenameMachine(c *gin.Context) {
	code, ok := pathInt(c, "code")
	if !ok {
		return
	}
	var req machineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	m, err := h.store.RenameMachine(c.Request.Context(), code, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMachine(c *gin.Context) {
	code, ok := pathInt(c, "code")
	if !ok {
		return
	}
	if err := h.store.DeleteMachine(c.Request.Context(), code); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reasonRequest struct {
	Code        int64  `json:"code" binding:"required"`
	Description string `json:"description" binding:"required"`
}

func (h *Handler) ListReasons(c *gin.Context) {
	reasons, err := h.store.ListReasons(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reasons)
}

// PutReason creates a reason or replaces its description.
func (h *Handler) PutReason(c *gin.Context) {
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "code and description are required")
		return
	}
	r, err := h.store.UpsertReason(c.Request.Context(), model.Reason{Code: req.Code, Description: req.Description})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteReason(c *gin.Context) {
	code, ok := pathInt(c, "code")
	if !ok {
		return
	}
	if err := h.store.DeleteReason(c.Request.Context(), code); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type shiftRequest struct {
	Weekday int    `json:"weekday" binding:"required,min=1,max=7"`
	Shift   int    `json:"shift" binding:"required,min=1,max=3"`
	Start   string `json:"start" binding:"required"`
	End     string `json:"end" binding:"required"`
}

func (h *Handler) ListShifts(c *gin.Context) {
	windows, err := h.store.ListShiftWindows(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, windows)
}

// PutShift replaces the window of one shift on one weekday. Times are
// normalized to HH:MM.
func (h *Handler) PutShift(c *gin.Context) {
	var req shiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "weekday (1-7), shift (1-3), start and end are required")
		return
	}
	start, err := parse.Clock(req.Start)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	end, err := parse.Clock(req.End)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	w, err := h.store.UpsertShiftWindow(c.Request.Context(), model.ShiftWindow{
		Weekday: req.Weekday,
		Shift:   req.Shift,
		Start:   start.String(),
		End:     end.String(),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) DeleteShift(c *gin.Context) {
	weekday, ok := pathInt(c, "weekday")
	if !ok {
		return
	}
	sh, ok := pathInt(c, "shift")
	if !ok {
		return
	}
	if err := h.store.DeleteShiftWindow(c.Request.Context(), int(weekday), int(sh)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

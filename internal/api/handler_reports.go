package api

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"loom-downtime-backend/internal/auth"
	"loom-downtime-backend/internal/bucket"
	"loom-downtime-backend/internal/mw"
	"loom-downtime-backend/internal/parse"
	"loom-downtime-backend/internal/report"
	"loom-downtime-backend/internal/snapshot"
	"loom-downtime-backend/internal/store"
)

// maxReportDays bounds the range of a single report request.
const maxReportDays = 366

var (
	allShifts = []int{1, 2, 3}

	errShiftDenied = errors.New("role may only report on its own shift")
)

// reportQuery is the parsed common part of every report request.
type reportQuery struct {
	days   []time.Time
	shifts []int
	now    time.Time
	params gin.H
}

func (h *Handler) parseReportQuery(c *gin.Context) (reportQuery, error) {
	now := h.clock()
	q := reportQuery{now: now}

	since := now
	if raw := c.Query("since"); raw != "" {
		d, err := parse.Date(raw, h.loc)
		if err != nil {
			return q, err
		}
		since = d
	}
	until := since
	if raw := c.Query("until"); raw != "" {
		d, err := parse.Date(raw, h.loc)
		if err != nil {
			return q, err
		}
		until = d
	}
	q.days = report.Days(since, until)
	if len(q.days) == 0 {
		return q, errors.New("until must not be before since")
	}
	if len(q.days) > maxReportDays {
		return q, fmt.Errorf("report range is limited to %d days", maxReportDays)
	}

	shifts, err := parse.IntList(c.Query("shifts"))
	if err != nil {
		return q, err
	}
	for _, s := range shifts {
		if s < 1 || s > 3 {
			return q, fmt.Errorf("unknown shift %d", s)
		}
	}
	slices.Sort(shifts)
	q.shifts = slices.Compact(shifts)

	u, _ := mw.CurrentUser(c)
	role := auth.Role(u.Role)
	if !role.Can(auth.ResReports) {
		own := role.Shift()
		if len(q.shifts) == 0 && own != 0 {
			q.shifts = []int{own}
		}
		for _, s := range q.shifts {
			if !role.Can(auth.ReportResource(s)) {
				return q, errShiftDenied
			}
		}
	}
	if len(q.shifts) == 0 {
		q.shifts = allShifts
	}

	q.params = gin.H{
		"since":  q.days[0].Format(report.DateLayout),
		"until":  q.days[len(q.days)-1].Format(report.DateLayout),
		"shifts": q.shifts,
	}
	return q, nil
}

// load parses the query and reads the events needed to answer it.
func (h *Handler) load(c *gin.Context, machines []int64) (reportQuery, *snapshot.Snapshot, *bucket.Engine, bool) {
	q, err := h.parseReportQuery(c)
	if errors.Is(err, errShiftDenied) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return q, nil, nil, false
	}
	if err != nil {
		badRequest(c, err.Error())
		return q, nil, nil, false
	}

	until := q.days[len(q.days)-1].AddDate(0, 0, 1)
	snap, err := snapshot.Load(c.Request.Context(), h.store, h.loc, store.EventFilter{Machines: machines, Until: until})
	if err != nil {
		h.fail(c, err)
		return q, nil, nil, false
	}
	return q, snap, bucket.NewEngine(snap.Calendar, q.shifts, q.now), true
}

func machineParam(c *gin.Context) (int, bool) {
	raw := c.Query("machine")
	if raw == "" {
		badRequest(c, "machine is required")
		return 0, false
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "machine must be an integer")
		return 0, false
	}
	return code, true
}

func hasMachine(snap *snapshot.Snapshot, code int) bool {
	return slices.ContainsFunc(snap.Machines, func(m report.Machine) bool { return m.Code == code })
}

// MachineReport returns running or stopped minutes per machine and day.
func (h *Handler) MachineReport(c *gin.Context) {
	mode, err := report.ParseMode(c.Query("mode"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	codes, err := parse.IntList(c.Query("machines"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	filter := make([]int64, 0, len(codes))
	for _, code := range codes {
		filter = append(filter, int64(code))
	}

	start := time.Now()
	q, snap, engine, ok := h.load(c, filter)
	if !ok {
		return
	}
	m := report.MachineMatrix(engine, q.days, snap.SelectMachines(codes), snap.Logs, mode)
	h.metrics.ObserveReport("machines", time.Since(start))

	q.params["mode"] = mode
	c.JSON(http.StatusOK, gin.H{"params": q.params, "matrix": m})
}

// ReasonReport returns the stopped minutes of one machine by reason and day.
func (h *Handler) ReasonReport(c *gin.Context) {
	code, ok := machineParam(c)
	if !ok {
		return
	}
	selected, err := parse.IntList(c.Query("reasons"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	start := time.Now()
	q, snap, engine, ok := h.load(c, []int64{int64(code)})
	if !ok {
		return
	}
	if !hasMachine(snap, code) {
		h.fail(c, store.ErrMachineNotFound)
		return
	}
	m := report.ReasonMatrix(engine, q.days, snap.Logs[code], snap.Reasons, selected)
	h.metrics.ObserveReport("reasons", time.Since(start))

	q.params["machine"] = code
	c.JSON(http.StatusOK, gin.H{"params": q.params, "matrix": m})
}

// SeriesReport returns the daily running and stopped minutes of a machine.
func (h *Handler) SeriesReport(c *gin.Context) {
	code, ok := machineParam(c)
	if !ok {
		return
	}

	start := time.Now()
	q, snap, engine, ok := h.load(c, []int64{int64(code)})
	if !ok {
		return
	}
	if !hasMachine(snap, code) {
		h.fail(c, store.ErrMachineNotFound)
		return
	}
	points := report.DailySeries(engine, q.days, snap.Logs[code])
	h.metrics.ObserveReport("series", time.Since(start))

	q.params["machine"] = code
	c.JSON(http.StatusOK, gin.H{"params": q.params, "series": points})
}

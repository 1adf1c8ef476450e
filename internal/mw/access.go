package mw

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"loom-downtime-backend/internal/metrics"
)

// AccessLog logs every request and records it in m.
func AccessLog(log zerolog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		m.ObserveHTTPRequest(c.Request.Method, path, status, elapsed)

		ev := log.Info()
		if status >= 500 {
			ev = log.Error()
		} else if status >= 400 {
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int64("duration_ms", elapsed.Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

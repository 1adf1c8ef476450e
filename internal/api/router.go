package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"loom-downtime-backend/internal/auth"
	"loom-downtime-backend/internal/mw"
)

// RouterConfig tunes the middleware stack.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.AccessLog(h.log, h.metrics))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)
	if cfg.CacheTTL <= 0 {
		caching = func(c *gin.Context) { c.Next() }
	}

	api := r.Group("/api")
	api.Use(mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	{
		api.POST("/login", h.Login)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		// Push subscriptions are keyed by the browser endpoint, not a user.
		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
	}

	authed := api.Group("")
	authed.Use(mw.Authenticate(h.store), mw.InvalidateCache(cacheStore))
	{
		authed.GET("/me", h.Me)

		read := mw.Require(auth.ResAPIRead)
		authed.GET("/status", read, h.GetStatus)
		authed.GET("/events", read, h.GetEvents)
		authed.GET("/machines", read, h.ListMachines)
		authed.GET("/reasons", read, h.ListReasons)
		authed.GET("/shifts", read, h.ListShifts)

		// Recording rights are decided per event by the admission rules.
		authed.POST("/stoppages", h.PostStoppage)
		authed.POST("/running", h.PostRunning)

		machines := mw.Require(auth.ResMachines)
		authed.POST("/machines", machines, h.CreateMachine)
		authed.PUT("/machines/:code", machines, h.RenameMachine)
		authed.DELETE("/machines/:code", machines, h.DeleteMachine)

		reasons := mw.Require(auth.ResReasons)
		authed.PUT("/reasons", reasons, h.PutReason)
		authed.DELETE("/reasons/:code", reasons, h.DeleteReason)

		shifts := mw.Require(auth.ResShifts)
		authed.PUT("/shifts", shifts, h.PutShift)
		authed.DELETE("/shifts/:weekday/:shift", shifts, h.DeleteShift)

		users := authed.Group("/users", mw.Require(auth.ResUsers))
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)

		reports := authed.Group("/reports",
			mw.Require(auth.ResReports, auth.ResReportShift1, auth.ResReportShift2, auth.ResReportShift3),
			caching)
		reports.GET("/machines", h.MachineReport)
		reports.GET("/reasons", h.ReasonReport)
		reports.GET("/series", h.SeriesReport)
	}

	return r
}

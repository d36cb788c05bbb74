package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/johnquangdev/talk-tracer/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg            *config.Config
	meetingHandler *Meeting
	auth           echo.MiddlewareFunc
	gatherer       prometheus.Gatherer
}

// RouterOption configures optional parts of the router
type RouterOption func(*Router)

// WithAuth protects the v1 group with the given middleware
func WithAuth(mw echo.MiddlewareFunc) RouterOption {
	return func(rt *Router) { rt.auth = mw }
}

// WithGatherer exposes the given registry on /metrics
func WithGatherer(g prometheus.Gatherer) RouterOption {
	return func(rt *Router) { rt.gatherer = g }
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, meetingHandler *Meeting, opts ...RouterOption) *Router {
	rt := &Router{
		cfg:            cfg,
		meetingHandler: meetingHandler,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	if rt.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(rt.gatherer, promhttp.HandlerOpts{})))
	}

	// API v1 group
	v1 := e.Group("/v1")
	if rt.auth != nil {
		v1.Use(rt.auth)
	}

	rt.setupMeetingRoutes(v1)
}

// setupMeetingRoutes configures meeting and search routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")

	meetings.POST("", rt.meetingHandler.Create)
	meetings.GET("/:id", rt.meetingHandler.Get)
	meetings.POST("/:id/runs", rt.meetingHandler.Schedule)
	meetings.GET("/:id/runs", rt.meetingHandler.Runs)
	meetings.GET("/:id/media", rt.meetingHandler.Media)

	g.GET("/search", rt.meetingHandler.Search)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	env := "production"
	if rt.cfg != nil && rt.cfg.Server.Environment != "" {
		env = rt.cfg.Server.Environment
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": env,
	})
}

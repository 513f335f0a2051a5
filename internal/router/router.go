package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/OmeoneChain/omeonechain-sub009/internal/handler"
	"github.com/OmeoneChain/omeonechain-sub009/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Feed       *handler.FeedHandler
	Engagement *handler.EngagementHandler
	Trust      *handler.TrustHandler
	Request    *handler.RequestHandler
	Stats      *handler.StatsHandler
	Health     *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Health checks (before API group, no rate limiting)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)

	// Prometheus metrics
	app.Get("/metrics", handler.MetricsHandler())

	// Rate limiters
	feedLimiter := middleware.NewFeedRateLimiter()
	toggleLimiter := middleware.NewToggleRateLimiter()
	requestLimiter := middleware.NewRequestMutationRateLimiter()
	statsLimiter := middleware.NewStatsRateLimiter()

	// API routes
	api := app.Group("/api")

	// Discovery feeds
	api.Get("/feed/trending", h.Feed.GetTrending, feedLimiter.Handler())
	api.Get("/feed/search", h.Feed.Search, feedLimiter.Handler())

	// Engagement ledger
	api.Post("/engagement/like", h.Engagement.ToggleLike, toggleLimiter.Handler())
	api.Post("/engagement/bookmark", h.Engagement.ToggleBookmark, toggleLimiter.Handler())
	api.Post("/engagement/comment", h.Engagement.RecordComment, toggleLimiter.Handler())
	api.Post("/engagement/reshare", h.Engagement.RecordReshare, toggleLimiter.Handler())
	api.Get("/engagement/state", h.Engagement.GetState)

	// Trust scores
	api.Get("/items/:itemId/trust", h.Trust.GetTrustScore)

	// Discovery requests
	api.Post("/requests", h.Request.Create, requestLimiter.Handler())
	api.Get("/requests/:requestId", h.Request.Get)
	api.Post("/requests/:requestId/responses", h.Request.Respond, requestLimiter.Handler())
	api.Post("/requests/:requestId/close", h.Request.Close, requestLimiter.Handler())
	api.Post("/requests/:requestId/award", h.Request.Award, requestLimiter.Handler())

	// Stats
	api.Get("/stats", h.Stats.GetStats, statsLimiter.Handler())
}

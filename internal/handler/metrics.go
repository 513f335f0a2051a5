package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds all Prometheus collectors for the discovery engine.
var Metrics = struct {
	TogglesTotal     *prometheus.CounterVec
	ToggleFailures   prometheus.Counter
	RequestsCreated  prometheus.Counter
	BountiesAwarded  prometheus.Counter
	RequestDuration  *prometheus.HistogramVec
	DBPoolActive     prometheus.GaugeFunc
	DBPoolIdle       prometheus.GaugeFunc
	RequestsInFlight prometheus.Gauge
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	TrendingDuration prometheus.Histogram
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
func InitMetrics(pool *pgxpool.Pool) {
	Metrics.TogglesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omeone_engagement_toggles_total",
			Help: "Total engagement toggles applied, by kind.",
		},
		[]string{"kind"},
	)

	Metrics.ToggleFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "omeone_engagement_toggle_failures_total",
			Help: "Total engagement toggles that failed and were reported to the caller.",
		},
	)

	Metrics.RequestsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "omeone_discovery_requests_created_total",
			Help: "Total discovery requests opened.",
		},
	)

	Metrics.BountiesAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "omeone_bounties_awarded_total",
			Help: "Total bounties awarded to responders.",
		},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "omeone_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "omeone_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	Metrics.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "omeone_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	)

	Metrics.CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "omeone_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	)

	Metrics.TrendingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "omeone_trending_rank_duration_seconds",
			Help:    "Duration of trending feed computations.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DB pool gauges — read live stats from pgxpool
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "omeone_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "omeone_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.TogglesTotal,
		Metrics.ToggleFailures,
		Metrics.RequestsCreated,
		Metrics.BountiesAwarded,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.CacheHits,
		Metrics.CacheMisses,
		Metrics.TrendingDuration,
	)
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next() — Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/items/"):
		return "/api/items/:itemId/trust"
	case strings.HasPrefix(path, "/api/requests/") && strings.HasSuffix(path, "/responses"):
		return "/api/requests/:requestId/responses"
	case strings.HasPrefix(path, "/api/requests/") && strings.HasSuffix(path, "/close"):
		return "/api/requests/:requestId/close"
	case strings.HasPrefix(path, "/api/requests/") && strings.HasSuffix(path, "/award"):
		return "/api/requests/:requestId/award"
	case strings.HasPrefix(path, "/api/requests/"):
		return "/api/requests/:requestId"
	default:
		return path
	}
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}

// Package server exposes the converter over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyellow/kebiao-ics/internal/converter"
	"github.com/garyellow/kebiao-ics/internal/logger"
	"github.com/garyellow/kebiao-ics/internal/metrics"
	"github.com/garyellow/kebiao-ics/internal/storage"
)

// Converter is the conversion entry point used by the handlers.
type Converter interface {
	Convert(ctx context.Context, req converter.Request) (*converter.Result, error)
}

// Publisher uploads conversion artifacts.
type Publisher interface {
	Publish(ctx context.Context, id string, ics, summaryJSON []byte) ([]string, error)
}

// RateLimiter admits or rejects requests per client key.
type RateLimiter interface {
	Allow(key string) (bool, time.Duration)
}

// Config holds HTTP settings.
type Config struct {
	MaxBodyBytes       int64
	MetricsAuthEnabled bool
	MetricsUsername    string
	MetricsPassword    string
	Sentry             bool // install the Sentry middleware
}

// Deps are the collaborators of the server. History, Publisher and Limiter
// may be nil.
type Deps struct {
	Converter Converter
	History   storage.ConversionRepository
	Publisher Publisher
	Limiter   RateLimiter
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	cfg       Config
	converter Converter
	history   storage.ConversionRepository
	publisher Publisher
	limiter   RateLimiter
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

// New creates a server.
func New(cfg Config, deps Deps) *Server {
	return &Server{
		cfg:       cfg,
		converter: deps.Converter,
		history:   deps.History,
		publisher: deps.Publisher,
		limiter:   deps.Limiter,
		registry:  deps.Registry,
		metrics:   deps.Metrics,
		logger:    deps.Logger.WithModule("server"),
	}
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if s.cfg.Sentry {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(s.logger))

	router.GET("/healthz", s.health)
	router.HEAD("/healthz", s.health)

	api := router.Group("/api")
	if s.limiter != nil {
		api.POST("/convert", s.rateLimitMiddleware("/api/convert"), s.convert)
	} else {
		api.POST("/convert", s.convert)
	}
	if s.history != nil {
		api.GET("/conversions", s.listConversions)
		api.GET("/conversions/:id/calendar.ics", s.conversionCalendar)
		api.GET("/conversions/:id/summary.json", s.conversionSummary)
	}

	if s.registry != nil {
		router.GET("/metrics",
			metricsAuthMiddleware(s.cfg.MetricsAuthEnabled, s.cfg.MetricsUsername, s.cfg.MetricsPassword),
			gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return router
}

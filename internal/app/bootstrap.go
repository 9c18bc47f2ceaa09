package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/garyellow/kebiao-ics/internal/buildinfo"
	"github.com/garyellow/kebiao-ics/internal/config"
	"github.com/garyellow/kebiao-ics/internal/converter"
	"github.com/garyellow/kebiao-ics/internal/logger"
	"github.com/garyellow/kebiao-ics/internal/metrics"
	"github.com/garyellow/kebiao-ics/internal/r2client"
	"github.com/garyellow/kebiao-ics/internal/ratelimit"
	"github.com/garyellow/kebiao-ics/internal/sentry"
	"github.com/garyellow/kebiao-ics/internal/storage"
)

// NewLogger builds the application logger writing to w, shipping to Better
// Stack when configured.
func NewLogger(cfg *config.Config, w io.Writer) *logger.Logger {
	opts := logger.Options{Format: cfg.LogFormat}
	if cfg.BetterStackActive() {
		opts.BetterStackToken = cfg.BetterStackToken
		opts.BetterStackEndpoint = cfg.BetterStackEndpoint
	}
	log := logger.NewWithOptions(cfg.LogLevel, w, opts).WithField("service", "kebiao-ics")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}
	return log
}

// InitSentry initializes error tracking when enabled. Failures are logged
// and leave tracking disabled.
func InitSentry(cfg *config.Config, log *logger.Logger) {
	if !cfg.SentryEnabled {
		return
	}
	err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.DisplayVersion(),
		SampleRate:  cfg.SentrySampleRate,
	})
	if err != nil {
		log.WithError(err).Warn("Sentry initialization failed")
		return
	}
	log.WithField("environment", cfg.SentryEnvironment).Info("Sentry error tracking enabled")
}

// NewRegistry creates a registry with the runtime collectors and the
// application metrics registered.
func NewRegistry() (*prometheus.Registry, *metrics.Metrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	return registry, metrics.New(registry)
}

// NewConverter creates the converter configured by cfg.
func NewConverter(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) *converter.Service {
	return converter.New(log, m, converter.Options{
		CalendarName: cfg.CalendarName,
		ReminderLead: cfg.ReminderLead,
	})
}

// OpenHistory opens the conversion history database. It returns nil when
// history is disabled.
func OpenHistory(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage.DB, error) {
	if !cfg.HistoryEnabled {
		return nil, nil
	}
	db, err := storage.New(ctx, cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")
	return db, nil
}

// NewPublisher creates the R2 publisher. It returns nil when R2 is disabled.
func NewPublisher(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*r2client.Publisher, error) {
	if !cfg.R2Enabled {
		return nil, nil
	}
	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    cfg.R2EndpointURL(),
		AccessKeyID: cfg.R2AccessKeyID,
		SecretKey:   cfg.R2SecretAccessKey,
		BucketName:  cfg.R2BucketName,
	})
	if err != nil {
		return nil, fmt.Errorf("r2: %w", err)
	}
	log.WithField("bucket", cfg.R2BucketName).WithField("prefix", cfg.R2Prefix).Info("R2 publishing enabled")
	return r2client.NewPublisher(client, cfg.R2Prefix, log, m), nil
}

// NewRateLimiter creates the per-client limiter of POST /api/convert. It
// returns nil when rate limiting is disabled.
func NewRateLimiter(cfg *config.Config, m *metrics.Metrics) *ratelimit.ClientLimiter {
	if cfg.RateLimitPerMinute <= 0 {
		return nil
	}
	limiter := ratelimit.NewClientLimiter(ratelimit.ClientConfig{
		PerMinute:     cfg.RateLimitPerMinute,
		Burst:         float64(cfg.RateLimitBurst),
		CleanupPeriod: config.RateLimitCleanup,
	})
	if m != nil {
		limiter.OnDrop(m.RateLimitedTotal.Inc)
		limiter.OnUpdate(func(n int) { m.RateLimitClients.Set(float64(n)) })
	}
	return limiter
}

// Package app wires configuration, storage, publishing and the HTTP server
// into a running serve-mode application.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/garyellow/kebiao-ics/internal/config"
	"github.com/garyellow/kebiao-ics/internal/logger"
	"github.com/garyellow/kebiao-ics/internal/metrics"
	"github.com/garyellow/kebiao-ics/internal/r2client"
	"github.com/garyellow/kebiao-ics/internal/ratelimit"
	"github.com/garyellow/kebiao-ics/internal/sentry"
	"github.com/garyellow/kebiao-ics/internal/server"
	"github.com/garyellow/kebiao-ics/internal/storage"
)

// pruneInterval is how often expired history is deleted.
const pruneInterval = time.Hour

// Application manages the serve-mode lifecycle and dependencies.
type Application struct {
	cfg       *config.Config
	logger    *logger.Logger
	db        *storage.DB
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	publisher *r2client.Publisher
	limiter   *ratelimit.ClientLimiter
	server    *http.Server
}

// Initialize creates the application and all its dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := NewLogger(cfg, os.Stdout)
	log.Info("Initializing application...")
	if cfg.BetterStackActive() {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}
	InitSentry(cfg, log)

	registry, m := NewRegistry()

	db, err := OpenHistory(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	publisher, err := NewPublisher(ctx, cfg, log, m)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	deps := server.Deps{
		Converter: NewConverter(cfg, log, m),
		Registry:  registry,
		Metrics:   m,
		Logger:    log,
	}
	// typed nils must not leak into the interfaces
	if db != nil {
		deps.History = db
	}
	if publisher != nil {
		deps.Publisher = publisher
	}
	limiter := NewRateLimiter(cfg, m)
	if limiter != nil {
		deps.Limiter = limiter
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(server.Config{
		MaxBodyBytes:       cfg.MaxBodyBytes,
		MetricsAuthEnabled: cfg.MetricsAuthEnabled,
		MetricsUsername:    cfg.MetricsUsername,
		MetricsPassword:    cfg.MetricsPassword,
		Sentry:             sentry.IsEnabled(),
	}, deps)

	app := &Application{
		cfg:       cfg,
		logger:    log,
		db:        db,
		metrics:   m,
		registry:  registry,
		publisher: publisher,
		limiter:   limiter,
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           srv.Router(),
			ReadHeaderTimeout: config.HTTPRead,
			ReadTimeout:       config.HTTPRead,
			WriteTimeout:      config.HTTPWrite,
			IdleTimeout:       config.HTTPIdle,
		},
	}

	log.Info("Initialization complete")
	return app, nil
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
//
// Shutdown order: stop accepting requests and drain in-flight ones, stop the
// history pruner, then close the database and flush logs and Sentry.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return a.serve(ctx, ln)
}

func (a *Application) serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.WithField("addr", ln.Addr().String()).Info("Starting HTTP server")
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.WithError(err).Error("HTTP server shutdown error")
		}
		return nil
	})

	if a.db != nil && a.cfg.HistoryRetention > 0 {
		g.Go(func() error {
			a.pruneHistory(gctx)
			return nil
		})
	}

	err := g.Wait()
	a.close()
	return err
}

// pruneHistory deletes expired conversions on startup and then hourly.
func (a *Application) pruneHistory(ctx context.Context) {
	a.logger.Debug("History pruning job started")
	defer a.logger.Debug("History pruning job stopped")

	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		a.pruneOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (a *Application) pruneOnce(ctx context.Context) {
	cutoff := time.Now().Add(-a.cfg.HistoryRetention)
	if _, err := a.db.DeleteConversionsBefore(ctx, cutoff); err != nil && ctx.Err() == nil {
		a.logger.WithError(err).Error("Failed to prune conversion history")
	}
}

// close releases resources after the server has stopped.
func (a *Application) close() {
	a.logger.Info("Closing resources...")
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.WithError(err).WithField("component", "database").Error("Component close error")
		}
	}

	sentry.Flush(2 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.logger.Info("Shutdown complete")
	if err := a.logger.Shutdown(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logger shutdown: %v\n", err)
	}
}

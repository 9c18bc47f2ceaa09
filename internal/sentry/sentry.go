// Package sentry initializes error tracking. Events go to any Sentry-compatible
// backend; Better Stack Errors accepts the DSN form https://TOKEN@HOST/1.
package sentry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Config holds Sentry configuration.
type Config struct {
	// DSN is the full client key URL. Empty disables reporting.
	DSN string

	// Environment identifies the deployment environment (e.g., "production", "staging").
	Environment string

	// Release identifies the application release version.
	Release string

	// SampleRate controls error sampling (0.0-1.0, default 1.0 = 100%).
	SampleRate float64

	// Debug enables Sentry SDK debug logging.
	Debug bool
}

// BetterStackDSN builds the DSN for a Better Stack Errors application.
// The project ID (/1) is required by the SDK but ignored by Better Stack.
func BetterStackDSN(token, host string) (string, error) {
	if token == "" || host == "" {
		return "", errors.New("sentry: token and host are required")
	}
	return fmt.Sprintf("https://%s@%s/1", token, host), nil
}

// Initialize sets up the Sentry SDK. An empty DSN leaves reporting disabled.
func Initialize(cfg Config) error {
	if cfg.DSN == "" {
		return nil
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       sampleRate,
		Debug:            cfg.Debug,
		AttachStacktrace: true,
	})
}

// Flush waits for buffered events to be sent to the server.
// Returns true if all events were sent within the timeout.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled returns true if Sentry is initialized and active.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureException captures an error and sends it to Sentry.
func CaptureException(err error) {
	sentry.CaptureException(err)
}

// CaptureConversionError reports an unexpected conversion failure tagged with
// the given values (for example source and semester_start). The hub attached
// to ctx by the gin middleware is preferred over the global one.
func CaptureConversionError(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", "converter")
		scope.SetTags(tags)
		hub.CaptureException(err)
	})
}

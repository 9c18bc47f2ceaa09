package sentry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBetterStackDSN(t *testing.T) {
	t.Parallel()

	dsn, err := BetterStackDSN("tok", "errors.betterstack.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "https://tok@errors.betterstack.com/1"; dsn != want {
		t.Errorf("BetterStackDSN() = %q, want %q", dsn, want)
	}

	if _, err := BetterStackDSN("tok", ""); err == nil {
		t.Error("expected error when host is missing")
	}
}

func TestInitialize_EmptyDSN(t *testing.T) {
	// Cannot use t.Parallel() as Sentry uses global state
	if err := Initialize(Config{}); err != nil {
		t.Errorf("Expected nil error for empty DSN, got %v", err)
	}
	// disabled client: capture must be a no-op
	CaptureConversionError(context.Background(), errors.New("boom"), map[string]string{"source": "cli"})
}

func TestInitialize_ValidConfig(t *testing.T) {
	// Cannot use t.Parallel() as Sentry uses global state
	err := Initialize(Config{
		DSN:         "https://test-token@errors.betterstack.com/1",
		Environment: "test",
		SampleRate:  1.0,
	})
	if err != nil {
		t.Fatalf("Expected nil error, got %v", err)
	}

	if !IsEnabled() {
		t.Error("Expected IsEnabled() to return true after initialization")
	}

	CaptureConversionError(context.Background(), errors.New("render failed"), map[string]string{"source": "cli"})
	CaptureConversionError(context.Background(), nil, nil)
	Flush(100 * time.Millisecond)
}

func TestInitialize_InvalidDSN(t *testing.T) {
	if err := Initialize(Config{DSN: "::not a dsn"}); err == nil {
		t.Error("expected error for malformed DSN")
	}
}

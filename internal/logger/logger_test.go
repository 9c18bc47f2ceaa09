package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/garyellow/kebiao-ics/internal/ctxutil"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log %q: %v", buf.String(), err)
	}
	return entry
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Info("conversion finished")

	entry := decodeLine(t, &buf)
	for _, field := range []string{"timestamp", "level", "message"} {
		if _, ok := entry[field]; !ok {
			t.Errorf("JSON log missing required field %q", field)
		}
	}
	if entry["message"] != "conversion finished" {
		t.Errorf("message = %v, want %q", entry["message"], "conversion finished")
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want %q", entry["level"], "info")
	}
}

func TestLogger_WarnLevelName(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewWithWriter("debug", &buf).Warn("period out of range")

	if entry := decodeLine(t, &buf); entry["level"] != "warning" {
		t.Errorf("level = %v, want warning", entry["level"])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWithWriter("error", &buf)

	log.Info("dropped")
	log.Warn("dropped too")
	if buf.Len() != 0 {
		t.Errorf("expected no output below error level, got %q", buf.String())
	}
}

func TestLogger_Fields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf).
		WithModule("timetable").
		WithField("course", "Algorithms").
		WithFields(map[string]any{"weeks": 8}).
		WithError(errors.New("no period"))

	log.Warn("time-location dropped")

	entry := decodeLine(t, &buf)
	if entry["module"] != "timetable" {
		t.Errorf("module = %v, want timetable", entry["module"])
	}
	if entry["course"] != "Algorithms" {
		t.Errorf("course = %v, want Algorithms", entry["course"])
	}
	if entry["weeks"] != float64(8) {
		t.Errorf("weeks = %v, want 8", entry["weeks"])
	}
	if entry["error"] != "no period" {
		t.Errorf("error = %v, want %q", entry["error"], "no period")
	}
}

func TestLogger_ContextValues(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	ctx := ctxutil.WithRequestID(context.Background(), "req-123")
	ctx = ctxutil.WithConversionID(ctx, "conv-1")
	log.InfoContext(ctx, "converted")

	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req-123" {
		t.Errorf("request_id = %v, want req-123", entry["request_id"])
	}
	if entry["conversion_id"] != "conv-1" {
		t.Errorf("conversion_id = %v, want conv-1", entry["conversion_id"])
	}
}

func TestLogger_TextFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := NewWithOptions("info", &buf, Options{Format: "text"})

	log.Info("hello", "courses", 3)

	out := buf.String()
	if !strings.Contains(out, "message=hello") || !strings.Contains(out, "courses=3") {
		t.Errorf("unexpected text output %q", out)
	}
}

func TestLogger_ShutdownWithoutRemote(t *testing.T) {
	t.Parallel()
	log := NewWithWriter("info", &bytes.Buffer{})
	if err := log.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}

	var nilLogger *Logger
	if err := nilLogger.Shutdown(context.Background()); err != nil {
		t.Errorf("nil Shutdown() error = %v", err)
	}
}

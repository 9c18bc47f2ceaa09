// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	requestIDKey    contextKey = "ctxutil.requestID"
	conversionIDKey contextKey = "ctxutil.conversionID"
	sourceKey       contextKey = "ctxutil.source"
)

// WithRequestID adds an HTTP request ID to the context for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}

// WithConversionID adds the ID of the conversion being processed.
func WithConversionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, conversionIDKey, id)
}

// GetConversionID returns the conversion ID, or "" when none is set.
func GetConversionID(ctx context.Context) string {
	if v, ok := ctx.Value(conversionIDKey).(string); ok {
		return v
	}
	return ""
}

// WithSource records where the timetable came from ("cli", "http").
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey, source)
}

// GetSource returns the source set by WithSource, or "".
func GetSource(ctx context.Context) string {
	if v, ok := ctx.Value(sourceKey).(string); ok {
		return v
	}
	return ""
}

// PreserveTracing creates a detached context that keeps only the tracing values.
// The new context is independent of the parent's cancellation and deadlines,
// for work such as publishing that must finish after an HTTP response is sent.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()

	if requestID, ok := GetRequestID(ctx); ok && requestID != "" {
		newCtx = WithRequestID(newCtx, requestID)
	}
	if id := GetConversionID(ctx); id != "" {
		newCtx = WithConversionID(newCtx, id)
	}
	if src := GetSource(ctx); src != "" {
		newCtx = WithSource(newCtx, src)
	}
	return newCtx
}

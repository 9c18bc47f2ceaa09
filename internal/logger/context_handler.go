package logger

import (
	"context"
	"log/slog"

	"github.com/garyellow/kebiao-ics/internal/ctxutil"
)

// ContextHandler adds request_id, conversion_id and source attributes taken
// from the context to every record logged through a *Context method.
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler wraps handler.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

// Enabled delegates to the wrapped handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle enriches r from ctx and delegates.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if requestID, ok := ctxutil.GetRequestID(ctx); ok && requestID != "" {
		r.AddAttrs(slog.String("request_id", requestID))
	}
	if id := ctxutil.GetConversionID(ctx); id != "" {
		r.AddAttrs(slog.String("conversion_id", id))
	}
	if src := ctxutil.GetSource(ctx); src != "" {
		r.AddAttrs(slog.String("source", src))
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a ContextHandler around the wrapped handler's WithAttrs.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a ContextHandler around the wrapped handler's WithGroup.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}

package logger

import (
	"context"
	"log/slog"
)

// teeHandler writes every record to the local sink and copies it to the
// remote one. Only local failures are returned: shipping logs off-host must
// never break logging on the console.
type teeHandler struct {
	local  slog.Handler
	remote slog.Handler
}

func newTeeHandler(local, remote slog.Handler) slog.Handler {
	if remote == nil {
		return local
	}
	return &teeHandler{local: local, remote: remote}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.local.Enabled(ctx, level) || h.remote.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.remote.Enabled(ctx, r.Level) {
		_ = h.remote.Handle(ctx, r.Clone())
	}
	if !h.local.Enabled(ctx, r.Level) {
		return nil
	}
	return h.local.Handle(ctx, r)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{local: h.local.WithAttrs(attrs), remote: h.remote.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{local: h.local.WithGroup(name), remote: h.remote.WithGroup(name)}
}

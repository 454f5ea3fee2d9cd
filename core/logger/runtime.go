package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	metaKey ctxKey = iota
	loggerKey
)

// UpdateMeta identifies the Telegram update a log line belongs to.
type UpdateMeta struct {
	RID      string
	UpdateID int
	UserID   int64
	ChatID   int64
	Handler  string
}

// WithMeta attaches update identifiers to ctx, replacing any previous set.
func WithMeta(ctx context.Context, meta UpdateMeta) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, metaKey, meta)
}

// MetaFrom returns the identifiers stored by WithMeta, or the zero value.
func MetaFrom(ctx context.Context) UpdateMeta {
	if ctx == nil {
		return UpdateMeta{}
	}
	meta, _ := ctx.Value(metaKey).(UpdateMeta)
	return meta
}

// WithRID sets only the correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	meta := MetaFrom(ctx)
	meta.RID = rid
	return WithMeta(ctx, meta)
}

// WithHandler records which handler is processing the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	meta := MetaFrom(ctx)
	meta.Handler = handler
	return WithMeta(ctx, meta)
}

// WithLogger stores a scoped logger in ctx.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the logger stored by WithLogger, falling back to L.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

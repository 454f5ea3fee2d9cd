package helpers

import (
	"context"

	"github.com/m3rciful/sheetbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Keys shared with the logging middleware through tele.Context storage.
const (
	ridKey = "rid"
	ctxKey = "update_ctx"
)

// Meta returns the identifiers of the update being handled. The rid set by
// the logging middleware is reused when present.
func Meta(c tele.Context) logger.UpdateMeta {
	var meta logger.UpdateMeta
	if upd := c.Update(); upd.ID != 0 {
		meta.UpdateID = upd.ID
	}
	if chat := c.Chat(); chat != nil {
		meta.ChatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		meta.UserID = user.ID
	}
	meta.RID, _ = c.Get(ridKey).(string)
	if meta.RID == "" {
		meta.RID = logger.BuildRID(meta.UpdateID, meta.ChatID, meta.UserID)
	}
	return meta
}

// SetRID pins the correlation id for the rest of the update.
func SetRID(c tele.Context, rid string) {
	c.Set(ridKey, rid)
}

// BuildContext returns the per-update logging context, creating it on first use.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(ctxKey).(context.Context); ok {
		return ctx
	}
	ctx := logger.WithMeta(context.Background(), Meta(c))
	c.Set(ctxKey, ctx)
	return ctx
}

// WithHandler tags the update context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := logger.WithHandler(BuildContext(c), handler)
	c.Set(ctxKey, ctx)
	return ctx
}

package telegram

import (
	"context"
	"log/slog"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/sheetbot/core/config"
	"github.com/m3rciful/sheetbot/core/logger"
	"github.com/m3rciful/sheetbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// rateLimitOptions maps the rate_limit section onto the middleware options.
// It reports false when limiting is switched off.
func rateLimitOptions(rl coreconfig.RateLimitConfig, onLimited tele.HandlerFunc) (middleware.RateLimitOptions, bool) {
	interval := time.Duration(rl.IntervalMS) * time.Millisecond
	if interval <= 0 {
		return middleware.RateLimitOptions{}, false
	}
	exclude := make(map[string]struct{}, len(rl.ExcludeUpdates))
	for _, kind := range rl.ExcludeUpdates {
		if kind = strings.ToLower(strings.TrimSpace(kind)); kind != "" {
			exclude[kind] = struct{}{}
		}
	}
	return middleware.RateLimitOptions{
		Interval:  interval,
		Burst:     rl.Burst,
		Exclude:   exclude,
		OnLimited: onLimited,
	}, true
}

// DefaultMiddlewares returns the global chain in bot.Use order: recover,
// the optional per-user rate limit, update logging and response stats.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited tele.HandlerFunc) []Middleware {
	chain := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}
	if cfg != nil {
		if opts, ok := rateLimitOptions(cfg.RateLimit, onLimited); ok {
			chain = append(chain, Middleware{Name: "rate_limit", Use: middleware.RateLimitMiddleware(opts)})
		}
	}
	chain = append(chain,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)

	names := make([]string, len(chain))
	for i, mw := range chain {
		names[i] = mw.Name
	}
	logger.Debug(context.Background(), logger.ComponentWire, "tg.wire.middlewares",
		slog.String("chain", strings.Join(names, ",")),
	)
	return chain
}

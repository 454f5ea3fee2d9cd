package viewer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/sheetbot/core/logger"
)

// DefaultCleanupInterval is how often idle sessions are swept.
const DefaultCleanupInterval = 10 * time.Minute

// CleanupService periodically evicts idle sessions from a Store.
type CleanupService struct {
	store    *Store
	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewCleanupService returns a stopped service; interval <= 0 uses DefaultCleanupInterval.
func NewCleanupService(store *Store, interval time.Duration) *CleanupService {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	return &CleanupService{store: store, interval: interval}
}

// Start launches the sweep loop. Calling Start on a running service is a no-op.
func (c *CleanupService) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true
	go c.loop(loopCtx, c.done)
}

// Stop cancels the loop and waits for it to exit.
func (c *CleanupService) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	cancel()
	<-done
}

// Running reports whether the loop is active.
func (c *CleanupService) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *CleanupService) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	logger.Debug(ctx, logger.ComponentSessions, "cleanup.start",
		slog.Duration("interval", c.interval),
	)
	for {
		select {
		case <-ctx.Done():
			logger.Debug(ctx, logger.ComponentSessions, "cleanup.stop")
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *CleanupService) sweep(ctx context.Context) {
	start := time.Now()
	removed := c.store.CleanupExpired()
	if removed == 0 {
		return
	}
	logger.Info(ctx, logger.ComponentSessions, "sessions.evicted",
		slog.String("status", "ok"),
		slog.Int("count", removed),
		slog.Int("pending_count", c.store.Len()),
		slog.Duration("duration", logger.Took(start)),
	)
}

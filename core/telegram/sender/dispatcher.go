// Package sender runs outbound Bot API calls on a small worker pool with
// retries and a global send rate.
package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/m3rciful/sheetbot/core/logger"
	"github.com/m3rciful/sheetbot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull is returned when the job queue has no room left.
	ErrQueueFull = errors.New("telegram sender: queue full")

	errNilJob = errors.New("telegram sender: nil run function")
)

const component = "tg.sender"

// Options tunes the dispatcher; zero values select the defaults.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds all attempts of one job, waits included.
	MaxDuration time.Duration
	// PerSecond caps outbound calls across all workers. Telegram allows
	// about 30 messages per second per bot.
	PerSecond float64
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	if o.PerSecond <= 0 {
		o.PerSecond = 25
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

func (j job) attrs(extra ...slog.Attr) []slog.Attr {
	return append([]slog.Attr{
		slog.String("op", j.action),
		slog.String("endpoint", j.endpoint),
	}, extra...)
}

// Dispatcher executes queued Bot API calls. Jobs may run out of order.
type Dispatcher struct {
	opts    Options
	limiter *rate.Limiter

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	wg     sync.WaitGroup
	once   sync.Once

	failed atomic.Uint64
}

// NewDispatcher starts the workers.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.PerSecond), max(1, int(opts.PerSecond))),
		jobs:    make(chan job, opts.QueueSize),
	}
	d.wg.Add(opts.Workers)
	for range opts.Workers {
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.process(j)
			}
		}()
	}
	return d
}

// Enqueue schedules run without blocking. run may be called more than once
// when the call fails with a retryable error.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errNilJob
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns how many jobs failed for good.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.failed.Load()
}

// Close rejects new jobs and waits for the queued ones to finish.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.jobs)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

func (d *Dispatcher) process(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempt, err := d.attempts(ctx, j)
	elapsed := slog.Duration("elapsed", logger.Took(start))
	if err == nil {
		lvl := slog.LevelDebug
		if attempt > 1 {
			lvl = slog.LevelInfo
		}
		logger.Event(j.ctx, component, lvl, "send.ok", j.attrs(slog.Int("attempts", attempt), elapsed)...)
		return
	}
	d.failed.Add(1)
	logger.Error(j.ctx, component, "send.fail", j.attrs(
		slog.Int("attempts", attempt),
		slog.String("err", netutil.Redact(err.Error())),
		slog.String("err_code", classifyError(err)),
		elapsed,
	)...)
}

// attempts calls j.run until it succeeds, fails permanently, runs out of
// retries or ctx expires. It returns the number of calls made.
func (d *Dispatcher) attempts(ctx context.Context, j job) (int, error) {
	limit := d.opts.MaxRetries + 1
	for n := 1; ; n++ {
		if err := d.limiter.Wait(ctx); err != nil {
			return n - 1, err
		}
		err := j.run()
		if err == nil {
			return n, nil
		}
		if n == limit || !netutil.ShouldRetry(err) {
			return n, err
		}

		delay := retryDelay(err, d.opts.RetryBackoff, n)
		logger.Debug(j.ctx, component, "send.retry", j.attrs(
			slog.Int("attempt", n),
			slog.Duration("backoff", delay),
		)...)
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return n, errors.Join(err, ctx.Err())
		case <-t.C:
		}
	}
}

// retryDelay grows linearly with the attempt number unless Telegram named
// a flood-control wait.
func retryDelay(err error, backoff time.Duration, attempt int) time.Duration {
	var flood tele.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		return time.Duration(flood.RetryAfter) * time.Second
	}
	return backoff * time.Duration(attempt)
}

// classifyError maps a send error to a short err_code for logs.
func classifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}

	var (
		netErr   net.Error
		dnsErr   *net.DNSError
		opErr    *net.OpError
		urlErr   *url.Error
		tlsAlert tls.AlertError
	)
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	if errors.As(err, &dnsErr) {
		return "dns"
	}
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "dial"
	}
	if errors.As(err, &tlsAlert) {
		return "tls"
	}
	if errors.As(err, &urlErr) && urlErr.Err != nil && urlErr.Err != err {
		if kind := classifyError(urlErr.Err); kind != "unknown" {
			return kind
		}
	}

	switch code := statusCode(err); {
	case code >= 500:
		return "http_5xx"
	case code >= 400:
		return "http_4xx"
	}
	return "unknown"
}

// statusCode extracts the HTTP status from a Bot API error. Plain errors
// are checked for a trailing "(NNN)" as telebot formats them.
func statusCode(err error) int {
	var (
		apiErr   *tele.Error
		flood    tele.FloodError
		groupErr tele.GroupError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code
	case errors.As(err, &flood):
		return http.StatusTooManyRequests
	case errors.As(err, &groupErr):
		return http.StatusBadRequest
	}

	msg := strings.TrimSpace(err.Error())
	if !strings.HasSuffix(msg, ")") {
		return 0
	}
	open := strings.LastIndexByte(msg, '(')
	if open < 0 {
		return 0
	}
	code, convErr := strconv.Atoi(msg[open+1 : len(msg)-1])
	if convErr != nil {
		return 0
	}
	return code
}

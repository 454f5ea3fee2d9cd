package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/sheetbot/core/buildinfo"
	coreconfig "github.com/m3rciful/sheetbot/core/config"
)

// Component names attached to every event.
const (
	ComponentApp      = "app"
	ComponentDB       = "db"
	ComponentTG       = "tg"
	ComponentMigrate  = "db.migrate"
	ComponentWire     = "tg.wire"
	ComponentLinks    = "service.links"
	ComponentViewer   = "service.viewer"
	ComponentSessions = "service.sessions"
	ComponentActivity = "service.activity"
)

const (
	defaultSampleKeep   = 1
	defaultSampleWindow = 50
)

// L is the process logger. It stays nil until InitLogger succeeds, and
// every helper in this package tolerates that.
var L *slog.Logger

var (
	initOnce sync.Once
	level    slog.LevelVar
	sampler  debugSampler
	trace    bool

	sinkMu  sync.Mutex
	sink    *asyncWriter
	files   []io.Closer
	stopped bool
)

// options is the logging section of the config after defaults are applied.
type options struct {
	format  logFormat
	order   []string
	level   slog.Level
	keep    int
	window  int
	profile string
	file    string
}

func resolveOptions(cfg *coreconfig.Config) options {
	opts := options{
		format:  formatJSON,
		order:   append([]string(nil), defaultKeyOrder...),
		level:   slog.LevelInfo,
		keep:    defaultSampleKeep,
		window:  defaultSampleWindow,
		profile: "prod",
	}
	if cfg == nil {
		return opts
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		opts.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		opts.format = formatKV
	case "json":
	default:
		if opts.profile == "debug" || opts.profile == "dev" {
			opts.format = formatKV
		}
	}
	if keys := splitKeys(lc.KeysOrder); len(keys) > 0 {
		opts.order = keys
	}
	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		opts.level = slog.LevelDebug
	case "warn", "warning":
		opts.level = slog.LevelWarn
	case "error":
		opts.level = slog.LevelError
	}
	if keep, window, ok := parseSampleSpec(lc.DebugSample); ok {
		opts.keep, opts.window = keep, window
	}
	if dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && name != "" {
		opts.file = filepath.Join(dir, name)
	}
	return opts
}

func splitKeys(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return nil
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// InitLogger installs the structured logger as L and as the slog default.
// Only the first call has any effect.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		opts := resolveOptions(cfg)
		level.Set(opts.level)
		sampler.set(opts.keep, opts.window)
		trace = envFlag("TRACE") || envFlag("LOG_TRACE")

		outputs := []io.Writer{os.Stdout}
		if opts.file != "" {
			f, err := openLogFile(opts.file)
			if err != nil {
				// Stdout keeps working; the file sink is optional.
				fmt.Fprintf(os.Stderr, "logger: %v\n", err)
			} else {
				outputs = append(outputs, f)
				files = append(files, f)
			}
		}

		sink = newAsyncWriter(outputs, 64*1024)
		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &level,
			writer:   sink,
			format:   opts.format,
			keyOrder: opts.order,
		}))
		slog.SetDefault(L)
		announce(cfg, opts)
	})
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func announce(cfg *coreconfig.Config, opts options) {
	attrs := []slog.Attr{
		slog.String("version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("go_version", runtime.Version()),
		slog.String("cfg_profile", opts.profile),
	}
	if cfg != nil {
		attrs = append(attrs,
			slog.String("mode", cfg.Telegram.RunMode),
			slog.Int("page_size", cfg.Viewer.PageSize),
			slog.Bool("db", cfg.Database.Enabled()),
		)
	}
	Info(context.Background(), ComponentApp, "startup", attrs...)
}

// Shutdown flushes pending lines and closes log files. Later calls are no-ops.
func Shutdown() error {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if stopped {
		return nil
	}
	stopped = true

	var errs []error
	if sink != nil {
		errs = append(errs, sink.Flush(), sink.Close())
	}
	for _, f := range files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// LogEvent writes one event through log, or through the logger in ctx when log is nil.
func LogEvent(ctx context.Context, log *slog.Logger, lvl slog.Level, event string, attrs ...slog.Attr) {
	if log == nil {
		log = FromContext(ctx)
	}
	if log == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	log.LogAttrs(ctx, lvl, "", attrs...)
}

// Event logs through the logger in ctx, scoped to component.
func Event(ctx context.Context, component string, lvl slog.Level, event string, attrs ...slog.Attr) {
	log := FromContext(ctx)
	if log == nil {
		return
	}
	if component = strings.TrimSpace(component); component != "" {
		log = log.With("component", component)
	}
	LogEvent(ctx, log, lvl, event, attrs...)
}

// Debug logs at debug level.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs at info level.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs at warn level.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs at error level.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug event should be
// written. TRACE=1 disables sampling.
func ShouldSampleDebug() bool {
	return trace || sampler.allow()
}

func envFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

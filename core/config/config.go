package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
	// SupportURL is linked from the welcome message; empty hides the button.
	SupportURL string `yaml:"support_url" envconfig:"TELEGRAM_SUPPORT_URL"`
}

// WebhookConfig specifies webhook settings. PORT is honoured as a fallback
// for hosting platforms that assign the listen port.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// ViewerConfig tunes the spreadsheet viewer sessions.
type ViewerConfig struct {
	PageSize        int           `yaml:"page_size" envconfig:"VIEWER_PAGE_SIZE"`
	SessionTTL      time.Duration `yaml:"session_ttl" envconfig:"VIEWER_SESSION_TTL"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" envconfig:"VIEWER_CLEANUP_INTERVAL"`
	MaxSessions     int           `yaml:"max_sessions" envconfig:"VIEWER_MAX_SESSIONS"`
	MaxFileBytes    int64         `yaml:"max_file_bytes" envconfig:"VIEWER_MAX_FILE_BYTES"`
}

// DatabaseConfig holds Postgres connection settings. An empty Host disables the database.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	MigrationsDir  string `yaml:"migrations_dir" envconfig:"DB_MIGRATIONS_DIR"`
}

// Enabled reports whether a database was configured.
func (d DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(d.Host) != ""
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
	// UpdateInlineQuery identifies inline query updates for rate limit exclusions.
	UpdateInlineQuery = "inline_query"
	// UpdateDocument identifies document uploads for rate limit exclusions.
	UpdateDocument = "document"
)

const (
	// DefaultPageSize is the number of spreadsheet rows shown per page.
	DefaultPageSize = 100
	// MaxPageSize keeps a page of numbers within one Telegram message.
	MaxPageSize = 150
	// DefaultSessionTTL is the idle time after which a viewer session is dropped.
	DefaultSessionTTL = 6 * time.Hour
	// DefaultCleanupInterval is how often idle sessions are swept.
	DefaultCleanupInterval = 10 * time.Minute
	// DefaultMaxSessions caps concurrently held spreadsheets.
	DefaultMaxSessions = 1000
	// DefaultMaxFileBytes matches the Bot API download limit.
	DefaultMaxFileBytes int64 = 20 << 20
)

// RateLimitConfig holds settings for per-user rate limiting.
// IntervalMS is the minimum spacing between updates and Burst the number
// of updates allowed back to back. ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
// - "inline_query": inline query updates
// - "document": file uploads
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	Burst          int      `yaml:"burst" envconfig:"RATE_LIMIT_BURST"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Database  DatabaseConfig  `yaml:"database"`
}

// Load reads configuration from a YAML file and environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win. A missing YAML file is
// tolerated so the bot can be configured from the environment alone.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML config: %w", err)
			}
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	applyPortFallback(&cfg)

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyPortFallback(cfg *Config) {
	if cfg.Webhook.Port > 0 {
		return
	}
	raw := strings.TrimSpace(os.Getenv("PORT"))
	if raw == "" {
		return
	}
	var port int
	if _, err := fmt.Sscanf(raw, "%d", &port); err == nil && port > 0 {
		cfg.Webhook.Port = port
	}
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			cfg.Webhook.Listen = "0.0.0.0"
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port (or PORT) must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if err := normalizeRateLimit(&cfg.RateLimit); err != nil {
		return err
	}
	if err := normalizeViewer(&cfg.Viewer); err != nil {
		return err
	}
	normalizeDatabase(&cfg.Database)
	return nil
}

func normalizeRateLimit(rl *RateLimitConfig) error {
	if rl.IntervalMS < 0 {
		return fmt.Errorf("rate_limit.interval_ms must be >= 0")
	}
	if rl.Burst <= 0 {
		rl.Burst = 1
	}
	allowed := map[string]struct{}{
		UpdateCallback:    {},
		UpdateMessage:     {},
		UpdateInlineQuery: {},
		UpdateDocument:    {},
	}
	for i, v := range rl.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message, inline_query, document", v)
		}
		rl.ExcludeUpdates[i] = key
	}
	return nil
}

func normalizeViewer(v *ViewerConfig) error {
	if v.PageSize == 0 {
		v.PageSize = DefaultPageSize
	}
	if v.PageSize < 1 || v.PageSize > MaxPageSize {
		return fmt.Errorf("viewer.page_size must be within 1..%d, got %d", MaxPageSize, v.PageSize)
	}
	if v.SessionTTL < 0 || v.CleanupInterval < 0 || v.MaxSessions < 0 || v.MaxFileBytes < 0 {
		return fmt.Errorf("viewer settings must not be negative")
	}
	if v.SessionTTL == 0 {
		v.SessionTTL = DefaultSessionTTL
	}
	if v.CleanupInterval == 0 {
		v.CleanupInterval = DefaultCleanupInterval
	}
	if v.MaxSessions == 0 {
		v.MaxSessions = DefaultMaxSessions
	}
	if v.MaxFileBytes == 0 {
		v.MaxFileBytes = DefaultMaxFileBytes
	}
	return nil
}

func normalizeDatabase(d *DatabaseConfig) {
	if !d.Enabled() {
		return
	}
	if d.Port == "" {
		d.Port = "5432"
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.MaxConnections <= 0 {
		d.MaxConnections = 5
	}
	if d.MigrationsDir == "" {
		d.MigrationsDir = "migrations"
	}
}

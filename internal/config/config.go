// Package config loads and validates the bot configuration from the
// environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Runtime modes.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Scheduled task names, shared with the task registry.
const (
	TaskSessionSweep  = "session_sweep"
	TaskBackendHealth = "backend_health"
)

// ErrValidation wraps every configuration problem reported by Load.
var ErrValidation = errors.New("configuration error")

// Config defines the application configuration.
type Config struct {
	Env       string          `mapstructure:"env" validate:"required,oneof=development staging production"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Session   SessionConfig   `mapstructure:"session"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  Messages        `mapstructure:"-"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig covers the bot token, the mini-app link and the webhook
// listener used in production.
type TelegramConfig struct {
	Token          string        `mapstructure:"token"           validate:"required"`
	MiniAppLink    string        `mapstructure:"mini_app_link"   validate:"required,contains={botusername}"`
	WebhookURL     string        `mapstructure:"webhook_url"     validate:"omitempty,url"`
	WebhookSecret  string        `mapstructure:"webhook_secret"`
	Port           int           `mapstructure:"port"            validate:"min=1,max=65535"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=1s,max=5m"`
}

type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	APIKey  string        `mapstructure:"api_key"  validate:"required"`
	Timeout time.Duration `mapstructure:"timeout"  validate:"min=1s,max=5m"`
}

// SessionConfig selects the pending-request store. An empty RedisURL keeps
// requests in process memory.
type SessionConfig struct {
	TTL      time.Duration `mapstructure:"ttl"       validate:"min=1m,max=24h"`
	RedisURL string        `mapstructure:"redis_url" validate:"omitempty,url"`
}

type SchedulerConfig struct {
	SessionSweep  string `mapstructure:"session_sweep"`
	BackendHealth string `mapstructure:"backend_health"`

	Tasks map[string]TaskConfig `mapstructure:"-"`
}

// TaskConfig configures one scheduled task.
type TaskConfig struct {
	Enabled  bool
	Schedule string
}

// envBindings maps config keys to the environment variables that feed them.
var envBindings = map[string]string{
	"env":                      "ENV",
	"logger.level":             "LOG_LEVEL",
	"logger.json":              "LOG_JSON",
	"telegram.token":           "TELEGRAM_BOT_TOKEN",
	"telegram.mini_app_link":   "MINI_APP_DEEPLINK",
	"telegram.webhook_url":     "TELEGRAM_WEBHOOK_URL",
	"telegram.webhook_secret":  "TELEGRAM_WEBHOOK_SECRET",
	"telegram.port":            "PORT",
	"telegram.request_timeout": "TELEGRAM_REQUEST_TIMEOUT",
	"backend.base_url":         "API_BASE_URL",
	"backend.api_key":          "API_KEY",
	"backend.timeout":          "API_TIMEOUT",
	"session.ttl":              "SESSION_TTL",
	"session.redis_url":        "REDIS_URL",
	"scheduler.session_sweep":  "SCHEDULER_SESSION_SWEEP",
	"scheduler.backend_health": "SCHEDULER_BACKEND_HEALTH",
}

var defaults = map[string]any{
	"env":                      EnvDevelopment,
	"logger.level":             "info",
	"logger.json":              false,
	"telegram.webhook_secret":  "NotSoSecret",
	"telegram.port":            8443,
	"telegram.request_timeout": 30 * time.Second,
	"backend.timeout":          10 * time.Second,
	"session.ttl":              15 * time.Minute,
	"scheduler.session_sweep":  "0 */5 * * * *",
	"scheduler.backend_health": "30 * * * * *",
}

// Load reads the optional .env files (".env" when none are given), then the
// environment, applies defaults and validates the result. Any error means
// the process must not start.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("env file not found, skipping", "path", f)
				continue
			}
			return nil, fmt.Errorf("%w: failed to read %s: %v", ErrValidation, f, err)
		}
		slog.Debug("env file loaded", "path", f)
	}

	v := viper.New()
	v.AllowEmptyEnv(true)
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("%w: failed to bind %s: %v", ErrValidation, env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse environment: %v", ErrValidation, err)
	}
	cfg.Messages = DefaultMessages()
	cfg.Scheduler.Tasks = map[string]TaskConfig{
		TaskSessionSweep:  {Enabled: cfg.Scheduler.SessionSweep != "", Schedule: cfg.Scheduler.SessionSweep},
		TaskBackendHealth: {Enabled: cfg.Scheduler.BackendHealth != "", Schedule: cfg.Scheduler.BackendHealth},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"log_level", cfg.Logger.Level,
		"backend_base_url", cfg.Backend.BaseURL,
		"webhook", cfg.UseWebhook(),
		"redis_sessions", cfg.Session.RedisURL != "")

	return cfg, nil
}

// Validate checks struct constraints and the rules that span fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if c.Env == EnvProduction && c.Telegram.WebhookURL == "" {
		return fmt.Errorf("%w: TELEGRAM_WEBHOOK_URL is required in production", ErrValidation)
	}
	return nil
}

// UseWebhook reports whether updates arrive by webhook instead of polling.
func (c *Config) UseWebhook() bool {
	return c.Env == EnvProduction
}

// WebhookPath is the path component of the public webhook URL.
func (c *Config) WebhookPath() string {
	u, err := url.Parse(c.Telegram.WebhookURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

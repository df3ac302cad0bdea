package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"homework_status_bot/internal/domain/failure"
	"homework_status_bot/internal/infra/practicum"
	"homework_status_bot/internal/infra/scheduler"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	PracticumToken string
	TelegramToken  string
	TelegramChatID string // Numeric id or @channelname
	TelegramAPIURL string
	Endpoint       string
	PollSchedule   string
	HTTPTimeout    time.Duration
	SendRatePerSec float64
	LogLevel       string
	Environment    string
	DatabaseURL    string // Optional; enables the delivery journal
}

// envSpec mirrors the raw environment. Secrets carry no defaults so their
// absence can be reported by name.
type envSpec struct {
	PracticumToken string        `env:"PRACTICUM_TOKEN"`
	TelegramToken  string        `env:"TELEGRAM_TOKEN"`
	TelegramChatID string        `env:"TELEGRAM_CHAT_ID"`
	TelegramAPIURL string        `env:"TELEGRAM_API_URL"`
	Endpoint       string        `env:"PRACTICUM_ENDPOINT"    envDefault:"https://practicum.yandex.ru/api/user_api/homework_statuses/"`
	PollSchedule   string        `env:"POLL_SCHEDULE"         envDefault:"10m"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT"          envDefault:"30s"`
	SendRatePerSec float64       `env:"TELEGRAM_RATE_PER_SEC" envDefault:"1"`
	LogLevel       string        `env:"LOG_LEVEL"             envDefault:"debug"`
	Environment    string        `env:"ENVIRONMENT"           envDefault:"development"`
	DatabaseURL    string        `env:"DATABASE_URL"`
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	return LoadFrom(env.ToMap(os.Environ()))
}

// LoadFrom builds the configuration from an explicit variable set.
// Every problem is collected into a single *failure.ConfigError.
func LoadFrom(environ map[string]string) (*AppConfig, error) {
	var spec envSpec
	if err := env.ParseWithOptions(&spec, env.Options{Environment: environ}); err != nil {
		return nil, &failure.ConfigError{Err: fmt.Errorf("parse env: %w", err)}
	}

	cfgErr := &failure.ConfigError{}
	cfg := &AppConfig{
		PracticumToken: strings.TrimSpace(spec.PracticumToken),
		TelegramToken:  strings.TrimSpace(spec.TelegramToken),
		TelegramAPIURL: strings.TrimSpace(spec.TelegramAPIURL),
		Endpoint:       strings.TrimSpace(spec.Endpoint),
		PollSchedule:   strings.TrimSpace(spec.PollSchedule),
		HTTPTimeout:    spec.HTTPTimeout,
		SendRatePerSec: spec.SendRatePerSec,
		LogLevel:       strings.ToLower(strings.TrimSpace(spec.LogLevel)),
		Environment:    strings.ToLower(strings.TrimSpace(spec.Environment)),
		DatabaseURL:    strings.TrimSpace(spec.DatabaseURL),
	}

	if cfg.PracticumToken == "" {
		cfgErr.Missing = append(cfgErr.Missing, "PRACTICUM_TOKEN")
	}
	if cfg.TelegramToken == "" {
		cfgErr.Missing = append(cfgErr.Missing, "TELEGRAM_TOKEN")
	}
	chatIDStr := strings.TrimSpace(spec.TelegramChatID)
	if chatIDStr == "" {
		cfgErr.Missing = append(cfgErr.Missing, "TELEGRAM_CHAT_ID")
	} else if !validChatID(chatIDStr) {
		cfgErr.Invalid = append(cfgErr.Invalid, "TELEGRAM_CHAT_ID")
	} else {
		cfg.TelegramChatID = chatIDStr
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = practicum.DefaultEndpoint
	}
	if cfg.PollSchedule == "" {
		cfg.PollSchedule = scheduler.DefaultSpec
	}
	if _, err := scheduler.Parse(cfg.PollSchedule); err != nil {
		cfgErr.Invalid = append(cfgErr.Invalid, "POLL_SCHEDULE")
	}
	if cfg.HTTPTimeout <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "HTTP_TIMEOUT")
	}
	if cfg.SendRatePerSec <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "TELEGRAM_RATE_PER_SEC")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if len(cfgErr.Missing) > 0 || len(cfgErr.Invalid) > 0 {
		return nil, cfgErr
	}
	return cfg, nil
}

// channelUsername matches a public chat handle such as @my_channel.
var channelUsername = regexp.MustCompile(`^@[A-Za-z][A-Za-z0-9_]{3,31}$`)

func validChatID(raw string) bool {
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return true
	}
	return channelUsername.MatchString(raw)
}

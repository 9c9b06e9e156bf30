package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	// TokenTTLMinutes is how long an emailed sign-in link stays redeemable.
	TokenTTLMinutes int `env:"TOKEN_TTL_MINUTES" envDefault:"15" validate:"min=1,max=1440"`

	// SharedDomains maps a mailbox domain to a fixed account login; any
	// address at that domain signs in as the mapped account.
	// Format: SHARED_DOMAINS=shared.example:teamlogin,corp.example:oncall
	SharedDomains map[string]string `env:"SHARED_DOMAINS" envSeparator:","`

	// CouchMode surfaces the sign-in link in the HTTP response instead of
	// emailing it. Debugging bypass, refused when ENV=production.
	CouchMode bool `env:"COUCH_MODE" envDefault:"false"`

	// SweepCron drives the expired-token sweeper, standard cron syntax.
	SweepCron string `env:"SWEEP_CRON" envDefault:"*/5 * * * *" validate:"required"`

	JWTSecret     string `env:"JWT_SECRET,required"    validate:"required,min=32"`
	ResendAPIKey  string `env:"RESEND_API_KEY"         validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom    string `env:"RESEND_FROM"            validate:"required_if=Env production,required_if=Env staging"`
	LoginLinkBase string `env:"LOGIN_LINK_BASE_URL"    envDefault:"http://localhost:8080"`
	ServiceName   string `env:"SERVICE_NAME" envDefault:"conauth"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.CouchMode && cfg.Env == "production" {
		return nil, fmt.Errorf("COUCH_MODE must not be enabled when ENV=production")
	}

	return cfg, nil
}

// TokenTTL returns the validity window as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

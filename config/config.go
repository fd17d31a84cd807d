package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env         string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port        string `env:"PORT" envDefault:"8080" validate:"required"`
	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	RedisAddr   string `env:"REDIS_ADDR"` // empty disables the feed cache

	JWTSecret  string `env:"JWT_SECRET,required" validate:"required,min=32"`
	BcryptCost int    `env:"BCRYPT_COST" envDefault:"10" validate:"min=4,max=31"`

	ReauthTTLMin    int    `env:"REAUTH_TTL_MIN" envDefault:"10" validate:"min=1,max=120"`
	JanitorSchedule string `env:"JANITOR_SCHEDULE" envDefault:"@every 1m"`

	FeedPageSize    int `env:"FEED_PAGE_SIZE" envDefault:"50" validate:"min=1,max=200"`
	FeedCacheTTLSec int `env:"FEED_CACHE_TTL_SEC" envDefault:"60" validate:"min=1,max=3600"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
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

func (c *Config) ReauthTTL() time.Duration {
	return time.Duration(c.ReauthTTLMin) * time.Minute
}

func (c *Config) FeedCacheTTL() time.Duration {
	return time.Duration(c.FeedCacheTTLSec) * time.Second
}

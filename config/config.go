package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server configuration
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Redis configuration
	RedisURL      string `envconfig:"REDIS_URL" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// PubNub configuration
	PubNubPublishKey   string `envconfig:"PUBNUB_PUBLISH_KEY"`
	PubNubSubscribeKey string `envconfig:"PUBNUB_SUBSCRIBE_KEY"`
	PubNubSecretKey    string `envconfig:"PUBNUB_SECRET_KEY"`
	PubNubUserID       string `envconfig:"PUBNUB_USER_ID" default:"eventhub-server"`

	// Purchase lock
	PurchaseLockTTL  time.Duration `envconfig:"PURCHASE_LOCK_TTL" default:"10s"`
	PurchaseLockWait time.Duration `envconfig:"PURCHASE_LOCK_WAIT" default:"3s"`

	// Payment gateway breaker
	PaymentTimeout        time.Duration `envconfig:"PAYMENT_TIMEOUT" default:"5s"`
	PaymentBreakerTimeout time.Duration `envconfig:"PAYMENT_BREAKER_TIMEOUT" default:"30s"`

	// Rate limiting, requests per window per user or IP
	RateLimit       int64         `envconfig:"RATE_LIMIT" default:"120"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "error", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or a path to a PEM file.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or a path to a PEM file.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// AccessTokenExpireMinutes is the access token lifetime in minutes.
	AccessTokenExpireMinutes int `mapstructure:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	// RefreshTokenExpireDays is the refresh session lifetime in days.
	RefreshTokenExpireDays int `mapstructure:"REFRESH_TOKEN_EXPIRE_DAYS"`
	// TokenType is the token-type label returned with issued tokens (e.g. "bearer").
	TokenType string `mapstructure:"TOKEN_TYPE"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses. Empty disables
	// registration notifications.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// EmailsTopic is the Kafka topic registration events are published to.
	EmailsTopic string `mapstructure:"EMAILS_TOPIC"`
	// KafkaGroupID is the consumer group ID used by the notification worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// OTLPEndpoint is the OTLP gRPC endpoint for traces and metrics. Empty disables telemetry.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`

	// SeedEmail and SeedPassword are the bootstrap superuser credentials used by cmd/seed.
	SeedEmail    string `mapstructure:"SEED_EMAIL"`
	SeedPassword string `mapstructure:"SEED_PASSWORD"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 15)
	v.SetDefault("REFRESH_TOKEN_EXPIRE_DAYS", 30)
	v.SetDefault("TOKEN_TYPE", "bearer")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("EMAILS_TOPIC", "users-emails")
	v.SetDefault("KAFKA_GROUP_ID", "users-notification-worker")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("SEED_EMAIL", "")
	v.SetDefault("SEED_PASSWORD", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.AccessTokenExpireMinutes <= 0 {
		return nil, errors.New("config: ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if cfg.RefreshTokenExpireDays <= 0 {
		return nil, errors.New("config: REFRESH_TOKEN_EXPIRE_DAYS must be positive")
	}
	if cfg.TokenType == "" {
		cfg.TokenType = "bearer"
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// AccessTTL returns the access token lifetime as a time.Duration.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// RefreshTTL returns the refresh session lifetime as a time.Duration.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpireDays) * 24 * time.Hour
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if registration notifications are enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

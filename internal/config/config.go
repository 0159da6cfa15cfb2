// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables and an optional config file. It provides a centralized Config
// struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/itwrites/BlogViraliy-sub002/internal/ai"
	"github.com/itwrites/BlogViraliy-sub002/internal/storage"
)

// FileEnv names the environment variable pointing at an optional config
// file (YAML, TOML, JSON or .env). Environment variables win over it.
const FileEnv = "PLANNER_CONFIG"

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host     string `mapstructure:"APP_HOST"`
	Port     string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"APP_ENV"` // "development", "production", "testing"
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// StoreBackend selects PostgreSQL or the in-memory store.
	StoreBackend string `mapstructure:"STORE_BACKEND"`

	// PostgreSQL connection
	DBHost     string `mapstructure:"POSTGRES_HOST"`
	DBPort     string `mapstructure:"POSTGRES_PORT"`
	DBUser     string `mapstructure:"POSTGRES_USER"`
	DBPassword string `mapstructure:"POSTGRES_PASSWORD"`
	DBName     string `mapstructure:"POSTGRES_DB"`

	// Valkey (Redis-compatible) backs dispatch locks and the graph cache.
	// When disabled or unreachable the process falls back to in-process
	// locks and no cache.
	ValkeyEnabled  bool   `mapstructure:"VALKEY_ENABLED"`
	ValkeyHost     string `mapstructure:"VALKEY_HOST"`
	ValkeyPort     string `mapstructure:"VALKEY_PORT"`
	ValkeyPassword string `mapstructure:"VALKEY_PASSWORD"`
	ValkeyDB       int    `mapstructure:"VALKEY_DB"`

	// AI provider settings. An empty or unknown provider falls back to the
	// offline writer.
	AIProvider     string `mapstructure:"AI_PROVIDER"`
	OpenAIKey      string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel    string `mapstructure:"OPENAI_MODEL"`
	OpenAIBaseURL  string `mapstructure:"OPENAI_BASE_URL"`
	MistralKey     string `mapstructure:"MISTRAL_API_KEY"`
	MistralModel   string `mapstructure:"MISTRAL_MODEL"`
	MistralBaseURL string `mapstructure:"MISTRAL_BASE_URL"`

	// Generation dispatch
	GenerationConcurrency int           `mapstructure:"GENERATION_CONCURRENCY"`
	GenerationRPS         float64       `mapstructure:"GENERATION_RPS"` // 0 means unlimited
	GenerationTimeout     time.Duration `mapstructure:"GENERATION_TIMEOUT"`

	// RateLimit is the per-IP request budget per minute on control endpoints.
	RateLimit int `mapstructure:"RATE_LIMIT"`

	// S3-compatible bucket that keeps the Markdown source of every draft
	// (optional; archiving is off unless endpoint, keys and bucket are set).
	ArchiveEndpoint  string `mapstructure:"ARCHIVE_S3_ENDPOINT"`
	ArchiveRegion    string `mapstructure:"ARCHIVE_S3_REGION"`
	ArchiveAccessKey string `mapstructure:"ARCHIVE_S3_ACCESS_KEY"`
	ArchiveSecretKey string `mapstructure:"ARCHIVE_S3_SECRET_KEY"`
	ArchiveBucket    string `mapstructure:"ARCHIVE_S3_BUCKET"`
}

var defaults = map[string]any{
	"APP_HOST":  "0.0.0.0",
	"APP_PORT":  "8080",
	"APP_ENV":   "development",
	"LOG_LEVEL": "info",

	"STORE_BACKEND": BackendPostgres,

	"POSTGRES_HOST":     "localhost",
	"POSTGRES_PORT":     "5432",
	"POSTGRES_USER":     "planner",
	"POSTGRES_PASSWORD": "changeme",
	"POSTGRES_DB":       "planner",

	"VALKEY_ENABLED":  true,
	"VALKEY_HOST":     "localhost",
	"VALKEY_PORT":     "6379",
	"VALKEY_PASSWORD": "",
	"VALKEY_DB":       0,

	"AI_PROVIDER":      ai.OfflineName,
	"OPENAI_API_KEY":   "",
	"OPENAI_MODEL":     "gpt-4o-mini",
	"OPENAI_BASE_URL":  "https://api.openai.com/v1",
	"MISTRAL_API_KEY":  "",
	"MISTRAL_MODEL":    "mistral-large-latest",
	"MISTRAL_BASE_URL": "https://api.mistral.ai/v1",

	"GENERATION_CONCURRENCY": 4,
	"GENERATION_RPS":         0.0,
	"GENERATION_TIMEOUT":     "2m",

	"RATE_LIMIT": 60,

	"ARCHIVE_S3_ENDPOINT":   "",
	"ARCHIVE_S3_REGION":     "us-east-1",
	"ARCHIVE_S3_ACCESS_KEY": "",
	"ARCHIVE_S3_SECRET_KEY": "",
	"ARCHIVE_S3_BUCKET":     "",
}

// Load reads configuration from the environment and, if FileEnv is set,
// from that file. Returns an error if critical values are missing or
// invalid in production mode.
func Load() (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path := v.GetString(FileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		slog.Debug("config file loaded", "path", path)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(cfg.StoreBackend)
	cfg.AIProvider = strings.ToLower(cfg.AIProvider)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Env == "production" && c.StoreBackend == BackendPostgres && c.DBPassword == "changeme" {
		return errors.New("POSTGRES_PASSWORD must be set in production")
	}
	if c.StoreBackend != BackendPostgres && c.StoreBackend != BackendMemory {
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, c.StoreBackend)
	}
	if c.GenerationConcurrency <= 0 {
		return fmt.Errorf("GENERATION_CONCURRENCY must be positive, got %d", c.GenerationConcurrency)
	}
	if c.GenerationRPS < 0 {
		return fmt.Errorf("GENERATION_RPS must not be negative, got %g", c.GenerationRPS)
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive, got %s", c.GenerationTimeout)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, net.JoinHostPort(c.DBHost, c.DBPort), c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
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

// ProviderConfigs returns the AI provider settings keyed by provider name.
func (c *Config) ProviderConfigs() map[string]ai.ProviderConfig {
	return map[string]ai.ProviderConfig{
		"openai":  {APIKey: c.OpenAIKey, Model: c.OpenAIModel, BaseURL: c.OpenAIBaseURL},
		"mistral": {APIKey: c.MistralKey, Model: c.MistralModel, BaseURL: c.MistralBaseURL},
	}
}

// Archive returns the draft archive settings.
func (c *Config) Archive() storage.Config {
	return storage.Config{
		Endpoint:  c.ArchiveEndpoint,
		Region:    c.ArchiveRegion,
		AccessKey: c.ArchiveAccessKey,
		SecretKey: c.ArchiveSecretKey,
		Bucket:    c.ArchiveBucket,
	}
}

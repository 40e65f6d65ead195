// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Logging     LoggingConfig   `toml:"logging"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Sync        SyncConfig      `toml:"sync"`
	Sentiment   SentimentConfig `toml:"sentiment"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the embedded store location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds external API client configuration
type ClientsConfig struct {
	Yahoo  YahooConfig  `toml:"yahoo"`
	Gemini GeminiConfig `toml:"gemini"`
}

// YahooConfig configures the market data client.
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"` // requests per second
}

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// SchedulerConfig holds cron schedules for background jobs.
type SchedulerConfig struct {
	SnapshotCron  string `toml:"snapshot_cron"`  // nightly snapshot of every portfolio
	SentimentCron string `toml:"sentiment_cron"` // periodic sentiment refresh for held symbols
}

// SyncConfig controls the linked-account sync fan-out.
type SyncConfig struct {
	AccountTimeoutSeconds int `toml:"account_timeout_seconds"` // per-provider fetch timeout
}

// SentimentConfig controls sentiment caching and fan-out.
type SentimentConfig struct {
	FreshnessHours int `toml:"freshness_hours"` // cached record TTL
	NewsLimit      int `toml:"news_limit"`      // articles per symbol per window
	MaxConcurrent  int `toml:"max_concurrent"`  // bounded symbol fan-out
}

// AccountTimeout returns the per-account fetch timeout as a duration.
func (c *SyncConfig) AccountTimeout() time.Duration {
	return time.Duration(c.AccountTimeoutSeconds) * time.Second
}

// Freshness returns the sentiment cache TTL as a duration.
func (c *SentimentConfig) Freshness() time.Duration {
	return time.Duration(c.FreshnessHours) * time.Hour
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/folio",
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				RateLimit: 5,
			},
			Gemini: GeminiConfig{
				Model: "gemini-3-flash-preview",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Scheduler: SchedulerConfig{
			SnapshotCron:  "0 1 * * *", // 01:00 daily
			SentimentCron: "0 */4 * * *",
		},
		Sync: SyncConfig{
			AccountTimeoutSeconds: 10,
		},
		Sentiment: SentimentConfig{
			FreshnessHours: 4,
			NewsLimit:      20,
			MaxConcurrent:  4,
		},
	}
}

// LoadConfig loads configuration from a TOML file with environment overrides.
// A missing file is not an error; defaults plus overrides are returned.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Sync.AccountTimeoutSeconds <= 0 {
		config.Sync.AccountTimeoutSeconds = DefaultConfig().Sync.AccountTimeoutSeconds
	}
	if config.Sentiment.FreshnessHours <= 0 {
		config.Sentiment.FreshnessHours = DefaultConfig().Sentiment.FreshnessHours
	}
	if config.Sentiment.NewsLimit <= 0 {
		config.Sentiment.NewsLimit = DefaultConfig().Sentiment.NewsLimit
	}
	if config.Sentiment.MaxConcurrent <= 0 {
		config.Sentiment.MaxConcurrent = DefaultConfig().Sentiment.MaxConcurrent
	}

	return config, nil
}

// applyEnvOverrides applies FOLIO_* environment variables over file values.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("FOLIO_ENVIRONMENT"); v != "" {
		config.Environment = v
	}
	if v := os.Getenv("FOLIO_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("FOLIO_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("FOLIO_STORAGE_PATH"); v != "" {
		config.Storage.Path = v
	}
	if v := os.Getenv("FOLIO_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("FOLIO_GEMINI_API_KEY"); v != "" {
		config.Clients.Gemini.APIKey = v
	}
	if v := os.Getenv("FOLIO_GEMINI_MODEL"); v != "" {
		config.Clients.Gemini.Model = v
	}
	if v := os.Getenv("FOLIO_YAHOO_BASE_URL"); v != "" {
		config.Clients.Yahoo.BaseURL = v
	}
}

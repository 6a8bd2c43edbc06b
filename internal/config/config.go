// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

// Package config provides layered configuration loading with Koanf v2.
//
// Configuration Loading Order:
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults,
// an optional YAML file and environment variables.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	NATS      NATSConfig      `koanf:"nats"`
	Recommend RecommendConfig `koanf:"recommend"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_PORT: Listen port (default: 8002)
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - ENVIRONMENT: development or production
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path, or :memory: (default: /data/analytics.duckdb)
//   - DUCKDB_MAX_MEMORY: DuckDB memory limit (default: 2GB)
//   - DUCKDB_THREADS: DuckDB thread count, 0 = runtime.NumCPU()
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// NATSConfig holds NATS JetStream ingestion settings.
//
// Environment Variables:
//   - NATS_ENABLED: Enable event ingestion (default: true)
//   - NATS_URL: NATS server URL (default: nats://127.0.0.1:4222)
//   - NATS_STREAM_NAME: JetStream stream holding order events (default: ORDERS)
//   - NATS_SUBJECT: Subscription subject (default: orders.>)
//   - NATS_DURABLE_NAME: Durable consumer name (default: analytics-processor)
//   - NATS_QUEUE_GROUP: Queue group for load balancing (default: analytics)
//   - NATS_SUBSCRIBERS: Concurrent subscriber count (default: 4)
//   - NATS_ACK_WAIT: Redelivery window for unacked messages (default: 30s)
//   - NATS_DEDUP_WINDOW: Size of the recently-seen event ID window (default: 8192)
type NATSConfig struct {
	Enabled          bool          `koanf:"enabled"`
	URL              string        `koanf:"url"`
	StreamName       string        `koanf:"stream_name"`
	Subject          string        `koanf:"subject"`
	DurableName      string        `koanf:"durable_name"`
	QueueGroup       string        `koanf:"queue_group"`
	SubscribersCount int           `koanf:"subscribers_count"`
	AckWait          time.Duration `koanf:"ack_wait"`
	DedupWindow      int           `koanf:"dedup_window"`
}

// RecommendConfig holds recommendation engine settings.
//
// Environment Variables:
//   - RECOMMEND_TRAIN_ON_STARTUP: Train once at boot (default: true)
//   - RECOMMEND_TRAIN_INTERVAL: Periodic retraining interval, 0 disables (default: 1h)
//   - RECOMMEND_DEFAULT_LIMIT: Default result count (default: 5)
//   - RECOMMEND_MAX_LIMIT: Upper bound on requested result count (default: 50)
type RecommendConfig struct {
	TrainOnStartup bool          `koanf:"train_on_startup"`
	TrainInterval  time.Duration `koanf:"train_interval"`
	DefaultLimit   int           `koanf:"default_limit"`
	MaxLimit       int           `koanf:"max_limit"`
}

// APIConfig holds API behavior settings.
//
// Environment Variables:
//   - API_RATE_LIMIT_REQUESTS: Requests per window per IP (default: 100)
//   - API_RATE_LIMIT_WINDOW: Rate limit window (default: 1m)
//   - API_CORS_ORIGINS: Comma-separated allowed origins (default: *)
type APIConfig struct {
	RateLimitReqs   int           `koanf:"rate_limit_requests"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: Include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true")
	}
	if c.NATS.StreamName == "" {
		return fmt.Errorf("NATS_STREAM_NAME is required when NATS_ENABLED=true")
	}
	if c.NATS.SubscribersCount < 1 {
		return fmt.Errorf("NATS_SUBSCRIBERS must be >= 1, got %d", c.NATS.SubscribersCount)
	}
	if c.NATS.DedupWindow < 0 {
		return fmt.Errorf("NATS_DEDUP_WINDOW must be >= 0, got %d", c.NATS.DedupWindow)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.DefaultLimit < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_LIMIT must be >= 1, got %d", c.Recommend.DefaultLimit)
	}
	if c.Recommend.MaxLimit < c.Recommend.DefaultLimit {
		return fmt.Errorf("RECOMMEND_MAX_LIMIT must be >= RECOMMEND_DEFAULT_LIMIT")
	}
	if c.Recommend.TrainInterval < 0 {
		return fmt.Errorf("RECOMMEND_TRAIN_INTERVAL must be >= 0, got %s", c.Recommend.TrainInterval)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// ListenAddr returns the host:port address for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

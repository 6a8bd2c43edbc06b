// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 8002 {
		t.Errorf("default port = %d, want 8002", cfg.Server.Port)
	}
	if cfg.Database.Path != "/data/analytics.duckdb" {
		t.Errorf("default database path = %q", cfg.Database.Path)
	}
	if !cfg.NATS.Enabled {
		t.Error("NATS should be enabled by default")
	}
	if cfg.NATS.Subject != "orders.>" {
		t.Errorf("default subject = %q, want orders.>", cfg.NATS.Subject)
	}
	if cfg.Recommend.DefaultLimit != 5 {
		t.Errorf("default recommend limit = %d, want 5", cfg.Recommend.DefaultLimit)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DUCKDB_PATH", ":memory:")
	t.Setenv("NATS_URL", "nats://broker:4222")
	t.Setenv("RECOMMEND_TRAIN_INTERVAL", "30m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("database path = %q, want :memory:", cfg.Database.Path)
	}
	if cfg.NATS.URL != "nats://broker:4222" {
		t.Errorf("NATS URL = %q", cfg.NATS.URL)
	}
	if cfg.Recommend.TrainInterval != 30*time.Minute {
		t.Errorf("train interval = %s, want 30m", cfg.Recommend.TrainInterval)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("API_CORS_ORIGINS", "https://shop.example.com, https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	want := []string{"https://shop.example.com", "https://admin.example.com"}
	if len(cfg.API.CORSOrigins) != len(want) {
		t.Fatalf("CORS origins = %v, want %v", cfg.API.CORSOrigins, want)
	}
	for i := range want {
		if cfg.API.CORSOrigins[i] != want[i] {
			t.Errorf("CORS origin[%d] = %q, want %q", i, cfg.API.CORSOrigins[i], want[i])
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7777
nats:
  durable_name: custom-processor
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("port = %d, want 7777 from file", cfg.Server.Port)
	}
	if cfg.NATS.DurableName != "custom-processor" {
		t.Errorf("durable name = %q, want custom-processor", cfg.NATS.DurableName)
	}
	// Untouched keys keep their defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want default", cfg.Server.Host)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7777\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "8888")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("port = %d, want env override 8888", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "invalid environment",
			mutate:  func(c *Config) { c.Server.Environment = "staging" },
			wantErr: "ENVIRONMENT",
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "DUCKDB_PATH",
		},
		{
			name:    "nats enabled without url",
			mutate:  func(c *Config) { c.NATS.URL = "" },
			wantErr: "NATS_URL",
		},
		{
			name:   "nats disabled skips nats validation",
			mutate: func(c *Config) { c.NATS.Enabled = false; c.NATS.URL = "" },
		},
		{
			name:    "zero subscribers",
			mutate:  func(c *Config) { c.NATS.SubscribersCount = 0 },
			wantErr: "NATS_SUBSCRIBERS",
		},
		{
			name:    "max limit below default limit",
			mutate:  func(c *Config) { c.Recommend.MaxLimit = 1 },
			wantErr: "RECOMMEND_MAX_LIMIT",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestListenAddr(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8002
	if got := cfg.ListenAddr(); got != "127.0.0.1:8002" {
		t.Errorf("ListenAddr() = %q", got)
	}
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Type: "memory"},
		App: AppConfig{
			BaseURL:          "http://localhost:8080",
			ShortCodeBytes:   6,
			CollisionRetries: 3,
			TopDomains:       3,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Type)
	assert.Equal(t, "http://localhost:8080", cfg.App.BaseURL)
	assert.Equal(t, 6, cfg.App.ShortCodeBytes)
	assert.Equal(t, 3, cfg.App.CollisionRetries)
	assert.Equal(t, 3, cfg.App.TopDomains)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := []byte(`
server:
  port: "9090"
database:
  type: sqlite
  sqlite:
    path: ./data/test.db
app:
  top_domains: 5
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("APP_BASE_URL", "https://dove.link")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "./data/test.db", cfg.GetDatabaseURL())
	assert.Equal(t, 5, cfg.App.TopDomains)
	assert.Equal(t, "https://dove.link", cfg.App.BaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown database", func(c *Config) { c.Database.Type = "mongo" }, true},
		{"postgres without url", func(c *Config) { c.Database.Type = "postgres" }, true},
		{"short prefix", func(c *Config) { c.App.ShortCodeBytes = 4 }, true},
		{"digest overflow", func(c *Config) { c.App.ShortCodeBytes = 30; c.App.CollisionRetries = 5 }, true},
		{"zero top domains", func(c *Config) { c.App.TopDomains = 0 }, true},
		{"bad base url", func(c *Config) { c.App.BaseURL = "not a url" }, true},
		{"cache without addr", func(c *Config) { c.Cache.Enabled = true }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel())

	cfg.Logging.Level = "debug"
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel())

	cfg.Logging.Level = "error"
	assert.Equal(t, slog.LevelError, cfg.LogLevel())
}

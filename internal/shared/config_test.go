package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Redis.Addr != "localhost:6379" {
			t.Errorf("expected redis addr localhost:6379, got %s", config.Redis.Addr)
		}

		if config.Cache.Backend != "redis" {
			t.Errorf("expected cache backend redis, got %s", config.Cache.Backend)
		}

		if config.Cache.TTLHours != 24 {
			t.Errorf("expected cache ttl 24 hours, got %d", config.Cache.TTLHours)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Migrate.Concurrency != 4 {
			t.Errorf("expected migrate concurrency 4, got %d", config.Migrate.Concurrency)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"

[redis]
addr = "redis.internal:6380"
db = 1

[cache]
backend = "sqlite"
ttl_hours = 48

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 9090

[migrate]
concurrency = 8
rate_limit = 2.5
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Redis.Addr != "redis.internal:6380" {
			t.Errorf("expected redis addr redis.internal:6380, got %s", config.Redis.Addr)
		}
		if config.Cache.Backend != "sqlite" {
			t.Errorf("expected cache backend sqlite, got %s", config.Cache.Backend)
		}
		if config.Cache.TTL().Hours() != 48 {
			t.Errorf("expected 48h ttl, got %v", config.Cache.TTL())
		}
		if config.Migrate.Concurrency != 8 {
			t.Errorf("expected migrate concurrency 8, got %d", config.Migrate.Concurrency)
		}
		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[redis]
addr = "localhost:6379"

[cache]
backend = "memcached"
ttl_hours = 24

[database]
path = "youtify.db"
max_open_conns = 5
max_idle_conns = 2

[server]
host = "localhost"
port = 8080

[migrate]
concurrency = 4
rate_limit = 5.0
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for unknown cache backend, got %v", err)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/config.toml")
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})
}

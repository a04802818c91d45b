package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Redis       RedisConfig       `toml:"redis"`
	Cache       CacheConfig       `toml:"cache"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Migrate     MigrateConfig     `toml:"migrate"`
}

// CredentialsConfig contains per-provider OAuth application credentials.
type CredentialsConfig struct {
	Spotify OAuthAppConfig `toml:"spotify"`
	YouTube OAuthAppConfig `toml:"youtube"`
}

// OAuthAppConfig contains an OAuth2 application's credentials.
type OAuthAppConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// RedisConfig contains Redis connection settings for the credential
// store and the primary match cache.
type RedisConfig struct {
	Addr     string `toml:"addr" validate:"required"`
	Password string `toml:"password"`
	DB       int    `toml:"db" validate:"min=0"`
}

// CacheConfig selects the match cache backend and entry lifetime.
type CacheConfig struct {
	Backend  string `toml:"backend" validate:"oneof=redis sqlite"`
	TTLHours int    `toml:"ttl_hours" validate:"min=1"`
}

// TTL returns the configured cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// DatabaseConfig contains SQLite settings for the local match cache.
type DatabaseConfig struct {
	Path         string `toml:"path" validate:"required"`
	MaxOpenConns int    `toml:"max_open_conns" validate:"min=1"`
	MaxIdleConns int    `toml:"max_idle_conns" validate:"min=1"`
}

// ServerConfig contains settings for the OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host" validate:"required"`
	Port int    `toml:"port" validate:"min=1,max=65535"`
}

// MigrateConfig tunes the migration engine.
type MigrateConfig struct {
	Concurrency int     `toml:"concurrency" validate:"min=1"`
	RateLimit   float64 `toml:"rate_limit" validate:"gt=0"`
}

// LoadConfig reads, parses, and validates a TOML configuration file
// from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

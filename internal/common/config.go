// Package common provides shared utilities for Riskos
package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Riskos
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Logging     LoggingConfig `toml:"logging"`
	Auth        AuthConfig    `toml:"auth"`
	History     HistoryConfig `toml:"history"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds path configuration for the 2 storage areas.
type StorageConfig struct {
	Internal AreaConfig `toml:"internal"` // System KV (BadgerHold)
	History  AreaConfig `toml:"history"`  // Per-owner calculation history (BadgerHold)
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	RiskEngine RiskEngineConfig `toml:"risk_engine"`
	Quotes     QuotesConfig     `toml:"quotes"`
}

// RiskEngineConfig holds risk engine API configuration
type RiskEngineConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *RiskEngineConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// QuotesConfig holds market price source configuration
type QuotesConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *QuotesConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// AuthConfig holds token validation configuration. Riskos consumes tokens
// issued elsewhere; it never issues them.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// HistoryConfig holds calculation history limits.
type HistoryConfig struct {
	MaxEntries int `toml:"max_entries"` // per-owner cap, default 50
}

// GetMaxEntries returns the per-owner history cap.
func (c *HistoryConfig) GetMaxEntries() int {
	if c.MaxEntries <= 0 {
		return 50
	}
	return c.MaxEntries
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8090,
		},
		Storage: StorageConfig{
			Internal: AreaConfig{Path: "data/internal"},
			History:  AreaConfig{Path: "data/history"},
		},
		Clients: ClientsConfig{
			RiskEngine: RiskEngineConfig{
				BaseURL:   "http://localhost:5002",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Quotes: QuotesConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "10s",
			},
		},
		Auth: AuthConfig{
			JWTSecret: "dev-jwt-secret-change-in-production",
		},
		History: HistoryConfig{
			MaxEntries: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("RISKOS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("RISKOS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("RISKOS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("RISKOS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("RISKOS_DATA_PATH"); path != "" {
		config.Storage.Internal.Path = path + "/internal"
		config.Storage.History.Path = path + "/history"
	}

	if url := os.Getenv("RISKOS_ENGINE_URL"); url != "" {
		config.Clients.RiskEngine.BaseURL = url
	}

	if url := os.Getenv("RISKOS_QUOTES_URL"); url != "" {
		config.Clients.Quotes.BaseURL = url
	}

	if v := os.Getenv("RISKOS_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}

	if v := os.Getenv("RISKOS_HISTORY_MAX_ENTRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.History.MaxEntries = n
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// SystemKV is the minimal key-value contract used for API key resolution.
// Satisfied by interfaces.InternalStore; declared here to avoid an import cycle.
type SystemKV interface {
	GetSystemKV(ctx context.Context, key string) (string, error)
}

// ResolveAPIKey resolves an API key from environment, InternalStore, or fallback
func ResolveAPIKey(ctx context.Context, store SystemKV, name string, fallback string) (string, error) {
	// Environment variable mapping
	keyToEnvMapping := map[string][]string{
		"engine_api_key": {"RISKOS_ENGINE_API_KEY", "ENGINE_API_KEY"},
		"quotes_api_key": {"RISKOS_QUOTES_API_KEY", "QUOTES_API_KEY"},
	}

	// Check environment variables first (highest priority)
	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// Try InternalStore system KV (medium priority)
	if store != nil {
		apiKey, err := store.GetSystemKV(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	// Fallback (lowest priority)
	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or store", name)
}

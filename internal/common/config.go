package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Paperhouse.
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Oracle      OracleConfig   `toml:"oracle"`
	Earnings    EarningsConfig `toml:"earnings"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds path configuration for the 3 storage areas.
type StorageConfig struct {
	Internal AreaConfig `toml:"internal"` // User accounts + system KV (BadgerHold)
	Earnings AreaConfig `toml:"earnings"` // Aggregates + daily snapshots (BadgerHold)
	Holdings AreaConfig `toml:"holdings"` // Wallets + positions (BadgerHold)
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// OracleConfig holds price oracle client configuration.
type OracleConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"` // lookups per second
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the per-lookup timeout duration.
func (c *OracleConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 3 * time.Second
	}
	return d
}

// EarningsConfig holds earnings engine configuration.
type EarningsConfig struct {
	FlushInterval    string  `toml:"flush_interval"`
	DefaultEndowment float64 `toml:"default_endowment"`
}

// GetFlushInterval parses and returns the write-back flush interval.
func (c *EarningsConfig) GetFlushInterval() time.Duration {
	d, err := time.ParseDuration(c.FlushInterval)
	if err != nil || d <= 0 {
		return 14 * time.Minute
	}
	return d
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Internal: AreaConfig{Path: "data/internal"},
			Earnings: AreaConfig{Path: "data/earnings"},
			Holdings: AreaConfig{Path: "data/holdings"},
		},
		Oracle: OracleConfig{
			RateLimit: 10,
			Timeout:   "3s",
		},
		Earnings: EarningsConfig{
			FlushInterval:    "14m",
			DefaultEndowment: 100000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
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

// applyEnvOverrides applies PAPERHOUSE_* environment variable overrides.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PAPERHOUSE_ENV"); env != "" {
		config.Environment = env
	}
	if host := os.Getenv("PAPERHOUSE_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("PAPERHOUSE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if level := os.Getenv("PAPERHOUSE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if path := os.Getenv("PAPERHOUSE_DATA_PATH"); path != "" {
		config.Storage.Internal.Path = filepath.Join(path, "internal")
		config.Storage.Earnings.Path = filepath.Join(path, "earnings")
		config.Storage.Holdings.Path = filepath.Join(path, "holdings")
	}
	if url := os.Getenv("PAPERHOUSE_ORACLE_URL"); url != "" {
		config.Oracle.BaseURL = url
	}
	if key := os.Getenv("PAPERHOUSE_ORACLE_API_KEY"); key != "" {
		config.Oracle.APIKey = key
	}
	if iv := os.Getenv("PAPERHOUSE_FLUSH_INTERVAL"); iv != "" {
		config.Earnings.FlushInterval = iv
	}
	if e := os.Getenv("PAPERHOUSE_DEFAULT_ENDOWMENT"); e != "" {
		if v, err := strconv.ParseFloat(e, 64); err == nil && v > 0 {
			config.Earnings.DefaultEndowment = v
		}
	}
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

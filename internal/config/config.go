// Package config resolves server settings from command-line flags and
// ENGAGE_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port         int
	ModelPath    string
	MetadataPath string
	BatchMax     int
	BatchWorkers int
	LogLevel     string
}

// Load pulls settings out of viper and validates them. Flag defaults are
// registered by the command; viper layers environment overrides on top.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         viper.GetInt("port"),
		ModelPath:    viper.GetString("model"),
		MetadataPath: viper.GetString("metadata"),
		BatchMax:     viper.GetInt("batch-max"),
		BatchWorkers: viper.GetInt("batch-workers"),
		LogLevel:     strings.ToLower(strings.TrimSpace(viper.GetString("log-level"))),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("model path is required")
	}
	if cfg.MetadataPath == "" {
		return nil, fmt.Errorf("metadata path is required")
	}
	if cfg.BatchMax <= 0 {
		return nil, fmt.Errorf("batch-max must be positive, got %d", cfg.BatchMax)
	}
	if cfg.BatchWorkers <= 0 {
		return nil, fmt.Errorf("batch-workers must be positive, got %d", cfg.BatchWorkers)
	}

	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q (expected debug|info|warn|error)", cfg.LogLevel)
	}

	return cfg, nil
}

// SlogLevel maps the configured level string onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort         = "5000"
	DefaultEnv          = "local"
	DefaultMaxBodyBytes = 1 << 20
)

type Config struct {
	Port         string
	Env          string
	LogLevel     slog.Level
	MaxBodyBytes int64
}

// Load reads configuration from the environment, after applying a .env file
// in the working directory if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:         normalizePort(firstNonEmpty(strings.TrimSpace(os.Getenv("PORT")), DefaultPort)),
		Env:          firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), DefaultEnv),
		LogLevel:     slog.LevelInfo,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}

	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	if raw := strings.TrimSpace(os.Getenv("MAX_BODY_BYTES")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("MAX_BODY_BYTES: expected a positive integer, got %q", raw)
		}
		cfg.MaxBodyBytes = n
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("PORT: expected a number, got %q", cfg.Port)
	}

	return cfg, nil
}

// Addr is the listen address for the configured port.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// SetPort overrides the configured port, accepting "8080" or ":8080".
func (c *Config) SetPort(port string) {
	c.Port = normalizePort(port)
}

func normalizePort(port string) string {
	return strings.TrimPrefix(strings.TrimSpace(port), ":")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

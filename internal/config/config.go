// Package config loads analyzer configuration from environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/mitchellh/go-homedir"
)

// Config holds analyzer settings. Command-line flags override these.
type Config struct {
	// Path is the directory to open.
	Path string
	// Workers bounds concurrent traversals; 0 picks a default.
	Workers int
	// Watch enables invalidation on filesystem changes.
	Watch bool

	// Logging
	LogLevel  string
	LogFormat string
	LogOutput string

	// MetricsAddr serves Prometheus metrics when set.
	MetricsAddr string
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Path:        envOr("MO_ANALYZE_PATH", ""),
		Workers:     envInt("MO_ANALYZE_WORKERS", 0),
		Watch:       envBool("MO_ANALYZE_WATCH", true),
		LogLevel:    envOr("MO_LOG_LEVEL", "info"),
		LogFormat:   envOr("MO_LOG_FORMAT", "console"),
		LogOutput:   envOr("MO_LOG_OUTPUT", ""),
		MetricsAddr: envOr("MO_METRICS_ADDR", ""),
	}

	if cfg.Path != "" {
		p, err := ExpandPath(cfg.Path)
		if err != nil {
			return nil, err
		}
		cfg.Path = p
	}
	return cfg, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	return homedir.Expand(path)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

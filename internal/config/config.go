// Package config loads the runtime configuration from the environment
package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvStoreDir  = "GOHYST_STORE_DIR"
	EnvAddr      = "GOHYST_ADDR"
	EnvLogLevel  = "GOHYST_LOG_LEVEL"
	EnvLogFormat = "GOHYST_LOG_FORMAT"
	EnvRate      = "GOHYST_RATE"
	EnvBurst     = "GOHYST_BURST"
)

// Config holds the runtime settings
type Config struct {
	StoreDir  string  // checkpoint database directory
	Addr      string  // HTTP listen address
	LogLevel  string  // debug, info, warn, error
	LogFormat string  // text or json
	Rate      float64 // requests per second per client
	Burst     int     // request burst per client
}

// Default returns the built-in settings
func Default() Config {
	dir := ".gohyst"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".cache", "gohyst")
	}
	return Config{
		StoreDir:  dir,
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		Rate:      5,
		Burst:     10,
	}
}

// Load reads the .env files (if present) and then the environment on top of
// the defaults. Malformed numbers keep the default.
func Load(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	c := Default()
	if v := os.Getenv(EnvStoreDir); v != "" {
		c.StoreDir = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	if v, err := strconv.ParseFloat(os.Getenv(EnvRate), 64); err == nil && v > 0 {
		c.Rate = v
	}
	if v, err := strconv.Atoi(os.Getenv(EnvBurst)); err == nil && v > 0 {
		c.Burst = v
	}
	return c
}

// NewLogger builds the logger described by the configuration
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

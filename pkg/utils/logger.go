package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates the process logger from LOG_LEVEL, LOG_FORMAT ("console" or "json"),
// SERVICE_NAME and ENVIRONMENT
func NewLogger(cfg *Config) zerolog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg *Config, out io.Writer) zerolog.Logger {
	var w io.Writer = out
	if cfg.GetWithDefault("LOG_FORMAT", "console") == "console" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		With().
		Timestamp().
		Str("service", cfg.GetWithDefault("SERVICE_NAME", "legal-assistant")).
		Str("environment", cfg.GetWithDefault("ENVIRONMENT", "development")).
		Logger().
		Level(parseLevel(cfg.Get("LOG_LEVEL")))
}

func parseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

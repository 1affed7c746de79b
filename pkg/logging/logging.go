// Package logging builds the process logger: colored tint output for local
// development, JSON everywhere else.
//
// Usage:
//
//	logger := logging.New(cfg.Env, cfg.LogLevel)
//	slog.SetDefault(logger)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// New returns a logger for env ("local", "dev" or "prod") at the named level.
func New(env, level string) *slog.Logger {
	return NewWithWriter(os.Stderr, env, ParseLevel(level))
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, env string, level slog.Level) *slog.Logger {
	if env == "local" {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps debug, warn and error to their slog levels; anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

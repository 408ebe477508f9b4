package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the process-wide logger. Production gets JSON on stdout,
// everything else gets colored tint output on stderr.
func Setup(env, level string) slog.Handler {
	h := NewConsoleHandler(env, ParseLevel(level))
	slog.SetDefault(slog.New(h))
	return h
}

// NewConsoleHandler builds the stdout/stderr handler without installing it.
func NewConsoleHandler(env string, level slog.Level) slog.Handler {
	return newConsoleHandler(env, level, os.Stdout, os.Stderr)
}

func newConsoleHandler(env string, level slog.Level, stdout, stderr io.Writer) slog.Handler {
	switch strings.ToLower(env) {
	case "production", "prod":
		return slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: level})
	default:
		return tint.NewHandler(stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	}
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

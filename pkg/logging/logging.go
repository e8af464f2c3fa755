// Package logging configures the process-wide slog logger used for
// diagnostics. Journal entries never go through it.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Init creates and sets the default slog logger writing to w. JSON output is
// used when jsonFormat is true, text otherwise.
func Init(w io.Writer, jsonFormat bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// IsJSON reports whether a log_format value selects JSON output.
func IsJSON(format string) bool {
	return strings.EqualFold(strings.TrimSpace(format), "json")
}

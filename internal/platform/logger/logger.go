// Package logger provides structured logging for the application: a JSON
// slog handler configured from server settings and helpers for carrying a
// request-scoped logger through context.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// contextKey is a private type to avoid context key collisions.
type contextKey struct{}

var loggerKey = contextKey{}

// Setup configures the application's default logger: a JSON handler writing
// to stdout at the given level. Unknown levels fall back to info with a
// warning on stderr.
func Setup(logLevel string) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		tmp := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmp.Warn("invalid log level configured, using default level",
			"configured_level", logLevel,
			"default_level", "info")
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

// WithLogger returns a context carrying the given logger. Middleware uses
// this to attach request-scoped attributes (trace ID) once, so downstream
// code logs them for free.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext retrieves the logger from the context, falling back to the
// process default when none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(loggerKey).(*slog.Logger); ok && log != nil {
		return log
	}
	return slog.Default()
}

// FromContextOrDefault retrieves the context logger, falling back to the
// provided component logger instead of the process default.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if log, ok := ctx.Value(loggerKey).(*slog.Logger); ok && log != nil {
		return log
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}

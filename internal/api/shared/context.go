package shared

import (
	"context"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ContextKey is a private key type to avoid context value collisions.
type ContextKey string

// Context keys for request-scoped values
const (
	// UserIDContextKey is the context key for the authenticated user ID
	UserIDContextKey ContextKey = "userID"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// traceIDLength is the number of characters in a generated trace ID
	traceIDLength = 21
)

// SetTraceID adds a fresh trace ID to the context, used to correlate logs
// with error responses.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID creates a random URL-safe trace ID. Generation only fails
// when the system entropy source is broken; in that case requests proceed
// untraced rather than sharing a static ID.
func generateTraceID() string {
	id, err := gonanoid.New(traceIDLength)
	if err != nil {
		slog.Error("failed to generate trace ID", "error", err)
		return ""
	}
	return id
}

package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// ContextKey is the type of request context keys set by this package.
type ContextKey string

// Context keys for various values
const (
	// ServiceContextKey holds the name of the authenticated publishing service
	ServiceContextKey ContextKey = "service"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a generated trace ID
	TraceIDLength = 16
)

// SetTraceID adds traceID to the context, generating one when it is empty.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		traceID = generateTraceID()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
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

// SetService records the authenticated service on the context.
func SetService(ctx context.Context, service string) context.Context {
	return context.WithValue(ctx, ServiceContextKey, service)
}

// GetService returns the authenticated service, if any.
func GetService(ctx context.Context) (string, bool) {
	service, ok := ctx.Value(ServiceContextKey).(string)
	return service, ok && service != ""
}

// generateTraceID returns 32 hex characters, falling back to a random UUID
// if the system random source fails.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		id := uuid.New()
		return hex.EncodeToString(id[:])
	}
	return hex.EncodeToString(b)
}

// Package requestid propagates a per-request correlation ID.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Generate returns a fresh correlation ID.
func Generate() string {
	return uuid.New().String()
}

// With returns a context carrying the given correlation ID.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From extracts the correlation ID from ctx, if present.
func From(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

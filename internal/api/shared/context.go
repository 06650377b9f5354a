// Package shared provides helpers used across API handlers and middleware.
package shared

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is a private type for context keys defined in this package.
type contextKey int

// userIDKey is the context key under which the authenticated user's ID is
// stored by the auth middleware.
const userIDKey contextKey = iota

// WithUserID returns a new context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's ID from the context.
// The second return value is false when the request was not authenticated.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}

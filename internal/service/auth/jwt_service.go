package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents the JWT claims used for authentication tokens.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the unique identifier of the authenticated user.
	UserID uuid.UUID `json:"user_id"`
}

// TokenService defines operations for generating and validating
// authentication tokens.
type TokenService interface {
	// GenerateToken creates a signed token for the given user ID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken verifies a token's signature and expiry and extracts its
	// claims. Returns ErrExpiredToken or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// minSecretLength is the minimum acceptable length for the HMAC signing
// secret.
const minSecretLength = 32

// defaultClockSkew tolerates small clock drift between token issuer and
// validator.
const defaultClockSkew = 2 * time.Minute

// hmacTokenService implements TokenService using HMAC-SHA256 signing.
type hmacTokenService struct {
	secret   []byte
	lifetime time.Duration

	// timeFunc supplies the current time; injectable for tests.
	timeFunc func() time.Time
}

// NewTokenService creates a TokenService that signs tokens with HS256.
// The secret must be at least 32 characters.
func NewTokenService(secret string, lifetimeMinutes int) (TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, ErrSecretTooShort
	}
	if lifetimeMinutes <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %d", lifetimeMinutes)
	}

	return &hmacTokenService{
		secret:   []byte(secret),
		lifetime: time.Duration(lifetimeMinutes) * time.Minute,
		timeFunc: time.Now,
	}, nil
}

// GenerateToken implements TokenService.GenerateToken.
func (s *hmacTokenService) GenerateToken(_ context.Context, userID uuid.UUID) (string, error) {
	now := s.timeFunc()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken implements TokenService.ValidateToken.
func (s *hmacTokenService) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithLeeway(defaultClockSkew),
		jwt.WithTimeFunc(s.timeFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

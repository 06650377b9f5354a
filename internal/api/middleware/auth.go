// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Kamran-007-lab/task-management-api/internal/api/shared"
	"github.com/Kamran-007-lab/task-management-api/internal/platform/logger"
	"github.com/Kamran-007-lab/task-management-api/internal/service/auth"
)

// Authentication failure messages. The distinction between missing, invalid
// and expired tokens is part of the API contract.
const (
	msgTokenRequired = "Access token required"
	msgTokenInvalid  = "Invalid token"
	msgTokenExpired  = "Token expired"
)

// AuthMiddleware validates bearer tokens and stores the authenticated user's
// ID in the request context.
type AuthMiddleware struct {
	tokens auth.TokenService
}

// NewAuthMiddleware creates an AuthMiddleware using the given token service.
func NewAuthMiddleware(tokens auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate rejects requests without a valid bearer token and passes the
// user ID to downstream handlers via the context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, msgTokenRequired)
			return
		}

		claims, err := m.tokens.ValidateToken(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				shared.RespondWithError(w, r, http.StatusUnauthorized, msgTokenExpired)
				return
			}
			logger.FromContext(r.Context()).Debug("rejected invalid token", "error", err)
			shared.RespondWithError(w, r, http.StatusUnauthorized, msgTokenInvalid)
			return
		}

		ctx := shared.WithUserID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

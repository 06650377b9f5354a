package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kamran-007-lab/task-management-api/internal/api/shared"
	"github.com/Kamran-007-lab/task-management-api/internal/service/auth"
)

// mockTokenService implements auth.TokenService with injectable function
// fields.
type mockTokenService struct {
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

func (m *mockTokenService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return m.GenerateTokenFn(ctx, userID)
}

func (m *mockTokenService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	return m.ValidateTokenFn(ctx, tokenString)
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tokens := &mockTokenService{
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			switch token {
			case "valid-token":
				return &auth.Claims{UserID: userID}, nil
			case "expired-token":
				return nil, auth.ErrExpiredToken
			default:
				return nil, auth.ErrInvalidToken
			}
		},
	}
	mw := NewAuthMiddleware(tokens)

	var capturedUserID uuid.UUID
	var handlerCalled bool
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		capturedUserID, _ = shared.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		authHeader  string
		wantStatus  int
		wantMessage string
	}{
		{
			name:       "valid bearer token",
			authHeader: "Bearer valid-token",
			wantStatus: http.StatusOK,
		},
		{
			name:        "missing header",
			authHeader:  "",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Access token required",
		},
		{
			name:        "wrong scheme",
			authHeader:  "Basic dXNlcjpwYXNz",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Access token required",
		},
		{
			name:        "empty token",
			authHeader:  "Bearer ",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Access token required",
		},
		{
			name:        "expired token",
			authHeader:  "Bearer expired-token",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Token expired",
		},
		{
			name:        "invalid token",
			authHeader:  "Bearer garbage",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid token",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handlerCalled = false
			capturedUserID = uuid.Nil

			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusOK {
				assert.True(t, handlerCalled)
				assert.Equal(t, userID, capturedUserID)
			} else {
				assert.False(t, handlerCalled)
				assert.Equal(t, tc.wantMessage, errorMessage(t, rec))
			}
		})
	}
}

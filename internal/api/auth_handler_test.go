package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kamran-007-lab/task-management-api/internal/api/shared"
	"github.com/Kamran-007-lab/task-management-api/internal/domain"
	"github.com/Kamran-007-lab/task-management-api/internal/service/auth"
	"github.com/Kamran-007-lab/task-management-api/internal/store"
)

// mockUserStore implements store.UserStore with injectable function fields.
type mockUserStore struct {
	CreateFn     func(ctx context.Context, user *domain.User) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.CreateFn(ctx, user)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.GetByEmailFn(ctx, email)
}

// mockTokenService implements auth.TokenService.
type mockTokenService struct {
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

func (m *mockTokenService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn == nil {
		return "test-token", nil
	}
	return m.GenerateTokenFn(ctx, userID)
}

func (m *mockTokenService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	return m.ValidateTokenFn(ctx, tokenString)
}

// mockPasswordVerifier implements auth.PasswordVerifier.
type mockPasswordVerifier struct {
	CompareFn func(ctx context.Context, hashedPassword, password string) error
}

func (m *mockPasswordVerifier) Compare(ctx context.Context, hashedPassword, password string) error {
	return m.CompareFn(ctx, hashedPassword, password)
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestAuthHandlerRegister(t *testing.T) {
	t.Parallel()

	t.Run("registers and returns token", func(t *testing.T) {
		t.Parallel()

		users := &mockUserStore{
			CreateFn: func(_ context.Context, user *domain.User) error {
				assert.Equal(t, "alice", user.Username)
				assert.Equal(t, "alice@example.com", user.Email)
				return nil
			},
		}
		handler := NewAuthHandler(users, &mockTokenService{}, &mockPasswordVerifier{})

		body := `{"username":"alice","email":"alice@example.com","password":"password123"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Register(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeJSON[AuthResponse](t, rec)
		assert.Equal(t, "User registered successfully", resp.Message)
		assert.Equal(t, "alice", resp.User.Username)
		assert.Equal(t, "test-token", resp.Token)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&mockUserStore{}, &mockTokenService{}, &mockPasswordVerifier{})

		body := `{"username":"alice"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate user", func(t *testing.T) {
		t.Parallel()

		users := &mockUserStore{
			CreateFn: func(_ context.Context, _ *domain.User) error {
				return store.ErrEmailExists
			},
		}
		handler := NewAuthHandler(users, &mockTokenService{}, &mockPasswordVerifier{})

		body := `{"username":"alice","email":"alice@example.com","password":"password123"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Register(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "User already exists", resp.Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&mockUserStore{}, &mockTokenService{}, &mockPasswordVerifier{})

		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{"))
		rec := httptest.NewRecorder()

		handler.Register(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	storedUser := &domain.User{
		ID:             userID,
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: "$2a$10$hash",
		CreatedAt:      time.Now().UTC(),
	}

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		users := &mockUserStore{
			GetByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
				assert.Equal(t, "alice@example.com", email)
				return storedUser, nil
			},
		}
		passwords := &mockPasswordVerifier{
			CompareFn: func(_ context.Context, hashed, password string) error {
				assert.Equal(t, storedUser.HashedPassword, hashed)
				assert.Equal(t, "password123", password)
				return nil
			},
		}
		handler := NewAuthHandler(users, &mockTokenService{}, passwords)

		body := `{"email":"alice@example.com","password":"password123"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeJSON[AuthResponse](t, rec)
		assert.Equal(t, "Login successful", resp.Message)
		assert.Equal(t, userID, resp.User.ID)
		assert.Equal(t, "test-token", resp.Token)
	})

	t.Run("unknown email reads as invalid credentials", func(t *testing.T) {
		t.Parallel()

		users := &mockUserStore{
			GetByEmailFn: func(_ context.Context, _ string) (*domain.User, error) {
				return nil, store.ErrUserNotFound
			},
		}
		handler := NewAuthHandler(users, &mockTokenService{}, &mockPasswordVerifier{})

		body := `{"email":"ghost@example.com","password":"password123"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var resp shared.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Invalid credentials", resp.Error)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		users := &mockUserStore{
			GetByEmailFn: func(_ context.Context, _ string) (*domain.User, error) {
				return storedUser, nil
			},
		}
		passwords := &mockPasswordVerifier{
			CompareFn: func(_ context.Context, _, _ string) error {
				return auth.ErrInvalidCredentials
			},
		}
		handler := NewAuthHandler(users, &mockTokenService{}, passwords)

		body := `{"email":"alice@example.com","password":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&mockUserStore{}, &mockTokenService{}, &mockPasswordVerifier{})

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"alice@example.com"}`))
		rec := httptest.NewRecorder()

		handler.Login(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandlerProfile(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	createdAt := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

	t.Run("returns profile with createdAt", func(t *testing.T) {
		t.Parallel()

		users := &mockUserStore{
			GetByIDFn: func(_ context.Context, id uuid.UUID) (*domain.User, error) {
				assert.Equal(t, userID, id)
				return &domain.User{
					ID:        userID,
					Username:  "alice",
					Email:     "alice@example.com",
					CreatedAt: createdAt,
				}, nil
			},
		}
		handler := NewAuthHandler(users, &mockTokenService{}, &mockPasswordVerifier{})

		req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
		req = req.WithContext(shared.WithUserID(req.Context(), userID))
		rec := httptest.NewRecorder()

		handler.Profile(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeJSON[ProfileResponse](t, rec)
		assert.Equal(t, "alice", resp.User.Username)
		assert.True(t, resp.User.CreatedAt.Equal(createdAt))
	})

	t.Run("unauthenticated context", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(&mockUserStore{}, &mockTokenService{}, &mockPasswordVerifier{})

		req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
		rec := httptest.NewRecorder()

		handler.Profile(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

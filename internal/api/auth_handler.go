package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Kamran-007-lab/task-management-api/internal/api/shared"
	"github.com/Kamran-007-lab/task-management-api/internal/domain"
	"github.com/Kamran-007-lab/task-management-api/internal/platform/logger"
	"github.com/Kamran-007-lab/task-management-api/internal/service/auth"
	"github.com/Kamran-007-lab/task-management-api/internal/store"
)

// AuthHandler implements the registration, login and profile endpoints.
type AuthHandler struct {
	users     store.UserStore
	tokens    auth.TokenService
	passwords auth.PasswordVerifier
	validate  *validator.Validate
}

// NewAuthHandler creates an AuthHandler with its dependencies injected.
func NewAuthHandler(users store.UserStore, tokens auth.TokenService, passwords auth.PasswordVerifier) *AuthHandler {
	return &AuthHandler{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		validate:  validator.New(),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	user, err := domain.NewUser(req.Username, req.Email, req.Password)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	token, err := h.tokens.GenerateToken(r.Context(), user.ID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("user registered", "user_id", user.ID)

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		User:    newUserResponse(user),
		Token:   token,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		// An unknown email reads the same as a wrong password.
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithMappedError(w, r, auth.ErrInvalidCredentials)
			return
		}
		respondWithMappedError(w, r, err)
		return
	}

	if err := h.passwords.Compare(r.Context(), user.HashedPassword, req.Password); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	token, err := h.tokens.GenerateToken(r.Context(), user.ID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("user logged in", "user_id", user.ID)

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    newUserResponse(user),
		Token:   token,
	})
}

// Profile handles GET /auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Access token required")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProfileResponse{User: newUserResponse(user)})
}

package api

import (
	"errors"
	"net/http"

	"github.com/Kamran-007-lab/task-management-api/internal/api/shared"
	"github.com/Kamran-007-lab/task-management-api/internal/domain"
	"github.com/Kamran-007-lab/task-management-api/internal/platform/logger"
	"github.com/Kamran-007-lab/task-management-api/internal/service"
	"github.com/Kamran-007-lab/task-management-api/internal/service/auth"
	"github.com/Kamran-007-lab/task-management-api/internal/store"
)

// respondWithMappedError translates a domain, store or service error into an
// HTTP status with a client-safe message. Anything unrecognized becomes a
// generic 500 with no internal detail leaked.
func respondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		shared.RespondWithError(w, r, http.StatusBadRequest, validationErr.Error())

	case errors.Is(err, domain.ErrInvalidID):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")

	case errors.Is(err, service.ErrTaskAlreadyCompleted):
		shared.RespondWithError(w, r, http.StatusBadRequest, "Task already completed")

	case errors.Is(err, auth.ErrInvalidCredentials):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")

	case errors.Is(err, store.ErrEmailExists), errors.Is(err, store.ErrUsernameExists):
		shared.RespondWithError(w, r, http.StatusConflict, "User already exists")

	case store.IsDuplicateError(err):
		shared.RespondWithError(w, r, http.StatusConflict, "Resource already exists")

	case errors.Is(err, store.ErrTaskNotFound):
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")

	case store.IsNotFoundError(err):
		shared.RespondWithError(w, r, http.StatusNotFound, "Resource not found")

	default:
		logger.FromContext(r.Context()).Error("unhandled error in request",
			"error", err, "path", r.URL.Path, "method", r.Method)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

package shared

import (
	"encoding/json"
	"net/http"

	"github.com/Kamran-007-lab/task-management-api/internal/platform/logger"
)

// ErrorResponse is the JSON body returned for every error status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondWithJSON writes a JSON response with the given status code.
// Encoding failures are logged; the status line has already been sent, so
// nothing more can be done for the client.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response",
			"error", err, "status", status, "path", r.URL.Path)
	}
}

// RespondWithError writes a JSON error response with the given status code
// and message. The message must already be safe to expose to clients.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RespondWithJSON(w, r, status, ErrorResponse{Error: message})
}

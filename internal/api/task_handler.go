package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Kamran-007-lab/task-management-api/internal/api/shared"
	"github.com/Kamran-007-lab/task-management-api/internal/domain"
	"github.com/Kamran-007-lab/task-management-api/internal/service"
)

// TaskOperations is the slice of the task service consumed by the handler.
type TaskOperations interface {
	Create(ctx context.Context, userID uuid.UUID, in service.CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, userID uuid.UUID, in service.ListTasksInput) (*service.TaskListing, error)
	Get(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error)
	Update(ctx context.Context, taskID, userID uuid.UUID, in service.UpdateTaskInput) (*domain.Task, error)
	Complete(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error)
	Delete(ctx context.Context, taskID, userID uuid.UUID) error
}

// TaskHandler implements the task CRUD endpoints. Every endpoint requires an
// authenticated caller; the user ID comes from the request context.
type TaskHandler struct {
	tasks    TaskOperations
	validate *validator.Validate
}

// NewTaskHandler creates a TaskHandler backed by the given task operations.
func NewTaskHandler(tasks TaskOperations) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		validate: validator.New(),
	}
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Access token required")
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Title is required")
		return
	}

	task, err := h.tasks.Create(r.Context(), userID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, TaskResponse{
		Message: "Task created successfully",
		Task:    task,
	})
}

// List handles GET /tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Access token required")
		return
	}

	query := r.URL.Query()
	listing, err := h.tasks.List(r.Context(), userID, service.ListTasksInput{
		Status:   query.Get("status"),
		Priority: query.Get("priority"),
		Page:     queryInt(query.Get("page"), 1),
		Limit:    queryInt(query.Get("limit"), 10),
	})
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: listing.Tasks,
		Pagination: Pagination{
			Page:       listing.Page,
			Limit:      listing.Limit,
			Total:      listing.Total,
			TotalPages: listing.TotalPages,
		},
	})
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), taskID, userID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskResponse{Task: task})
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.tasks.Update(r.Context(), taskID, userID, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskResponse{
		Message: "Task updated successfully",
		Task:    task,
	})
}

// Complete handles POST /tasks/{id}/complete.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Complete(r.Context(), taskID, userID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskResponse{
		Message: "Task completed successfully",
		Task:    task,
	})
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.requestIDs(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), taskID, userID); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

// requestIDs extracts the authenticated user ID and the task ID from the
// request, writing the error response itself when either is missing.
func (h *TaskHandler) requestIDs(w http.ResponseWriter, r *http.Request) (userID, taskID uuid.UUID, ok bool) {
	userID, ok = shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Access token required")
		return uuid.Nil, uuid.Nil, false
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithMappedError(w, r, domain.ErrInvalidID)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, taskID, true
}

// queryInt parses a positive integer query parameter, falling back to def on
// absence or garbage.
func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

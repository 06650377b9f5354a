package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Kamran-007-lab/task-management-api/internal/domain"
)

// TaskFilter describes the optional equality filters and pagination window
// applied to a task listing. UserID is always required; every query is
// scoped to the owner.
type TaskFilter struct {
	UserID   uuid.UUID
	Status   *domain.TaskStatus
	Priority *domain.TaskPriority
	Offset   int
	Limit    int
}

// TaskStore defines the interface for task data persistence.
// All operations that address a single task take the owner's user ID and
// treat non-ownership as absence.
type TaskStore interface {
	// Create saves a new task to the store.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID, scoped to the owning user.
	// Returns ErrTaskNotFound if no matching row exists.
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)

	// List returns the tasks matching the filter ordered by creation time
	// descending (stable across equal timestamps), plus the total number of
	// matching rows before pagination.
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, int64, error)

	// Update persists the full task row, scoped to the owning user.
	// Returns ErrTaskNotFound if no matching row exists.
	Update(ctx context.Context, task *domain.Task) error

	// Complete atomically marks the task completed and stamps completedAt in
	// a single write. Only rows not already completed are eligible; it
	// returns ErrTaskNotFound when no eligible row matched, leaving the
	// caller to distinguish absence from an already-completed task.
	Complete(ctx context.Context, id, userID uuid.UUID, completedAt time.Time) (*domain.Task, error)

	// Delete removes a task, scoped to the owning user.
	// Returns ErrTaskNotFound if no matching row exists.
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

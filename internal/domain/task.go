package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the closed set of lifecycle states a task moves through.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskPriority is the closed set of task priorities.
type TaskPriority string

// Possible task priority values.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Common task validation errors.
var (
	ErrEmptyTaskID      = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle   = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong = errors.New("task title must be at most 200 characters long")
	ErrEmptyTaskOwner   = errors.New("task owner cannot be empty")
)

// ParseTaskStatus converts a raw string into a TaskStatus.
// Unknown values are rejected rather than coerced.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	status := TaskStatus(raw)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

// Validate checks that the status is one of the known values.
func (s TaskStatus) Validate() error {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidTaskStatus, string(s))
}

// ParseTaskPriority converts a raw string into a TaskPriority.
// Unknown values are rejected rather than coerced.
func ParseTaskPriority(raw string) (TaskPriority, error) {
	priority := TaskPriority(raw)
	if err := priority.Validate(); err != nil {
		return "", err
	}
	return priority, nil
}

// Validate checks that the priority is one of the known values.
func (p TaskPriority) Validate() error {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidTaskPriority, string(p))
}

// Task represents a single unit of work owned by a user.
// Nullable fields are pointers so their JSON representation is an explicit
// null rather than an omitted key.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate"`
	CompletedAt *time.Time   `json:"completedAt"`
	UserID      uuid.UUID    `json:"userId"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// NewTask creates a new pending Task owned by the given user.
// The priority defaults to medium when empty. Returns an error if
// validation fails.
func NewTask(title string, description *string, priority TaskPriority, dueDate *time.Time, userID uuid.UUID) (*Task, error) {
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      TaskStatusPending,
		Priority:    priority,
		DueDate:     dueDate,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if len(t.Title) > 200 {
		return ErrTaskTitleTooLong
	}
	if t.UserID == uuid.Nil {
		return ErrEmptyTaskOwner
	}
	if err := t.Status.Validate(); err != nil {
		return err
	}
	if err := t.Priority.Validate(); err != nil {
		return err
	}
	return nil
}

// IsCompleted reports whether the task has been completed.
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

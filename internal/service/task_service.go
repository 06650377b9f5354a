package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Kamran-007-lab/task-management-api/internal/domain"
	"github.com/Kamran-007-lab/task-management-api/internal/jobs"
	"github.com/Kamran-007-lab/task-management-api/internal/platform/logger"
	"github.com/Kamran-007-lab/task-management-api/internal/platform/rediscache"
	"github.com/Kamran-007-lab/task-management-api/internal/store"
)

// Pagination bounds for task listings.
const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// ListingCache is the read-through cache consumed by the task service. It is
// best-effort: every error from it is logged and swallowed, never surfaced.
type ListingCache interface {
	GetListing(ctx context.Context, key string) (*rediscache.CachedListing, error)
	SetListing(ctx context.Context, key string, listing *rediscache.CachedListing) error
	InvalidateListings(ctx context.Context) error
}

// NotificationEnqueuer accepts notification jobs for asynchronous delivery.
type NotificationEnqueuer interface {
	Enqueue(ctx context.Context, job *jobs.Job) error
}

// CreateTaskInput carries the caller-supplied fields for task creation.
// DueDate, when present, must be an RFC 3339 timestamp.
type CreateTaskInput struct {
	Title       string
	Description *string
	Priority    string
	DueDate     *string
}

// UpdateTaskInput carries a partial update: nil fields are left unchanged.
// A provided but invalid status or priority is a validation error, never a
// silent no-op. An empty DueDate string clears the due date.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
}

// ListTasksInput carries listing filters and pagination parameters.
type ListTasksInput struct {
	Status   string
	Priority string
	Page     int
	Limit    int
}

// TaskListing is one page of tasks with its pagination metadata.
type TaskListing struct {
	Tasks      []domain.Task
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TaskService implements the task operations: ownership-scoped CRUD, the
// read-through listing cache, and completion notification dispatch.
type TaskService struct {
	tasks       store.TaskStore
	cache       ListingCache
	queue       NotificationEnqueuer
	maxAttempts int

	// timeFunc supplies the current time; injectable for tests.
	timeFunc func() time.Time
}

// NewTaskService creates a TaskService with its dependencies injected.
// maxAttempts is the retry budget stamped onto enqueued notification jobs.
func NewTaskService(tasks store.TaskStore, cache ListingCache, queue NotificationEnqueuer, maxAttempts int) *TaskService {
	return &TaskService{
		tasks:       tasks,
		cache:       cache,
		queue:       queue,
		maxAttempts: maxAttempts,
		timeFunc:    time.Now,
	}
}

// Create validates the input, persists a new pending task for userID, and
// invalidates cached listings.
func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, in CreateTaskInput) (*domain.Task, error) {
	var priority domain.TaskPriority
	if in.Priority != "" {
		parsed, err := domain.ParseTaskPriority(in.Priority)
		if err != nil {
			return nil, domain.NewValidationError("priority", "invalid priority value", err)
		}
		priority = parsed
	}

	dueDate, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	task, err := domain.NewTask(in.Title, normalizeDescription(in.Description), priority, dueDate, userID)
	if err != nil {
		return nil, domain.NewValidationError("task", err.Error(), err)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.invalidateListings(ctx)
	return task, nil
}

// List returns one page of the caller's tasks. Listings with no priority
// filter and no completed-status filter are served through the cache; every
// other filter combination always hits the repository.
func (s *TaskService) List(ctx context.Context, userID uuid.UUID, in ListTasksInput) (*TaskListing, error) {
	log := logger.FromContext(ctx)

	filter := store.TaskFilter{UserID: userID}

	if in.Status != "" {
		status, err := domain.ParseTaskStatus(in.Status)
		if err != nil {
			return nil, domain.NewValidationError("status", "invalid status value", err)
		}
		filter.Status = &status
	}
	if in.Priority != "" {
		priority, err := domain.ParseTaskPriority(in.Priority)
		if err != nil {
			return nil, domain.NewValidationError("priority", "invalid priority value", err)
		}
		filter.Priority = &priority
	}

	page := in.Page
	if page < defaultPage {
		page = defaultPage
	}
	limit := in.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	filter.Offset = (page - 1) * limit
	filter.Limit = limit

	cacheable := filter.Priority == nil &&
		(filter.Status == nil || *filter.Status != domain.TaskStatusCompleted)

	var key string
	if cacheable {
		key = rediscache.ListingKey(page, limit)
		cached, err := s.cache.GetListing(ctx, key)
		if err == nil {
			return newTaskListing(cached.Tasks, cached.Total, page, limit), nil
		}
		if !errors.Is(err, rediscache.ErrCacheMiss) {
			log.Warn("listing cache read failed", "key", key, "error", err)
		}
	}

	tasks, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	if cacheable {
		if err := s.cache.SetListing(ctx, key, &rediscache.CachedListing{Tasks: tasks, Total: total}); err != nil {
			log.Warn("listing cache write failed", "key", key, "error", err)
		}
	}

	return newTaskListing(tasks, total, page, limit), nil
}

// Get returns the task with the given ID if userID owns it.
func (s *TaskService) Get(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, taskID, userID)
}

// Update applies the provided fields to the task and invalidates cached
// listings.
func (s *TaskService) Update(ctx context.Context, taskID, userID uuid.UUID, in UpdateTaskInput) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = normalizeDescription(in.Description)
	}
	if in.Status != nil {
		status, err := domain.ParseTaskStatus(*in.Status)
		if err != nil {
			return nil, domain.NewValidationError("status", "invalid status value", err)
		}
		task.Status = status
	}
	if in.Priority != nil {
		priority, err := domain.ParseTaskPriority(*in.Priority)
		if err != nil {
			return nil, domain.NewValidationError("priority", "invalid priority value", err)
		}
		task.Priority = priority
	}
	if in.DueDate != nil {
		dueDate, err := parseDueDate(in.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = dueDate
	}

	if err := task.Validate(); err != nil {
		return nil, domain.NewValidationError("task", err.Error(), err)
	}

	task.UpdatedAt = s.timeFunc().UTC()
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.invalidateListings(ctx)
	return task, nil
}

// Complete marks the task completed, stamping status and completedAt in one
// atomic write, then invalidates cached listings and enqueues exactly one
// completion notification. Completing an already-completed task is a
// conflict, not a repeat notification.
func (s *TaskService) Complete(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContext(ctx)

	task, err := s.tasks.Complete(ctx, taskID, userID, s.timeFunc().UTC())
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			// The guarded update matches nothing for both a missing task and
			// an already-completed one; a follow-up read tells them apart.
			existing, getErr := s.tasks.GetByID(ctx, taskID, userID)
			if getErr == nil && existing.IsCompleted() {
				return nil, ErrTaskAlreadyCompleted
			}
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	s.invalidateListings(ctx)

	job, err := jobs.NewEmailNotificationJob(jobs.EmailNotificationPayload{
		UserID:    task.UserID,
		TaskID:    task.ID,
		TaskTitle: task.Title,
		Type:      jobs.NotificationTypeTaskCompletion,
	}, s.maxAttempts)
	if err != nil {
		log.Error("failed to build completion notification job", "task_id", task.ID, "error", err)
		return task, nil
	}

	// Notification delivery is best-effort relative to the request: an
	// enqueue failure must not fail a completion that already persisted.
	if err := s.queue.Enqueue(ctx, job); err != nil {
		log.Error("failed to enqueue completion notification", "task_id", task.ID, "job_id", job.ID, "error", err)
	}

	return task, nil
}

// Delete removes the task and invalidates cached listings.
func (s *TaskService) Delete(ctx context.Context, taskID, userID uuid.UUID) error {
	if err := s.tasks.Delete(ctx, taskID, userID); err != nil {
		return err
	}

	s.invalidateListings(ctx)
	return nil
}

// invalidateListings sweeps the listing cache, logging and swallowing any
// failure. The TTL bounds staleness when invalidation cannot reach the cache.
func (s *TaskService) invalidateListings(ctx context.Context) {
	if err := s.cache.InvalidateListings(ctx); err != nil {
		logger.FromContext(ctx).Warn("listing cache invalidation failed", "error", err)
	}
}

// newTaskListing assembles pagination metadata around one page of results.
func newTaskListing(tasks []domain.Task, total int64, page, limit int) *TaskListing {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return &TaskListing{
		Tasks:      tasks,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// parseDueDate interprets an optional due date string: nil means absent and
// empty means cleared. Anything else must parse as RFC 3339.
func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, domain.NewValidationError("dueDate", "must be an RFC 3339 timestamp", err)
	}
	utc := parsed.UTC()
	return &utc, nil
}

// normalizeDescription treats an empty description as absent.
func normalizeDescription(description *string) *string {
	if description == nil || *description == "" {
		return nil
	}
	return description
}

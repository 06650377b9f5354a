// Package jobs implements the durable notification work queue: persisted
// jobs, a worker runner with bounded retries, and the delivery handlers.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current state of a notification job.
type JobStatus string

// Possible job status values.
const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job type constants.
const (
	// JobTypeEmailNotification represents an email notification delivery.
	JobTypeEmailNotification = "email_notification"
)

// NotificationTypeTaskCompletion is the payload notification type emitted
// when a task is completed. Unknown types get a generic fallback rendering.
const NotificationTypeTaskCompletion = "task_completion"

// Job is a durable, retryable unit of notification work. The payload is
// fully self-describing: workers may run in a separate process from the
// producer and must not rely on shared in-process state.
type Job struct {
	ID          uuid.UUID
	Type        string
	Payload     json.RawMessage
	Status      JobStatus
	Attempts    int
	MaxAttempts int
	LastError   string
	NextRetryAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EmailNotificationPayload is the serialized payload of an email
// notification job.
type EmailNotificationPayload struct {
	UserID    uuid.UUID `json:"userId"`
	TaskID    uuid.UUID `json:"taskId"`
	TaskTitle string    `json:"taskTitle"`
	Type      string    `json:"type"`
}

// NewEmailNotificationJob creates a pending email notification job for the
// given payload with the configured retry budget.
func NewEmailNotificationJob(payload EmailNotificationPayload, maxAttempts int) (*Job, error) {
	if payload.UserID == uuid.Nil {
		return nil, fmt.Errorf("notification payload requires a user ID")
	}
	if maxAttempts <= 0 {
		return nil, fmt.Errorf("max attempts must be positive, got %d", maxAttempts)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	now := time.Now().UTC()
	return &Job{
		ID:          uuid.New(),
		Type:        JobTypeEmailNotification,
		Payload:     data,
		Status:      JobStatusPending,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UnmarshalPayload decodes the job payload into the provided structure.
func (j *Job) UnmarshalPayload(v any) error {
	return json.Unmarshal(j.Payload, v)
}

// JobStore defines the interface for persisting notification jobs.
type JobStore interface {
	// Save persists a new job.
	Save(ctx context.Context, job *Job) error

	// UpdateStatus moves a job to the given status, recording an error
	// message for failed jobs.
	UpdateStatus(ctx context.Context, jobID uuid.UUID, status JobStatus, errorMsg string) error

	// MarkRetry records a failed attempt: the attempt count, the error that
	// caused it, and when the job becomes eligible to run again. The job
	// returns to pending status.
	MarkRetry(ctx context.Context, jobID uuid.UUID, attempts int, lastError string, nextRetryAt time.Time) error

	// GetPending retrieves all jobs with "pending" status.
	GetPending(ctx context.Context) ([]*Job, error)

	// GetProcessing retrieves jobs with "processing" status. If olderThan is
	// non-zero, only jobs that have been in that state longer than the given
	// duration are returned.
	GetProcessing(ctx context.Context, olderThan time.Duration) ([]*Job, error)
}

// Handler executes the delivery work for one job type.
type Handler interface {
	// Type returns the job type this handler processes.
	Type() string

	// Handle performs the delivery. Handlers must tolerate redelivery: a
	// crash between execution and acknowledgement causes the job to run
	// again, so a duplicate email is an acceptable outcome.
	Handle(ctx context.Context, job *Job) error
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Kamran-007-lab/task-management-api/internal/jobs"
	"github.com/Kamran-007-lab/task-management-api/internal/platform/logger"
	"github.com/Kamran-007-lab/task-management-api/internal/store"
)

// NotificationJobStore implements the jobs.JobStore interface using
// PostgreSQL, giving the notification queue durability across restarts.
type NotificationJobStore struct {
	db store.DBTX
}

// NewNotificationJobStore creates a new PostgreSQL implementation of the
// jobs.JobStore interface.
func NewNotificationJobStore(db store.DBTX) *NotificationJobStore {
	return &NotificationJobStore{db: db}
}

// Ensure NotificationJobStore implements jobs.JobStore.
var _ jobs.JobStore = (*NotificationJobStore)(nil)

// Save persists a new job row.
func (s *NotificationJobStore) Save(ctx context.Context, job *jobs.Job) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO notification_jobs (id, type, payload, status, attempts, max_attempts, last_error, next_retry_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.Type,
		[]byte(job.Payload),
		job.Status,
		job.Attempts,
		job.MaxAttempts,
		job.LastError,
		job.NextRetryAt,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to save notification job", "job_id", job.ID, "job_type", job.Type, "error", err)
		return fmt.Errorf("failed to save notification job: %w", MapError(err))
	}

	return nil
}

// UpdateStatus moves a job to the given status.
// A missing row is treated as a no-op: the queue must never wedge on
// bookkeeping for a job that was already removed.
func (s *NotificationJobStore) UpdateStatus(ctx context.Context, jobID uuid.UUID, status jobs.JobStatus, errorMsg string) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE notification_jobs
		SET status = $1, last_error = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, status, errorMsg, time.Now().UTC(), jobID)
	if err != nil {
		log.Error("failed to update notification job status", "job_id", jobID, "status", status, "error", err)
		return fmt.Errorf("failed to update notification job status: %w", MapError(err))
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		log.Warn("no notification job found to update", "job_id", jobID)
	}

	return nil
}

// MarkRetry records a failed attempt and returns the job to pending status
// with its retry-eligibility timestamp.
func (s *NotificationJobStore) MarkRetry(ctx context.Context, jobID uuid.UUID, attempts int, lastError string, nextRetryAt time.Time) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE notification_jobs
		SET status = $1, attempts = $2, last_error = $3, next_retry_at = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(ctx, query,
		jobs.JobStatusPending,
		attempts,
		lastError,
		nextRetryAt,
		time.Now().UTC(),
		jobID,
	)
	if err != nil {
		log.Error("failed to mark notification job for retry", "job_id", jobID, "error", err)
		return fmt.Errorf("failed to mark notification job for retry: %w", MapError(err))
	}

	return CheckRowsAffected(result, store.ErrJobNotFound)
}

// GetPending retrieves all jobs with "pending" status.
func (s *NotificationJobStore) GetPending(ctx context.Context) ([]*jobs.Job, error) {
	return s.getByStatus(ctx, jobs.JobStatusPending, 0)
}

// GetProcessing retrieves jobs with "processing" status, optionally only
// those stranded there longer than olderThan.
func (s *NotificationJobStore) GetProcessing(ctx context.Context, olderThan time.Duration) ([]*jobs.Job, error) {
	return s.getByStatus(ctx, jobs.JobStatusProcessing, olderThan)
}

func (s *NotificationJobStore) getByStatus(ctx context.Context, status jobs.JobStatus, olderThan time.Duration) ([]*jobs.Job, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, type, payload, status, attempts, max_attempts, last_error, next_retry_at, created_at, updated_at
		FROM notification_jobs
		WHERE status = $1
	`
	args := []any{status}

	if olderThan > 0 {
		args = append(args, time.Now().UTC().Add(-olderThan))
		query += fmt.Sprintf(` AND updated_at < $%d`, len(args))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query notification jobs", "status", status, "error", err)
		return nil, fmt.Errorf("failed to query notification jobs: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var result []*jobs.Job
	for rows.Next() {
		var (
			job         jobs.Job
			payload     []byte
			lastError   sql.NullString
			nextRetryAt sql.NullTime
		)

		err := rows.Scan(
			&job.ID,
			&job.Type,
			&payload,
			&job.Status,
			&job.Attempts,
			&job.MaxAttempts,
			&lastError,
			&nextRetryAt,
			&job.CreatedAt,
			&job.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification job row: %w", err)
		}

		job.Payload = payload
		job.LastError = lastError.String
		if nextRetryAt.Valid {
			t := nextRetryAt.Time
			job.NextRetryAt = &t
		}

		result = append(result, &job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification job rows: %w", err)
	}

	return result, nil
}

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kamran-007-lab/task-management-api/internal/domain"
	"github.com/Kamran-007-lab/task-management-api/internal/store"
)

func newTaskStoreMock(t *testing.T) (*TaskStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewTaskStore(db), mock
}

func taskRowColumns() []string {
	return []string{
		"id", "title", "description", "status", "priority",
		"due_date", "completed_at", "user_id", "created_at", "updated_at",
	}
}

func TestTaskStoreCreate(t *testing.T) {
	s, mock := newTaskStoreMock(t)

	task, err := domain.NewTask("Buy milk", nil, "", nil, uuid.New())
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO tasks`).
		WithArgs(
			task.ID, task.Title, task.Description, task.Status, task.Priority,
			task.DueDate, task.CompletedAt, task.UserID, task.CreatedAt, task.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Create(context.Background(), task))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStoreCreateRejectsInvalidTask(t *testing.T) {
	s, mock := newTaskStoreMock(t)

	task := &domain.Task{ID: uuid.New(), UserID: uuid.New(), Status: domain.TaskStatusPending, Priority: domain.TaskPriorityLow}

	err := s.Create(context.Background(), task)

	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query should reach the database")
}

func TestTaskStoreGetByID(t *testing.T) {
	s, mock := newTaskStoreMock(t)

	taskID := uuid.New()
	userID := uuid.New()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(taskRowColumns()).
			AddRow(taskID, "Buy milk", nil, "pending", "medium", nil, nil, userID, now, now)

		mock.ExpectQuery(`SELECT .+ FROM tasks WHERE id = \$1 AND user_id = \$2`).
			WithArgs(taskID, userID).
			WillReturnRows(rows)

		task, err := s.GetByID(context.Background(), taskID, userID)

		require.NoError(t, err)
		assert.Equal(t, taskID, task.ID)
		assert.Equal(t, domain.TaskStatusPending, task.Status)
		assert.Nil(t, task.Description)
		assert.Nil(t, task.DueDate)
		assert.Nil(t, task.CompletedAt)
	})

	t.Run("wrong owner reads as not found", func(t *testing.T) {
		otherUser := uuid.New()
		mock.ExpectQuery(`SELECT .+ FROM tasks WHERE id = \$1 AND user_id = \$2`).
			WithArgs(taskID, otherUser).
			WillReturnRows(sqlmock.NewRows(taskRowColumns()))

		_, err := s.GetByID(context.Background(), taskID, otherUser)

		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStoreList(t *testing.T) {
	s, mock := newTaskStoreMock(t)

	userID := uuid.New()
	now := time.Now().UTC()
	status := domain.TaskStatusPending

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM tasks WHERE user_id = \$1 AND status = \$2`).
		WithArgs(userID, status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	rows := sqlmock.NewRows(taskRowColumns()).
		AddRow(uuid.New(), "Task A", nil, "pending", "medium", nil, nil, userID, now, now).
		AddRow(uuid.New(), "Task B", nil, "pending", "high", nil, nil, userID, now.Add(-time.Minute), now)

	mock.ExpectQuery(`SELECT .+ FROM tasks WHERE user_id = \$1 AND status = \$2 ORDER BY created_at DESC, id DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(userID, status, 10, 20).
		WillReturnRows(rows)

	tasks, total, err := s.List(context.Background(), store.TaskFilter{
		UserID: userID,
		Status: &status,
		Offset: 20,
		Limit:  10,
	})

	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Len(t, tasks, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStoreComplete(t *testing.T) {
	s, mock := newTaskStoreMock(t)

	taskID := uuid.New()
	userID := uuid.New()
	now := time.Now().UTC()

	t.Run("stamps status and completedAt together", func(t *testing.T) {
		rows := sqlmock.NewRows(taskRowColumns()).
			AddRow(taskID, "Buy milk", nil, "completed", "medium", nil, now, userID, now.Add(-time.Hour), now)

		mock.ExpectQuery(`UPDATE tasks`).
			WithArgs(domain.TaskStatusCompleted, now, taskID, userID).
			WillReturnRows(rows)

		task, err := s.Complete(context.Background(), taskID, userID, now)

		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCompleted, task.Status)
		require.NotNil(t, task.CompletedAt)
		assert.True(t, task.CompletedAt.Equal(now))
	})

	t.Run("already completed matches no row", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE tasks`).
			WithArgs(domain.TaskStatusCompleted, now, taskID, userID).
			WillReturnRows(sqlmock.NewRows(taskRowColumns()))

		_, err := s.Complete(context.Background(), taskID, userID, now)

		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskStoreDelete(t *testing.T) {
	s, mock := newTaskStoreMock(t)

	taskID := uuid.New()
	userID := uuid.New()

	t.Run("deletes owned row", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND user_id = \$2`).
			WithArgs(taskID, userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, s.Delete(context.Background(), taskID, userID))
	})

	t.Run("missing row is not found", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1 AND user_id = \$2`).
			WithArgs(taskID, userID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, s.Delete(context.Background(), taskID, userID), store.ErrTaskNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

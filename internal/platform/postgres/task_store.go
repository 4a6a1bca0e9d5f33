package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/forum-notifier/internal/platform/logger"
	"github.com/phrazzld/forum-notifier/internal/store"
	"github.com/phrazzld/forum-notifier/internal/task"
)

// PostgresTaskStore implements the task.TaskStore interface using PostgreSQL.
// Loaded rows are turned back into executable tasks by the decoder.
type PostgresTaskStore struct {
	db      store.DBTX
	decoder task.Decoder
}

// NewPostgresTaskStore creates a new PostgresTaskStore
func NewPostgresTaskStore(db store.DBTX, decoder task.Decoder) *PostgresTaskStore {
	return &PostgresTaskStore{
		db:      db,
		decoder: decoder,
	}
}

var _ task.TaskStore = (*PostgresTaskStore)(nil)

// SaveTask persists a task to the database. A task id that is already stored
// is left untouched and reported as task.ErrDuplicateTask.
func (s *PostgresTaskStore) SaveTask(ctx context.Context, t task.Task) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	now := time.Now().UTC()

	result, err := s.db.ExecContext(ctx, query,
		t.ID(),
		t.Type(),
		t.Payload(),
		t.Status(),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save task",
			"task_id", t.ID(),
			"task_type", t.Type(),
			"error", err)
		return fmt.Errorf("failed to save task to database: %w", MapError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check saved task: %w", MapError(err))
	}
	if rows == 0 {
		log.Info("task already saved", "task_id", t.ID(), "task_type", t.Type())
		return fmt.Errorf("%w: %w: %s", task.ErrDuplicateTask, store.ErrDuplicate, t.ID())
	}

	return nil
}

// UpdateTaskStatus updates the status of a task in the database.
// Updating a task that does not exist is a no-op.
func (s *PostgresTaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		sql.NullString{String: errorMsg, Valid: errorMsg != ""},
		time.Now().UTC(),
		taskID,
	)
	if err != nil {
		log.Error("failed to update task status",
			"task_id", taskID,
			"status", status,
			"error", err)
		return fmt.Errorf("failed to update task status: %w", MapError(err))
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("no task found with ID to update status", "task_id", taskID)
			return nil
		}
		return err
	}

	return nil
}

// GetPendingTasks retrieves all tasks with "pending" status
func (s *PostgresTaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks retrieves tasks with "processing" status
func (s *PostgresTaskStore) GetProcessingTasks(
	ctx context.Context,
	olderThan time.Duration,
) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

// getTasksByStatus loads tasks in the given status, oldest first. A positive
// olderThan restricts the result to tasks not updated within that duration.
func (s *PostgresTaskStore) getTasksByStatus(
	ctx context.Context,
	status task.TaskStatus,
	olderThan time.Duration,
) ([]task.Task, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, type, payload, status, error_message, created_at, updated_at
		FROM tasks
		WHERE status = $1
		ORDER BY created_at ASC
	`
	args := []interface{}{status}

	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status, error_message, created_at, updated_at
			FROM tasks
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks by status",
			"status", status,
			"error", err)
		return nil, fmt.Errorf("failed to query tasks by status: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tasks []task.Task

	for rows.Next() {
		var record databaseTask
		var errorMessage sql.NullString

		if err := rows.Scan(
			&record.id,
			&record.taskType,
			&record.payload,
			&record.status,
			&errorMessage,
			&record.createdAt,
			&record.updatedAt,
		); err != nil {
			log.Error("failed to scan task row",
				"status", status,
				"error", err)
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		record.errorMessage = errorMessage.String

		tasks = append(tasks, s.decode(ctx, &record))
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows",
			"status", status,
			"error", err)
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// decode rebuilds an executable task. Rows the decoder rejects are returned
// as databaseTask values whose execution fails, so the runner records them as
// failed instead of recovering them forever.
func (s *PostgresTaskStore) decode(ctx context.Context, record *databaseTask) task.Task {
	if s.decoder == nil {
		record.decodeErr = task.ErrUnknownTaskType
		return record
	}

	decoded, err := s.decoder.Decode(record.id, record.taskType, record.payload, record.status)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to decode stored task",
			"task_id", record.id,
			"task_type", record.taskType,
			"error", err)
		record.decodeErr = err
		return record
	}
	return decoded
}

// databaseTask is a task row that could not be rebuilt into a runnable task.
type databaseTask struct {
	id           uuid.UUID
	taskType     string
	payload      []byte
	status       task.TaskStatus
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
	decodeErr    error
}

// ID returns the task's unique identifier
func (t *databaseTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *databaseTask) Type() string {
	return t.taskType
}

// Payload returns the task data as a byte slice
func (t *databaseTask) Payload() []byte {
	return t.payload
}

// Status returns the current task status
func (t *databaseTask) Status() task.TaskStatus {
	return t.status
}

// Execute always fails with the reason the row could not be decoded.
func (t *databaseTask) Execute(ctx context.Context) error {
	return fmt.Errorf("cannot execute stored task %s: %w", t.id, t.decodeErr)
}

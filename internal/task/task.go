package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeResponseNotification emails a thread author about a new response.
	TaskTypeResponseNotification = "discussion.send_ace_message"
)

var (
	// ErrUnknownTaskType is returned when a persisted task has a type no decoder understands.
	ErrUnknownTaskType = errors.New("unknown task type")

	// ErrDuplicateTask is returned by TaskStore.SaveTask when a task with the
	// same id was already saved.
	ErrDuplicateTask = errors.New("task already exists")
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// Decoder rebuilds executable tasks from persisted records.
type Decoder interface {
	// Decode returns the task stored under id, or ErrUnknownTaskType.
	Decode(id uuid.UUID, taskType string, payload []byte, status TaskStatus) (Task, error)
}

// TaskStore defines the interface for persisting tasks
type TaskStore interface {
	// SaveTask persists a task to the database. Saving an id twice returns
	// ErrDuplicateTask and leaves the first row untouched.
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates the status of a task
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks retrieves all tasks with "pending" status
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks retrieves tasks with "processing" status
	// If olderThan is non-zero, only returns tasks that have been in this state
	// longer than the specified duration
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)
}

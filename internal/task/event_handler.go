package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/forum-notifier/internal/events"
)

// TaskCreator builds a task with the given id from an event payload.
type TaskCreator interface {
	CreateTask(id uuid.UUID, payload []byte) (Task, error)
}

// TaskSubmitter accepts tasks for execution.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface
// to turn task request events into submitted tasks.
type TaskFactoryEventHandler struct {
	taskType    string
	taskFactory TaskCreator
	taskRunner  TaskSubmitter
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a handler for events of taskType. It
// creates tasks with taskFactory and submits them to taskRunner.
func NewTaskFactoryEventHandler(
	taskType string,
	taskFactory TaskCreator,
	taskRunner TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		taskType:    taskType,
		taskFactory: taskFactory,
		taskRunner:  taskRunner,
		logger:      logger.With("component", "task_factory_event_handler", "handled_type", taskType),
	}
}

// HandleEvent creates the task described by the event and submits it.
// Events of other types are ignored. A payload that cannot become a task is
// reported as events.ErrUnprocessable, and an event whose task is already
// saved is accepted without running it again.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != h.taskType {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	task, err := h.taskFactory.CreateTask(event.ID, event.Payload)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"event_id", event.ID,
			"source", event.Source)
		return fmt.Errorf("%w: failed to create task: %w", events.ErrUnprocessable, err)
	}

	err = h.taskRunner.Submit(ctx, task)
	switch {
	case err == nil:
		h.logger.Info("task created and submitted successfully",
			"task_id", task.ID(),
			"event_id", event.ID,
			"source", event.Source)
		return nil

	case errors.Is(err, ErrDuplicateTask):
		// A redelivery of an event whose task is already saved.
		h.logger.Info("task already submitted, skipping duplicate event",
			"task_id", task.ID(),
			"event_id", event.ID)
		return nil

	case errors.Is(err, ErrQueueFull):
		// Saved as pending; the runner picks it up on recovery.
		h.logger.Warn("task saved but not queued",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return nil

	default:
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)

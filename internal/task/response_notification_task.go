package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/forum-notifier/internal/notification"
	"github.com/phrazzld/forum-notifier/internal/platform/logger"
)

// Common errors
var (
	ErrNilNotifier    = errors.New("notifier cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")
	ErrInvalidPayload = errors.New("invalid task payload")
)

// Notifier sends the response notification described by a raw task context.
type Notifier interface {
	SendACEMessage(ctx context.Context, raw []byte) (notification.Result, error)
}

// ResponseNotificationTask emails a thread author that someone responded to
// their thread. The payload is the publisher's task context, kept verbatim.
type ResponseNotificationTask struct {
	id       uuid.UUID
	payload  json.RawMessage
	status   TaskStatus
	notifier Notifier
	logger   *slog.Logger
}

// NewResponseNotificationTask creates a pending task for the given payload.
// The id is the identity of the request, so redelivered requests map to the
// same task. The payload must be a complete task context.
func NewResponseNotificationTask(
	id uuid.UUID,
	payload []byte,
	notifier Notifier,
	log *slog.Logger,
) (*ResponseNotificationTask, error) {
	if id == uuid.Nil {
		id = uuid.New()
	}
	t, err := newResponseNotificationTask(id, payload, TaskStatusPending, notifier, log)
	if err != nil {
		return nil, err
	}
	if _, err := notification.ParsePayload(payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return t, nil
}

func newResponseNotificationTask(
	id uuid.UUID,
	payload []byte,
	status TaskStatus,
	notifier Notifier,
	log *slog.Logger,
) (*ResponseNotificationTask, error) {
	if notifier == nil {
		return nil, ErrNilNotifier
	}
	if log == nil {
		return nil, ErrNilLogger
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidPayload)
	}

	raw := make(json.RawMessage, len(payload))
	copy(raw, payload)

	return &ResponseNotificationTask{
		id:       id,
		payload:  raw,
		status:   status,
		notifier: notifier,
		logger:   log.With("task_type", TaskTypeResponseNotification),
	}, nil
}

// ID returns the task's unique identifier
func (t *ResponseNotificationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *ResponseNotificationTask) Type() string {
	return TaskTypeResponseNotification
}

// Payload returns the task context as received from the publisher
func (t *ResponseNotificationTask) Payload() []byte {
	return t.payload
}

// Status returns the status the task was created or loaded with
func (t *ResponseNotificationTask) Status() TaskStatus {
	return t.status
}

// Execute sends the notification. Any error fails the task.
func (t *ResponseNotificationTask) Execute(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, t.logger)

	result, err := t.notifier.SendACEMessage(ctx, t.payload)
	if err != nil {
		return fmt.Errorf("response notification failed: %w", err)
	}

	log.Info("response notification processed",
		"sent", result.Sent,
		"reason", result.Reason,
		"message_id", result.MessageID)
	return nil
}

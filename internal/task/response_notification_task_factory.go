package task

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ResponseNotificationTaskFactory creates response notification tasks with
// their dependencies, both for new requests and for records loaded from the store.
type ResponseNotificationTaskFactory struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewResponseNotificationTaskFactory creates a new factory
func NewResponseNotificationTaskFactory(
	notifier Notifier,
	logger *slog.Logger,
) *ResponseNotificationTaskFactory {
	return &ResponseNotificationTaskFactory{
		notifier: notifier,
		logger:   logger,
	}
}

// CreateTask creates a new pending task with the given id from a publisher payload.
func (f *ResponseNotificationTaskFactory) CreateTask(id uuid.UUID, payload []byte) (Task, error) {
	return NewResponseNotificationTask(id, payload, f.notifier, f.logger)
}

// Decode rebuilds a persisted task.
func (f *ResponseNotificationTaskFactory) Decode(
	id uuid.UUID,
	taskType string,
	payload []byte,
	status TaskStatus,
) (Task, error) {
	if taskType != TaskTypeResponseNotification {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}
	return newResponseNotificationTask(id, payload, status, f.notifier, f.logger)
}

var _ Decoder = (*ResponseNotificationTaskFactory)(nil)

package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyPayload is returned when an event is created without a payload.
	ErrEmptyPayload = errors.New("event payload cannot be empty")

	// ErrUnprocessable marks handler errors that will recur on every delivery
	// of the same event. Transports drop such events instead of retrying them.
	ErrUnprocessable = errors.New("event cannot be processed")
)

// TaskRequestEvent represents a request to run a background task.
type TaskRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates the task type that should be created
	Type string `json:"type"`

	// Payload is the task context exactly as the publisher sent it
	Payload json.RawMessage `json:"payload"`

	// Source names where the event came from, e.g. "amqp:forum.notifications" or "http"
	Source string `json:"source,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskRequestEvent creates an event around an already-encoded payload.
// The payload is copied so the caller may reuse its buffer.
func NewTaskRequestEvent(eventType, source string, payload []byte) (*TaskRequestEvent, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}
	if !json.Valid(payload) {
		return nil, errors.New("event payload is not valid JSON")
	}

	raw := make(json.RawMessage, len(payload))
	copy(raw, payload)

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   raw,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully, wrapping
	// ErrUnprocessable when retrying the same event cannot succeed.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}

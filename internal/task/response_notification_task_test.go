package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/forum-notifier/internal/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockNotifier is a mock Notifier
type MockNotifier struct {
	SendACEMessageFn func(ctx context.Context, raw []byte) (notification.Result, error)
	Calls            int
}

func (m *MockNotifier) SendACEMessage(ctx context.Context, raw []byte) (notification.Result, error) {
	m.Calls++
	return m.SendACEMessageFn(ctx, raw)
}

const samplePayload = `{
	"course_id": "course-v1:edX+DemoX+Demo",
	"site_id": 1,
	"thread_id": "5a1b",
	"thread_author_id": "42",
	"thread_commentable_id": "general"
}`

func TestNewResponseNotificationTask(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := &MockNotifier{}

	t.Run("valid payload", func(t *testing.T) {
		task, err := NewResponseNotificationTask(uuid.New(), []byte(samplePayload), notifier, logger)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, task.ID())
		assert.Equal(t, TaskTypeResponseNotification, task.Type())
		assert.Equal(t, TaskStatusPending, task.Status())
		assert.JSONEq(t, samplePayload, string(task.Payload()))
	})

	t.Run("missing dependencies", func(t *testing.T) {
		_, err := NewResponseNotificationTask(uuid.New(), []byte(samplePayload), nil, logger)
		assert.ErrorIs(t, err, ErrNilNotifier)

		_, err = NewResponseNotificationTask(uuid.New(), []byte(samplePayload), notifier, nil)
		assert.ErrorIs(t, err, ErrNilLogger)
	})

	t.Run("payload must be an object", func(t *testing.T) {
		for _, payload := range []string{``, `[]`, `[1,2]`, `"thread"`, `null`, `{broken`} {
			_, err := NewResponseNotificationTask(uuid.New(), []byte(payload), notifier, logger)
			assert.ErrorIs(t, err, ErrInvalidPayload, "payload %q", payload)
		}
	})
}

func TestResponseNotificationTask_Execute(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("passes the payload to the notifier", func(t *testing.T) {
		var received []byte
		notifier := &MockNotifier{
			SendACEMessageFn: func(ctx context.Context, raw []byte) (notification.Result, error) {
				received = raw
				return notification.Result{Sent: true, Reason: notification.ReasonSent}, nil
			},
		}

		task, err := NewResponseNotificationTask(uuid.New(), []byte(samplePayload), notifier, logger)
		require.NoError(t, err)

		require.NoError(t, task.Execute(context.Background()))
		assert.Equal(t, 1, notifier.Calls)
		assert.JSONEq(t, samplePayload, string(received))
	})

	t.Run("not sending is not a failure", func(t *testing.T) {
		notifier := &MockNotifier{
			SendACEMessageFn: func(ctx context.Context, raw []byte) (notification.Result, error) {
				return notification.Result{Reason: notification.ReasonNotSubscribed}, nil
			},
		}

		task, err := NewResponseNotificationTask(uuid.New(), []byte(samplePayload), notifier, logger)
		require.NoError(t, err)

		assert.NoError(t, task.Execute(context.Background()))
	})

	t.Run("notifier errors fail the task", func(t *testing.T) {
		notifier := &MockNotifier{
			SendACEMessageFn: func(ctx context.Context, raw []byte) (notification.Result, error) {
				return notification.Result{}, errors.New("site not found")
			},
		}

		task, err := NewResponseNotificationTask(uuid.New(), []byte(samplePayload), notifier, logger)
		require.NoError(t, err)

		err = task.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "site not found")
	})
}

func TestResponseNotificationTaskFactory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	factory := NewResponseNotificationTaskFactory(&MockNotifier{}, logger)

	t.Run("create", func(t *testing.T) {
		id := uuid.New()
		task, err := factory.CreateTask(id, []byte(samplePayload))
		require.NoError(t, err)
		assert.Equal(t, id, task.ID())
		assert.Equal(t, TaskTypeResponseNotification, task.Type())
	})

	t.Run("create without an id", func(t *testing.T) {
		task, err := factory.CreateTask(uuid.Nil, []byte(samplePayload))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, task.ID())
	})

	t.Run("create rejects incomplete contexts", func(t *testing.T) {
		_, err := factory.CreateTask(uuid.New(), []byte(`{"thread_id":"5a1b"}`))
		assert.ErrorIs(t, err, ErrInvalidPayload)
		assert.ErrorIs(t, err, notification.ErrInvalidPayload)
	})

	t.Run("decode keeps identity and status", func(t *testing.T) {
		id := uuid.New()
		task, err := factory.Decode(id, TaskTypeResponseNotification, []byte(samplePayload), TaskStatusProcessing)

		require.NoError(t, err)
		assert.Equal(t, id, task.ID())
		assert.Equal(t, TaskStatusProcessing, task.Status())
	})

	t.Run("decode unknown type", func(t *testing.T) {
		_, err := factory.Decode(uuid.New(), "weekly_digest", []byte(`{}`), TaskStatusPending)
		assert.ErrorIs(t, err, ErrUnknownTaskType)
	})
}

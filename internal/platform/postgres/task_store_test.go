package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/forum-notifier/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decoderFunc func(id uuid.UUID, taskType string, payload []byte, status task.TaskStatus) (task.Task, error)

func (f decoderFunc) Decode(id uuid.UUID, taskType string, payload []byte, status task.TaskStatus) (task.Task, error) {
	return f(id, taskType, payload, status)
}

func TestPostgresTaskStore_Decode(t *testing.T) {
	record := &databaseTask{
		id:       uuid.New(),
		taskType: task.TaskTypeResponseNotification,
		payload:  []byte(`{"thread_id":"t"}`),
		status:   task.TaskStatusPending,
	}

	t.Run("decoded task is returned", func(t *testing.T) {
		decoded := task.NewMockTask(record.id, record.taskType, record.payload)
		s := NewPostgresTaskStore(nil, decoderFunc(func(id uuid.UUID, taskType string, payload []byte, status task.TaskStatus) (task.Task, error) {
			return decoded, nil
		}))

		assert.Same(t, decoded, s.decode(context.Background(), record))
	})

	t.Run("undecodable rows fail on execution", func(t *testing.T) {
		s := NewPostgresTaskStore(nil, decoderFunc(func(id uuid.UUID, taskType string, payload []byte, status task.TaskStatus) (task.Task, error) {
			return nil, task.ErrUnknownTaskType
		}))

		got := s.decode(context.Background(), record)
		require.IsType(t, &databaseTask{}, got)
		assert.Equal(t, record.id, got.ID())
		assert.Equal(t, record.taskType, got.Type())
		assert.Equal(t, task.TaskStatusPending, got.Status())

		err := got.Execute(context.Background())
		assert.True(t, errors.Is(err, task.ErrUnknownTaskType))
	})

	t.Run("missing decoder", func(t *testing.T) {
		s := NewPostgresTaskStore(nil, nil)
		err := s.decode(context.Background(), record).Execute(context.Background())
		assert.ErrorIs(t, err, task.ErrUnknownTaskType)
	})
}

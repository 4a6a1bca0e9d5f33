package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/forum-notifier/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestTaskRunner_Submit(t *testing.T) {
	t.Parallel()

	log := testLogger()

	t.Run("successful submission", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), log)

		task := CreateMockTaskWithPayload("thread-1")
		err := runner.Submit(context.Background(), task)

		assert.NoError(t, err)

		pendingTasks, _ := store.GetPendingTasks(context.Background())
		assert.Contains(t, extractTaskIDs(pendingTasks), task.ID())
	})

	t.Run("queue full", func(t *testing.T) {
		t.Parallel()

		smallStore := NewMockTaskStore()
		smallConfig := DefaultTaskRunnerConfig()
		smallConfig.QueueSize = 1

		smallRunner := NewTaskRunner(smallStore, smallConfig, log)

		task1 := CreateMockTaskWithPayload("thread-1")
		err := smallRunner.Submit(context.Background(), task1)
		require.NoError(t, err)

		// No workers are running, so the second task waits until ctx expires.
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		task2 := CreateMockTaskWithPayload("thread-2")
		err = smallRunner.Submit(ctx, task2)

		assert.ErrorIs(t, err, ErrQueueFull)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		// The overflowing task is still persisted for recovery.
		status, ok := smallStore.StatusOf(task2.ID())
		assert.True(t, ok)
		assert.Equal(t, TaskStatusPending, status)
	})

	t.Run("waits for queue space", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		config := DefaultTaskRunnerConfig()
		config.QueueSize = 1
		runner := NewTaskRunner(store, config, log)

		require.NoError(t, runner.Submit(context.Background(), CreateMockTaskWithPayload("thread-1")))

		go func() {
			time.Sleep(20 * time.Millisecond)
			<-runner.taskChan
		}()

		err := runner.Submit(context.Background(), CreateMockTaskWithPayload("thread-2"))
		assert.NoError(t, err)
	})

	t.Run("duplicate task", func(t *testing.T) {
		t.Parallel()

		store := NewMockTaskStore()
		runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), log)

		task := CreateMockTaskWithPayload("thread-1")
		require.NoError(t, runner.Submit(context.Background(), task))

		err := runner.Submit(context.Background(), task)

		assert.ErrorIs(t, err, ErrDuplicateTask)
		assert.Len(t, runner.taskChan, 1, "a duplicate is not queued again")
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()

		errorStore := NewMockTaskStore()
		errorStore.SaveFn = func(ctx context.Context, task Task) error {
			return errors.New("mock store error")
		}

		errorRunner := NewTaskRunner(errorStore, DefaultTaskRunnerConfig(), log)

		err := errorRunner.Submit(context.Background(), CreateMockTaskWithPayload("thread-1"))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save task")
	})

	t.Run("stopped runner", func(t *testing.T) {
		t.Parallel()

		runner := NewTaskRunner(NewMockTaskStore(), DefaultTaskRunnerConfig(), log)
		require.NoError(t, runner.Start())
		runner.Stop()

		err := runner.Submit(context.Background(), CreateMockTaskWithPayload("thread-1"))
		assert.ErrorIs(t, err, ErrRunnerStopped)

		// A second Stop is a no-op.
		runner.Stop()
	})
}

func TestTaskRunner_Start_and_Processing(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	config := DefaultTaskRunnerConfig()
	config.WorkerCount = 2
	config.QueueSize = 10

	runner := NewTaskRunner(store, config, testLogger())

	taskCompletedChan := make(chan uuid.UUID, 5)
	taskIDs := make([]uuid.UUID, 0, 3)

	for i := 0; i < 3; i++ {
		task := CreateMockTaskWithPayload("thread")
		taskIDs = append(taskIDs, task.ID())

		id := task.ID()
		task.ExecuteFn = func(ctx context.Context) error {
			taskCompletedChan <- id
			return nil
		}

		require.NoError(t, runner.Submit(context.Background(), task))
	}

	require.NoError(t, runner.Start())

	completedTasks := make(map[uuid.UUID]bool)
	timeout := time.After(2 * time.Second)

taskWaitLoop:
	for len(completedTasks) < 3 {
		select {
		case taskID := <-taskCompletedChan:
			completedTasks[taskID] = true
		case <-timeout:
			break taskWaitLoop
		}
	}

	runner.Stop()

	for _, id := range taskIDs {
		assert.True(t, completedTasks[id], "Task %s should have been completed", id)
	}
	assert.Eventually(t, func() bool {
		for _, id := range taskIDs {
			if status, _ := store.StatusOf(id); status != TaskStatusCompleted {
				return false
			}
		}
		return true
	}, time.Second, 10*time.Millisecond)
}

func TestTaskRunner_TaskFailure(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())

	errorChan := make(chan error, 1)
	runner.SetErrorHandler(func(task Task, err error) {
		errorChan <- err
	})

	task := CreateMockTaskWithPayload("thread-1")
	task.ExecuteFn = func(ctx context.Context) error {
		return errors.New("smtp unavailable")
	}

	require.NoError(t, runner.Submit(context.Background(), task))
	require.NoError(t, runner.Start())

	select {
	case err := <-errorChan:
		assert.EqualError(t, err, "smtp unavailable")
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for error handler to be called")
	}

	runner.Stop()

	status, ok := store.StatusOf(task.ID())
	require.True(t, ok)
	assert.Equal(t, TaskStatusFailed, status, "Task should be marked as failed")
}

func TestTaskRunner_ExecuteContextCarriesLogger(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())

	done := make(chan bool, 1)
	task := CreateMockTaskWithPayload("thread-1")
	task.ExecuteFn = func(ctx context.Context) error {
		// The sentinel default is returned only when no logger was attached.
		sentinel := slog.New(slog.NewTextHandler(io.Discard, nil))
		done <- logger.FromContextOrDefault(ctx, sentinel) != sentinel
		return nil
	}

	require.NoError(t, runner.Submit(context.Background(), task))
	require.NoError(t, runner.Start())
	defer runner.Stop()

	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("task was not executed")
	}
}

func TestTaskRunner_Recover(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	ctx := context.Background()

	pendingTask := CreateMockTaskWithPayload("pending")
	processingTask := CreateMockTaskWithPayload("processing")

	require.NoError(t, store.SaveTask(ctx, pendingTask))
	require.NoError(t, store.SaveTask(ctx, processingTask))
	require.NoError(t, store.UpdateTaskStatus(ctx, processingTask.ID(), TaskStatusProcessing, ""))

	taskCompletedChan := make(chan uuid.UUID, 5)
	for _, task := range []*MockTask{pendingTask, processingTask} {
		id := task.ID()
		task.ExecuteFn = func(ctx context.Context) error {
			taskCompletedChan <- id
			return nil
		}
	}

	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())
	require.NoError(t, runner.Start())

	expectedTasks := map[uuid.UUID]bool{
		pendingTask.ID():    false,
		processingTask.ID(): false,
	}

	timeout := time.After(2 * time.Second)
	for remaining := len(expectedTasks); remaining > 0; {
		select {
		case taskID := <-taskCompletedChan:
			if !expectedTasks[taskID] {
				expectedTasks[taskID] = true
				remaining--
			}
		case <-timeout:
			remaining = 0
		}
	}

	runner.Stop()

	assert.True(t, expectedTasks[pendingTask.ID()], "Pending task should have been completed")
	assert.True(t, expectedTasks[processingTask.ID()], "Processing task should have been completed")
}

func TestTaskRunner_RecoverStoreError(t *testing.T) {
	t.Parallel()

	store := &failingRecoveryStore{MockTaskStore: NewMockTaskStore()}
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())

	err := runner.Start()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to recover tasks")
}

func TestTaskRunner_StuckTasks(t *testing.T) {
	t.Parallel()

	store := NewMockTaskStore()
	ctx := context.Background()

	stuckTask := CreateMockTaskWithPayload("stuck")
	taskCompletedChan := make(chan uuid.UUID, 5)
	stuckTask.ExecuteFn = func(ctx context.Context) error {
		taskCompletedChan <- stuckTask.ID()
		return nil
	}

	config := DefaultTaskRunnerConfig()
	config.StuckTaskAge = 15 * time.Minute
	config.StuckTaskCheckInterval = 100 * time.Millisecond

	runner := NewTaskRunner(store, config, testLogger())
	require.NoError(t, runner.Start())

	// Marked stuck after startup so only the monitor can pick it up.
	require.NoError(t, store.SaveTask(ctx, stuckTask))
	require.NoError(t, store.UpdateTaskStatus(ctx, stuckTask.ID(), TaskStatusProcessing, ""))
	store.SetStatusTime(stuckTask.ID(), time.Now().Add(-30*time.Minute))

	select {
	case taskID := <-taskCompletedChan:
		assert.Equal(t, stuckTask.ID(), taskID, "Stuck task should have been executed")
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for stuck task to be executed")
	}

	runner.Stop()
}

type failingRecoveryStore struct {
	*MockTaskStore
}

func (s *failingRecoveryStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	return nil, errors.New("connection refused")
}

// Helper function to extract task IDs from a slice of tasks
func extractTaskIDs(tasks []Task) []uuid.UUID {
	ids := make([]uuid.UUID, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID()
	}
	return ids
}

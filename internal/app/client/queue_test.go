package client

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enqueueTestTask(t *testing.T, storage *SQLiteStorage, kind TaskKind, relatedID int64, createdAt time.Time) *Task {
	t.Helper()

	task, err := NewTask(kind, ClientPayload{Name: "x", Document: "y"}, relatedID)
	require.NoError(t, err)
	task.CreatedAt = createdAt

	saved, err := storage.Enqueue(task)
	require.NoError(t, err)
	return saved
}

func TestQueue_FIFOOrder(t *testing.T) {
	storage, _ := newTestStorage(t)

	base := time.Now().Add(-time.Hour)
	third := enqueueTestTask(t, storage, KindCreateClient, 3, base.Add(2*time.Minute))
	first := enqueueTestTask(t, storage, KindCreateClient, 1, base)
	second := enqueueTestTask(t, storage, KindCreateClient, 2, base.Add(time.Minute))

	tasks, err := storage.PendingTasks(5)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, second.ID, tasks[1].ID)
	assert.Equal(t, third.ID, tasks[2].ID)
}

func TestQueue_RetryBudget(t *testing.T) {
	storage, _ := newTestStorage(t)

	task := enqueueTestTask(t, storage, KindCreateClient, 1, time.Now())

	for i := 0; i < 3; i++ {
		require.NoError(t, storage.RecordFailure(task.ID, errors.New("connection refused")))
	}

	tasks, err := storage.PendingTasks(5)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 3, tasks[0].Retries)
	assert.Equal(t, "connection refused", tasks[0].LastError)
	assert.NotNil(t, tasks[0].LastAttemptAt)

	// Исчерпанный бюджет убирает задачу из выборки, но не из базы.
	require.NoError(t, storage.RecordFailure(task.ID, errors.New("connection refused")))
	require.NoError(t, storage.RecordFailure(task.ID, errors.New("connection refused")))

	tasks, err = storage.PendingTasks(5)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	count, err := storage.PendingCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestQueue_ConflictParking(t *testing.T) {
	storage, _ := newTestStorage(t)

	task := enqueueTestTask(t, storage, KindCreateInspection, 1, time.Now())
	other := enqueueTestTask(t, storage, KindCreateClient, 2, time.Now())

	require.NoError(t, storage.MarkConflict(task.ID, errors.New("server error 409: protocol already exists")))

	tasks, err := storage.PendingTasks(5)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, other.ID, tasks[0].ID)

	conflicts, err := storage.ConflictTasks()
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, task.ID, conflicts[0].ID)
	assert.Contains(t, conflicts[0].LastError, "protocol already exists")
}

func TestQueue_CompleteTask(t *testing.T) {
	storage, _ := newTestStorage(t)

	task := enqueueTestTask(t, storage, KindCreateClient, 1, time.Now())

	require.NoError(t, storage.CompleteTask(task.ID))
	assert.ErrorIs(t, storage.CompleteTask(task.ID), ErrNotFound)

	count, err := storage.PendingCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestQueue_SaveProgress(t *testing.T) {
	storage, _ := newTestStorage(t)

	task := enqueueTestTask(t, storage, KindCreateInspection, 1, time.Now())

	progress := Progress{}
	progress.Mark("tile:0")
	progress.Mark("nc:Telha trincada")
	require.NoError(t, storage.SaveProgress(task.ID, progress))

	tasks, err := storage.PendingTasks(5)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Progress.Done("tile:0"))
	assert.True(t, tasks[0].Progress.Done("nc:Telha trincada"))
	assert.False(t, tasks[0].Progress.Done("tile:1"))
}

func TestQueue_HasPendingTask(t *testing.T) {
	storage, _ := newTestStorage(t)

	enqueueTestTask(t, storage, KindUploadPhoto, 7, time.Now())

	has, err := storage.HasPendingTask(KindUploadPhoto, 7)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = storage.HasPendingTask(KindUploadPhoto, 8)
	require.NoError(t, err)
	assert.False(t, has)
}

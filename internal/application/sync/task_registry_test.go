package sync_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	appsync "github.com/sellerdesk/backend/internal/application/sync"
)

func TestTaskRegistryLifecycle(t *testing.T) {
	registry := appsync.NewTaskRegistry(zaptest.NewLogger(t))
	shopID := uuid.New()

	task := registry.Create(shopID, appsync.TaskKindOrders, appsync.ModeIncremental)
	require.NotEmpty(t, task.ID)
	assert.Equal(t, appsync.TaskStatusRunning, task.Status)
	assert.Equal(t, 0, task.Progress)

	got, ok := registry.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, shopID, got.ShopID)
	assert.Equal(t, appsync.TaskKindOrders, got.Kind)

	registry.Complete(task.ID, appsync.TaskResult{Processed: 10, Pages: 2}, "done")
	got, ok = registry.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, appsync.TaskStatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	require.NotNil(t, got.Result)
	assert.Equal(t, 10, got.Result.Processed)
	assert.Equal(t, 2, got.Result.Pages)
	require.NotNil(t, got.FinishedAt)
}

func TestTaskRegistryProgress(t *testing.T) {
	registry := appsync.NewTaskRegistry(zaptest.NewLogger(t))
	task := registry.Create(uuid.New(), appsync.TaskKindOrders, appsync.ModeFull)

	t.Run("progress never moves backwards", func(t *testing.T) {
		registry.UpdateProgress(task.ID, 40, "page 2")
		registry.UpdateProgress(task.ID, 25, "stale update")

		got, _ := registry.Get(task.ID)
		assert.Equal(t, 40, got.Progress)
		assert.Equal(t, "stale update", got.Message, "message still follows the latest update")
	})

	t.Run("progress clamps at 100", func(t *testing.T) {
		registry.UpdateProgress(task.ID, 250, "overshoot")
		got, _ := registry.Get(task.ID)
		assert.Equal(t, 100, got.Progress)
	})
}

func TestTaskRegistryTerminalImmutability(t *testing.T) {
	registry := appsync.NewTaskRegistry(zaptest.NewLogger(t))

	t.Run("completed task ignores later mutations", func(t *testing.T) {
		task := registry.Create(uuid.New(), appsync.TaskKindOrders, appsync.ModeIncremental)
		registry.Complete(task.ID, appsync.TaskResult{Processed: 5, Pages: 1}, "done")

		registry.UpdateProgress(task.ID, 10, "late progress")
		registry.Fail(task.ID, errors.New("late failure"), "late failure")

		got, _ := registry.Get(task.ID)
		assert.Equal(t, appsync.TaskStatusCompleted, got.Status)
		assert.Equal(t, "done", got.Message)
		assert.Empty(t, got.Error)
	})

	t.Run("failed task keeps its error", func(t *testing.T) {
		task := registry.Create(uuid.New(), appsync.TaskKindProducts, appsync.ModeIncremental)
		registry.Fail(task.ID, errors.New("boom"), "sync failed")
		registry.Complete(task.ID, appsync.TaskResult{}, "too late")

		got, _ := registry.Get(task.ID)
		assert.Equal(t, appsync.TaskStatusFailed, got.Status)
		assert.Equal(t, "boom", got.Error)
	})
}

func TestTaskRegistryGetUnknown(t *testing.T) {
	registry := appsync.NewTaskRegistry(zaptest.NewLogger(t))
	_, ok := registry.Get(uuid.NewString())
	assert.False(t, ok)
}

func TestTaskRegistrySweepExpired(t *testing.T) {
	t.Run("removes terminal tasks past retention", func(t *testing.T) {
		registry := appsync.NewTaskRegistry(zaptest.NewLogger(t))
		task := registry.Create(uuid.New(), appsync.TaskKindOrders, appsync.ModeIncremental)
		registry.Complete(task.ID, appsync.TaskResult{}, "done")

		removed := registry.SweepExpired(-time.Second, time.Hour)
		assert.Equal(t, 1, removed)
		_, ok := registry.Get(task.ID)
		assert.False(t, ok)
	})

	t.Run("keeps terminal tasks within retention", func(t *testing.T) {
		registry := appsync.NewTaskRegistry(zaptest.NewLogger(t))
		task := registry.Create(uuid.New(), appsync.TaskKindOrders, appsync.ModeIncremental)
		registry.Complete(task.ID, appsync.TaskResult{}, "done")

		removed := registry.SweepExpired(time.Hour, time.Hour)
		assert.Equal(t, 0, removed)
		_, ok := registry.Get(task.ID)
		assert.True(t, ok)
	})

	t.Run("removes stalled running tasks", func(t *testing.T) {
		registry := appsync.NewTaskRegistry(zaptest.NewLogger(t))
		task := registry.Create(uuid.New(), appsync.TaskKindOrders, appsync.ModeIncremental)

		removed := registry.SweepExpired(time.Hour, -time.Second)
		assert.Equal(t, 1, removed)
		_, ok := registry.Get(task.ID)
		assert.False(t, ok)
	})

	t.Run("keeps recently touched running tasks", func(t *testing.T) {
		registry := appsync.NewTaskRegistry(zaptest.NewLogger(t))
		task := registry.Create(uuid.New(), appsync.TaskKindOrders, appsync.ModeIncremental)
		registry.UpdateProgress(task.ID, 10, "still alive")

		removed := registry.SweepExpired(time.Hour, time.Hour)
		assert.Equal(t, 0, removed)
		_, ok := registry.Get(task.ID)
		assert.True(t, ok)
	})
}

func TestModeIsValid(t *testing.T) {
	assert.True(t, appsync.ModeIncremental.IsValid())
	assert.True(t, appsync.ModeFull.IsValid())
	assert.False(t, appsync.Mode("partial").IsValid())
	assert.False(t, appsync.Mode("").IsValid())
}

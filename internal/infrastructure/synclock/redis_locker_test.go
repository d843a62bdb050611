package synclock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	appsync "github.com/sellerdesk/backend/internal/application/sync"
	"github.com/sellerdesk/backend/internal/infrastructure/synclock"
)

func newLocker(t *testing.T, ttl time.Duration) (*synclock.RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return synclock.NewRedisLocker(client, ttl, zaptest.NewLogger(t)), mr
}

func TestRedisLockerMutualExclusion(t *testing.T) {
	locker, _ := newLocker(t, time.Minute)
	ctx := context.Background()
	shopID := uuid.New()

	acquired, err := locker.Acquire(ctx, shopID, appsync.TaskKindOrders)
	require.NoError(t, err)
	assert.True(t, acquired)

	again, err := locker.Acquire(ctx, shopID, appsync.TaskKindOrders)
	require.NoError(t, err)
	assert.False(t, again, "a held lock must not be acquired twice")

	require.NoError(t, locker.Release(ctx, shopID, appsync.TaskKindOrders))

	reacquired, err := locker.Acquire(ctx, shopID, appsync.TaskKindOrders)
	require.NoError(t, err)
	assert.True(t, reacquired)
}

func TestRedisLockerIndependentKeys(t *testing.T) {
	locker, _ := newLocker(t, time.Minute)
	ctx := context.Background()
	shopID := uuid.New()

	acquired, err := locker.Acquire(ctx, shopID, appsync.TaskKindOrders)
	require.NoError(t, err)
	require.True(t, acquired)

	t.Run("other kind for the same shop", func(t *testing.T) {
		got, err := locker.Acquire(ctx, shopID, appsync.TaskKindProducts)
		require.NoError(t, err)
		assert.True(t, got)
	})

	t.Run("same kind for another shop", func(t *testing.T) {
		got, err := locker.Acquire(ctx, uuid.New(), appsync.TaskKindOrders)
		require.NoError(t, err)
		assert.True(t, got)
	})
}

func TestRedisLockerExpiry(t *testing.T) {
	locker, mr := newLocker(t, time.Minute)
	ctx := context.Background()
	shopID := uuid.New()

	acquired, err := locker.Acquire(ctx, shopID, appsync.TaskKindOrders)
	require.NoError(t, err)
	require.True(t, acquired)

	// The lock of a crashed run frees itself after the TTL.
	mr.FastForward(2 * time.Minute)

	reacquired, err := locker.Acquire(ctx, shopID, appsync.TaskKindOrders)
	require.NoError(t, err)
	assert.True(t, reacquired)
}

func TestRedisLockerReleaseWithoutLock(t *testing.T) {
	locker, _ := newLocker(t, time.Minute)
	assert.NoError(t, locker.Release(context.Background(), uuid.New(), appsync.TaskKindOrders),
		"releasing an expired lock is not an error")
}

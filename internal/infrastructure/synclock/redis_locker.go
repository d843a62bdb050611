package synclock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/application/sync"
)

// RedisLocker implements the sync engine's Locker port with Redis SET NX.
// The TTL bounds how long a crashed run can block its shop; a healthy run
// releases explicitly on completion.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisLocker creates a Redis-backed sync locker
func NewRedisLocker(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		log:    log.Named("sync-locker"),
	}
}

var _ sync.Locker = (*RedisLocker)(nil)

func lockKey(shopID uuid.UUID, kind sync.TaskKind) string {
	return fmt.Sprintf("sync:lock:%s:%s", shopID, kind)
}

// Acquire returns true if the caller now holds the (shop, kind) lock
func (l *RedisLocker) Acquire(ctx context.Context, shopID uuid.UUID, kind sync.TaskKind) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey(shopID, kind), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("synclock: failed to acquire lock: %w", err)
	}
	return ok, nil
}

// Release drops the lock; releasing an expired lock is not an error
func (l *RedisLocker) Release(ctx context.Context, shopID uuid.UUID, kind sync.TaskKind) error {
	if err := l.client.Del(ctx, lockKey(shopID, kind)).Err(); err != nil {
		return fmt.Errorf("synclock: failed to release lock: %w", err)
	}
	return nil
}

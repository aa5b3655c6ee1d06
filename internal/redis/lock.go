package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const queueLockKey = "lock:queue"

// QueueLock serializes driver-queue mutations across processes using a
// Redis SetNX lock.
type QueueLock struct {
	client *redis.Client
}

// NewQueueLock creates a new QueueLock.
func NewQueueLock(client *redis.Client) *QueueLock {
	return &QueueLock{client: client}
}

// Acquire attempts to take the queue lock.
// Returns true if the lock was acquired, false if already held.
func (l *QueueLock) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, queueLockKey, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// Release releases the queue lock.
func (l *QueueLock) Release(ctx context.Context) error {
	return l.client.Del(ctx, queueLockKey).Err()
}

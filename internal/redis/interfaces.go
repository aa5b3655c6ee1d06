package redis

import (
	"context"
	"time"
)

// QueueLockInterface defines the mutual-exclusion contract for queue
// mutations.
type QueueLockInterface interface {
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}

// Ensure concrete types implement interfaces.
var _ QueueLockInterface = (*QueueLock)(nil)

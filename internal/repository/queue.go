package repository

import (
	"context"

	"trike/internal/domain"
)

// QueueRepository defines the persistence operations for the driver queue.
// Order is strictly by Position ascending. Callers serialize mutations
// through the queue lock; the repository itself only guarantees that a
// single DequeueFirst call removes exactly one head row.
type QueueRepository interface {
	// Join appends an entry at the back of the queue. Returns
	// ErrDuplicate if the driver is already enqueued.
	Join(ctx context.Context, entry *domain.QueueEntry) error

	// Leave removes the driver's entry. Returns ErrNotFound if absent.
	Leave(ctx context.Context, driverID string) error

	// PeekFirst returns the head entry without mutating, or nil if empty.
	PeekFirst(ctx context.Context) (*domain.QueueEntry, error)

	// DequeueFirst atomically removes and returns the head entry, or nil
	// if the queue is empty.
	DequeueFirst(ctx context.Context) (*domain.QueueEntry, error)

	// RequeueFront re-inserts an entry ahead of the current head,
	// restoring a driver's original position after a failed match commit.
	RequeueFront(ctx context.Context, entry *domain.QueueEntry) error

	// IsMember reports whether the driver is currently enqueued.
	IsMember(ctx context.Context, driverID string) (bool, error)

	// Snapshot returns all entries in queue order.
	Snapshot(ctx context.Context) ([]*domain.QueueEntry, error)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"trike/internal/domain"
	"trike/internal/repository"
)

// QueueRepository is a PostgreSQL implementation of repository.QueueRepository.
type QueueRepository struct {
	q Querier
}

// NewQueueRepository creates a new PostgreSQL queue repository.
func NewQueueRepository(db *sql.DB) *QueueRepository {
	return &QueueRepository{q: db}
}

// NewQueueRepositoryWithTx creates a queue repository using a transaction.
func NewQueueRepositoryWithTx(tx *sql.Tx) *QueueRepository {
	return &QueueRepository{q: tx}
}

// Join appends an entry at the back of the queue. The position is
// assigned in the same statement so concurrent joins cannot collide on
// an observed maximum.
func (r *QueueRepository) Join(ctx context.Context, entry *domain.QueueEntry) error {
	query := `
		INSERT INTO queue_entries (driver_id, vehicle_id, position, paid_today, joined_at)
		SELECT $1, $2, COALESCE(MAX(position), 0) + 1, $3, $4 FROM queue_entries
		RETURNING position
	`

	err := r.q.QueryRowContext(ctx, query,
		entry.DriverID,
		entry.VehicleID,
		entry.PaidToday,
		entry.JoinedAt,
	).Scan(&entry.Position)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// Leave removes the driver's entry.
func (r *QueueRepository) Leave(ctx context.Context, driverID string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM queue_entries WHERE driver_id = $1`, driverID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// PeekFirst returns the head entry without mutating, or nil if empty.
func (r *QueueRepository) PeekFirst(ctx context.Context) (*domain.QueueEntry, error) {
	query := `
		SELECT driver_id, vehicle_id, position, paid_today, joined_at
		FROM queue_entries ORDER BY position ASC LIMIT 1
	`

	entry, err := scanQueueEntry(r.q.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return entry, nil
}

// DequeueFirst atomically removes and returns the head entry, or nil if
// the queue is empty. The row lock on the selected head means two
// concurrent calls can never delete the same row.
func (r *QueueRepository) DequeueFirst(ctx context.Context) (*domain.QueueEntry, error) {
	query := `
		DELETE FROM queue_entries
		WHERE driver_id = (
			SELECT driver_id FROM queue_entries
			ORDER BY position ASC LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING driver_id, vehicle_id, position, paid_today, joined_at
	`

	entry, err := scanQueueEntry(r.q.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return entry, nil
}

// RequeueFront re-inserts an entry ahead of the current head. Positions
// may go negative; only relative order matters.
func (r *QueueRepository) RequeueFront(ctx context.Context, entry *domain.QueueEntry) error {
	query := `
		INSERT INTO queue_entries (driver_id, vehicle_id, position, paid_today, joined_at)
		SELECT $1, $2, COALESCE(MIN(position), 0) - 1, $3, $4 FROM queue_entries
		RETURNING position
	`

	err := r.q.QueryRowContext(ctx, query,
		entry.DriverID,
		entry.VehicleID,
		entry.PaidToday,
		entry.JoinedAt,
	).Scan(&entry.Position)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// IsMember reports whether the driver is currently enqueued.
func (r *QueueRepository) IsMember(ctx context.Context, driverID string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM queue_entries WHERE driver_id = $1)`, driverID,
	).Scan(&exists)
	return exists, err
}

// Snapshot returns all entries in queue order.
func (r *QueueRepository) Snapshot(ctx context.Context) ([]*domain.QueueEntry, error) {
	query := `
		SELECT driver_id, vehicle_id, position, paid_today, joined_at
		FROM queue_entries ORDER BY position ASC
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.QueueEntry
	for rows.Next() {
		entry, err := scanQueueEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func scanQueueEntry(row rowScanner) (*domain.QueueEntry, error) {
	var entry domain.QueueEntry
	err := row.Scan(
		&entry.DriverID,
		&entry.VehicleID,
		&entry.Position,
		&entry.PaidToday,
		&entry.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

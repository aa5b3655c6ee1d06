package repository

import (
	"context"
	"time"

	"trike/internal/domain"
)

// ContributionRepository defines the persistence operations for the
// driver dues ledger.
type ContributionRepository interface {
	// Create appends a ledger entry.
	Create(ctx context.Context, contribution *domain.Contribution) error

	// ListByDriver returns the driver's contributions paid at or after
	// since, newest first. A zero since returns the full ledger.
	ListByDriver(ctx context.Context, driverID string, since time.Time) ([]*domain.Contribution, error)
}

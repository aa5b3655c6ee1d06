package postgres

import (
	"context"
	"database/sql"
	"time"

	"trike/internal/domain"
)

// ContributionRepository is a PostgreSQL implementation of
// repository.ContributionRepository.
type ContributionRepository struct {
	q Querier
}

// NewContributionRepository creates a new PostgreSQL contribution repository.
func NewContributionRepository(db *sql.DB) *ContributionRepository {
	return &ContributionRepository{q: db}
}

// Create appends a ledger entry.
func (r *ContributionRepository) Create(ctx context.Context, contribution *domain.Contribution) error {
	query := `
		INSERT INTO contributions (id, driver_id, amount, paid_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.q.ExecContext(ctx, query,
		contribution.ID,
		contribution.DriverID,
		contribution.Amount,
		contribution.PaidAt,
	)

	return err
}

// ListByDriver returns the driver's contributions paid at or after since,
// newest first. A zero since returns the full ledger.
func (r *ContributionRepository) ListByDriver(ctx context.Context, driverID string, since time.Time) ([]*domain.Contribution, error) {
	query := `
		SELECT id, driver_id, amount, paid_at FROM contributions
		WHERE driver_id = $1 AND paid_at >= $2
		ORDER BY paid_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, driverID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contributions []*domain.Contribution
	for rows.Next() {
		var c domain.Contribution
		if err := rows.Scan(&c.ID, &c.DriverID, &c.Amount, &c.PaidAt); err != nil {
			return nil, err
		}
		contributions = append(contributions, &c)
	}
	return contributions, rows.Err()
}

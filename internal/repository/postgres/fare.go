package postgres

import (
	"context"
	"database/sql"
	"errors"

	"trike/internal/domain"
	"trike/internal/repository"
)

// FareConfigRepository is a PostgreSQL implementation of
// repository.FareConfigRepository.
type FareConfigRepository struct {
	q Querier
}

// NewFareConfigRepository creates a new PostgreSQL fare config repository.
func NewFareConfigRepository(db *sql.DB) *FareConfigRepository {
	return &FareConfigRepository{q: db}
}

// GetConfig retrieves the tariff for a tier.
func (r *FareConfigRepository) GetConfig(ctx context.Context, tier domain.TripType) (*domain.TariffConfig, error) {
	query := `SELECT tier, base_fare, per_km_rate, updated_at FROM fare_configs WHERE tier = $1`

	var config domain.TariffConfig
	err := r.q.QueryRowContext(ctx, query, tier).Scan(
		&config.Tier,
		&config.BaseFare,
		&config.PerKmRate,
		&config.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &config, nil
}

// UpsertConfig stores the tariff for a tier, inserting or replacing.
func (r *FareConfigRepository) UpsertConfig(ctx context.Context, config *domain.TariffConfig) error {
	query := `
		INSERT INTO fare_configs (tier, base_fare, per_km_rate, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tier) DO UPDATE SET
			base_fare = EXCLUDED.base_fare,
			per_km_rate = EXCLUDED.per_km_rate,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.q.ExecContext(ctx, query,
		config.Tier,
		config.BaseFare,
		config.PerKmRate,
		config.UpdatedAt,
	)

	return err
}

// AppendChange records one tariff update in the history.
func (r *FareConfigRepository) AppendChange(ctx context.Context, change *domain.FareChange) error {
	query := `
		INSERT INTO fare_changes (id, tier, old_base_fare, old_per_km_rate, new_base_fare, new_per_km_rate, reason, admin_id, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		change.ID,
		change.Tier,
		change.OldBaseFare,
		change.OldPerKmRate,
		change.NewBaseFare,
		change.NewPerKmRate,
		change.Reason,
		change.AdminID,
		change.ChangedAt,
	)

	return err
}

// ListChanges returns a tier's change history, newest first.
func (r *FareConfigRepository) ListChanges(ctx context.Context, tier domain.TripType) ([]*domain.FareChange, error) {
	query := `
		SELECT id, tier, old_base_fare, old_per_km_rate, new_base_fare, new_per_km_rate, reason, admin_id, changed_at
		FROM fare_changes WHERE tier = $1 ORDER BY changed_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, tier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []*domain.FareChange
	for rows.Next() {
		var c domain.FareChange
		if err := rows.Scan(
			&c.ID,
			&c.Tier,
			&c.OldBaseFare,
			&c.OldPerKmRate,
			&c.NewBaseFare,
			&c.NewPerKmRate,
			&c.Reason,
			&c.AdminID,
			&c.ChangedAt,
		); err != nil {
			return nil, err
		}
		changes = append(changes, &c)
	}
	return changes, rows.Err()
}

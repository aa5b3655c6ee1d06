package postgres

import (
	"context"
	"database/sql"
	"errors"

	"trike/internal/domain"
	"trike/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// Create persists a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, phone, vehicle_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		driver.Phone,
		nullString(driver.VehicleID),
		driver.Status,
		driver.CreatedAt,
	)

	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT id, name, phone, vehicle_id, status, created_at FROM drivers WHERE id = $1`

	var driver domain.Driver
	var vehicleID sql.NullString
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&vehicleID,
		&driver.Status,
		&driver.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	driver.VehicleID = vehicleID.String

	return &driver, nil
}

// GetAll retrieves all drivers.
func (r *DriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT id, name, phone, vehicle_id, status, created_at FROM drivers ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		var driver domain.Driver
		var vehicleID sql.NullString
		if err := rows.Scan(
			&driver.ID,
			&driver.Name,
			&driver.Phone,
			&vehicleID,
			&driver.Status,
			&driver.CreatedAt,
		); err != nil {
			return nil, err
		}
		driver.VehicleID = vehicleID.String
		drivers = append(drivers, &driver)
	}
	return drivers, rows.Err()
}

// UpdateStatus updates a driver's registry status.
func (r *DriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE drivers SET status = $1 WHERE id = $2`, status, id)
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

// UpdateVehicle reassigns a driver's tricycle.
func (r *DriverRepository) UpdateVehicle(ctx context.Context, id string, vehicleID string) error {
	result, err := r.q.ExecContext(ctx, `UPDATE drivers SET vehicle_id = $1 WHERE id = $2`, nullString(vehicleID), id)
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

package repository

import (
	"context"

	"trike/internal/domain"
)

// DriverRepository defines the persistence operations for the driver
// registry.
type DriverRepository interface {
	// Create persists a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetAll retrieves all drivers.
	GetAll(ctx context.Context) ([]*domain.Driver, error)

	// UpdateStatus updates a driver's registry status.
	UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error

	// UpdateVehicle reassigns a driver's tricycle.
	UpdateVehicle(ctx context.Context, id string, vehicleID string) error
}

package repository

import (
	"context"
	"time"

	"trike/internal/domain"
)

// BookingChanges carries the optional fields a status transition may set.
// Nil pointers leave the stored value untouched. ClearAssignment nulls
// driver_id and vehicle_id in the same write.
type BookingChanges struct {
	DriverID        *string
	VehicleID       *string
	ClearAssignment bool
	ArrivedAtPickup *bool
	ArrivedAt       *time.Time
	NoShow          *bool
	NoShowAt        *time.Time
	CancelledAt     *time.Time
	CancelledBy     *string
	CancelReason    *string
}

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// GetActiveByCustomer returns the customer's non-terminal booking,
	// or nil if they have none.
	GetActiveByCustomer(ctx context.Context, customerID string) (*domain.Booking, error)

	// ListPendingUnassigned returns PENDING bookings with no driver,
	// oldest first.
	ListPendingUnassigned(ctx context.Context) ([]*domain.Booking, error)

	// List retrieves recent bookings, newest first.
	List(ctx context.Context) ([]*domain.Booking, error)

	// UpdateStatusCAS commits a status transition only if the stored
	// status still equals expected, applying changes in the same write.
	// expected == next expresses a field-only update guarded on status.
	// Returns ErrStaleState on a lost race, ErrNotFound for unknown IDs.
	UpdateStatusCAS(ctx context.Context, id string, expected, next domain.BookingStatus, changes BookingChanges) error
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"trike/internal/domain"
	"trike/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `id, customer_id, customer_name, phone, pickup_lat, pickup_lng, pickup_text,
	dropoff_lat, dropoff_lng, dropoff_text, trip_type, distance_km, fare, status, driver_id,
	vehicle_id, verification_code, arrived_at_pickup, arrived_at, no_show, no_show_at,
	created_at, cancelled_at, cancelled_by, cancel_reason`

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`

	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.CustomerID,
		booking.CustomerName,
		booking.Phone,
		booking.PickupLat,
		booking.PickupLng,
		booking.PickupText,
		booking.DropoffLat,
		booking.DropoffLng,
		booking.DropoffText,
		booking.TripType,
		booking.DistanceKm,
		booking.Fare,
		booking.Status,
		nullString(booking.DriverID),
		nullString(booking.VehicleID),
		booking.VerificationCode,
		booking.ArrivedAtPickup,
		nullTime(booking.ArrivedAt),
		booking.NoShow,
		nullTime(booking.NoShowAt),
		booking.CreatedAt,
		nullTime(booking.CancelledAt),
		nullString(booking.CancelledBy),
		nullString(booking.CancelReason),
	)

	return err
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return booking, nil
}

// GetActiveByCustomer returns the customer's non-terminal booking, if any.
func (r *BookingRepository) GetActiveByCustomer(ctx context.Context, customerID string) (*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE customer_id = $1 AND status NOT IN ('COMPLETED', 'CANCELLED')
		ORDER BY created_at DESC LIMIT 1
	`

	booking, err := scanBooking(r.q.QueryRowContext(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return booking, nil
}

// ListPendingUnassigned returns PENDING bookings with no driver, oldest first.
func (r *BookingRepository) ListPendingUnassigned(ctx context.Context) ([]*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE status = 'PENDING' AND driver_id IS NULL
		ORDER BY created_at ASC
	`

	return r.list(ctx, query)
}

// List retrieves recent bookings, newest first.
func (r *BookingRepository) List(ctx context.Context) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC LIMIT 100`

	return r.list(ctx, query)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

// UpdateStatusCAS commits a status transition only if the stored status
// still equals expected. COALESCE keeps unset change fields untouched.
func (r *BookingRepository) UpdateStatusCAS(ctx context.Context, id string, expected, next domain.BookingStatus, changes repository.BookingChanges) error {
	query := `
		UPDATE bookings SET
			status = $3,
			driver_id = CASE WHEN $13 THEN NULL ELSE COALESCE($4, driver_id) END,
			vehicle_id = CASE WHEN $13 THEN NULL ELSE COALESCE($5, vehicle_id) END,
			arrived_at_pickup = COALESCE($6, arrived_at_pickup),
			arrived_at = COALESCE($7, arrived_at),
			no_show = COALESCE($8, no_show),
			no_show_at = COALESCE($9, no_show_at),
			cancelled_at = COALESCE($10, cancelled_at),
			cancelled_by = COALESCE($11, cancelled_by),
			cancel_reason = COALESCE($12, cancel_reason)
		WHERE id = $1 AND status = $2
	`

	result, err := r.q.ExecContext(ctx, query,
		id,
		expected,
		next,
		changes.DriverID,
		changes.VehicleID,
		changes.ArrivedAtPickup,
		changes.ArrivedAt,
		changes.NoShow,
		changes.NoShowAt,
		changes.CancelledAt,
		changes.CancelledBy,
		changes.CancelReason,
		changes.ClearAssignment,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Distinguish a lost race from an unknown booking.
		var exists bool
		checkErr := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists)
		if checkErr != nil {
			return checkErr
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrStaleState
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var driverID, vehicleID, cancelledBy, cancelReason sql.NullString
	var arrivedAt, noShowAt, cancelledAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.CustomerID,
		&booking.CustomerName,
		&booking.Phone,
		&booking.PickupLat,
		&booking.PickupLng,
		&booking.PickupText,
		&booking.DropoffLat,
		&booking.DropoffLng,
		&booking.DropoffText,
		&booking.TripType,
		&booking.DistanceKm,
		&booking.Fare,
		&booking.Status,
		&driverID,
		&vehicleID,
		&booking.VerificationCode,
		&booking.ArrivedAtPickup,
		&arrivedAt,
		&booking.NoShow,
		&noShowAt,
		&booking.CreatedAt,
		&cancelledAt,
		&cancelledBy,
		&cancelReason,
	)
	if err != nil {
		return nil, err
	}

	booking.DriverID = driverID.String
	booking.VehicleID = vehicleID.String
	booking.CancelledBy = cancelledBy.String
	booking.CancelReason = cancelReason.String
	if arrivedAt.Valid {
		booking.ArrivedAt = arrivedAt.Time
	}
	if noShowAt.Valid {
		booking.NoShowAt = noShowAt.Time
	}
	if cancelledAt.Valid {
		booking.CancelledAt = cancelledAt.Time
	}

	return &booking, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

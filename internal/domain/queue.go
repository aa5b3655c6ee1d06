package domain

import "time"

// QueueEntry represents a driver waiting for the next assignable booking.
// Position is a monotonically assigned ordinal; lower comes first. A
// compensating front re-insert uses a position below the current head, so
// FIFO order is by position, with JoinedAt kept for display.
type QueueEntry struct {
	DriverID  string
	VehicleID string
	Position  int64
	PaidToday bool // eligibility snapshot at enqueue time
	JoinedAt  time.Time
}

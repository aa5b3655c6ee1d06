package domain

import "time"

// DriverStatus represents a driver's registry status.
type DriverStatus string

const (
	DriverStatusPendingApproval DriverStatus = "PENDING_APPROVAL"
	DriverStatusApproved        DriverStatus = "APPROVED"
	DriverStatusRejected        DriverStatus = "REJECTED"
)

// Driver represents a registered tricycle driver.
type Driver struct {
	ID        string
	Name      string
	Phone     string
	VehicleID string // assigned tricycle
	Status    DriverStatus
	CreatedAt time.Time
}

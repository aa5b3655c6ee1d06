package domain

import "time"

// BookingStatus represents the current status of a booking.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusAccepted   BookingStatus = "ACCEPTED"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

// Terminal reports whether no further transitions are permitted.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// TripType represents the fare tier of a booking.
type TripType string

const (
	TripTypeRegular TripType = "REGULAR"
	TripTypeSpecial TripType = "SPECIAL"
)

// DiscountClass represents a customer's discount category.
type DiscountClass string

const (
	DiscountNone    DiscountClass = ""
	DiscountStudent DiscountClass = "STUDENT"
	DiscountPWD     DiscountClass = "PWD"
	DiscountSenior  DiscountClass = "SENIOR"
)

// ActorRole identifies who initiated a booking mutation.
type ActorRole string

const (
	ActorCustomer ActorRole = "CUSTOMER"
	ActorDriver   ActorRole = "DRIVER"
	ActorAdmin    ActorRole = "ADMIN"
	ActorSystem   ActorRole = "SYSTEM"
)

// Booking represents one trip request and its engagement lifecycle.
type Booking struct {
	ID               string
	CustomerID       string
	CustomerName     string
	Phone            string
	PickupLat        float64
	PickupLng        float64
	PickupText       string
	DropoffLat       float64
	DropoffLng       float64
	DropoffText      string
	TripType         TripType
	DistanceKm       float64
	Fare             float64
	Status           BookingStatus
	DriverID         string // empty until matched
	VehicleID        string
	VerificationCode string
	ArrivedAtPickup  bool
	ArrivedAt        time.Time
	NoShow           bool
	NoShowAt         time.Time
	CreatedAt        time.Time
	CancelledAt      time.Time
	CancelledBy      string
	CancelReason     string
}

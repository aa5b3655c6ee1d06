package service

import "errors"

var (
	// ErrInvalidCustomerID is returned when the customer ID is blank.
	ErrInvalidCustomerID = errors.New("invalid customer id")

	// ErrInvalidPhone is returned when the contact number is blank.
	ErrInvalidPhone = errors.New("invalid phone number")

	// ErrInvalidBookingID is returned when the booking ID is blank.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidDriverID is returned when the driver ID is blank.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidDistance is returned when a distance is negative.
	ErrInvalidDistance = errors.New("invalid distance")

	// ErrInvalidTripType is returned for an unknown fare tier.
	ErrInvalidTripType = errors.New("invalid trip type")

	// ErrInvalidAmount is returned when a monetary amount is not positive.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrCustomerHasActiveBooking is returned when a customer requests a
	// trip while another of their bookings is still in flight.
	ErrCustomerHasActiveBooking = errors.New("customer already has an active booking")

	// ErrActorNotAllowed is returned when the caller is neither the
	// owning customer, the assigned driver, nor an admin.
	ErrActorNotAllowed = errors.New("actor not allowed to perform this action")

	// ErrBookingNotCancellable is returned when the booking has already
	// progressed past a cancellable state.
	ErrBookingNotCancellable = errors.New("booking cannot be cancelled in current state")

	// ErrNotArrivedAtPickup is returned when a no-show is reported before
	// the driver has marked arrival at the pickup point.
	ErrNotArrivedAtPickup = errors.New("driver has not arrived at pickup")

	// ErrNotEligible is returned when the contribution gate denies queue
	// entry for unpaid daily dues.
	ErrNotEligible = errors.New("driver not eligible: daily contribution unpaid")

	// ErrAlreadyQueued is returned when a driver joins a queue they are
	// already in.
	ErrAlreadyQueued = errors.New("driver already in queue")

	// ErrDriverNotApproved is returned when an unapproved driver tries to
	// join the queue.
	ErrDriverNotApproved = errors.New("driver not approved")

	// ErrQueueBusy is returned when the queue lock could not be acquired.
	// The operation is safe to retry.
	ErrQueueBusy = errors.New("queue busy, retry")
)

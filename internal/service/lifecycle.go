package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/observability"
	"trike/internal/repository"
)

// DefaultPendingTimeout is how long a booking may stay PENDING without a
// match before it is auto-cancelled.
const DefaultPendingTimeout = 120 * time.Second

const autoCancelReason = "no drivers available, request cancelled"

// ChangePublisher streams committed booking and queue changes to
// subscribed observers.
type ChangePublisher interface {
	PublishBooking(ctx context.Context, booking *domain.Booking) error
	PublishQueue(ctx context.Context, entries []*domain.QueueEntry) error
}

// LifecycleService owns every legal booking state transition. All
// transitions go through the repository's compare-and-set, so a lost
// race surfaces as repository.ErrStaleState rather than a double commit.
type LifecycleService struct {
	bookingRepo    repository.BookingRepository
	fareService    *FareService
	timeouts       TimeoutScheduler
	publisher      ChangePublisher
	notifier       NotificationSink
	ratings        RatingSink
	logger         *slog.Logger
	pendingTimeout time.Duration
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(
	bookingRepo repository.BookingRepository,
	fareService *FareService,
	timeouts TimeoutScheduler,
	publisher ChangePublisher,
	notifier NotificationSink,
	ratings RatingSink,
	logger *slog.Logger,
	pendingTimeout time.Duration,
) *LifecycleService {
	if pendingTimeout <= 0 {
		pendingTimeout = DefaultPendingTimeout
	}
	return &LifecycleService{
		bookingRepo:    bookingRepo,
		fareService:    fareService,
		timeouts:       timeouts,
		publisher:      publisher,
		notifier:       notifier,
		ratings:        ratings,
		logger:         logger,
		pendingTimeout: pendingTimeout,
	}
}

// CreateBookingRequest contains the parameters for a new trip request.
type CreateBookingRequest struct {
	CustomerID       string
	CustomerName     string
	Phone            string
	PickupLat        float64
	PickupLng        float64
	PickupText       string
	DropoffLat       float64
	DropoffLng       float64
	DropoffText      string
	TripType         domain.TripType
	DistanceKm       float64
	DriverToPickupKm float64
	Discount         domain.DiscountClass
	DiscountVerified bool
}

// Create allocates a PENDING booking with an attached fare quote and a
// scheduled auto-cancel. Matching runs separately.
func (s *LifecycleService) Create(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if strings.TrimSpace(req.CustomerID) == "" {
		return nil, ErrInvalidCustomerID
	}
	if strings.TrimSpace(req.Phone) == "" {
		return nil, ErrInvalidPhone
	}
	if req.DistanceKm < 0 {
		return nil, ErrInvalidDistance
	}
	if req.TripType == "" {
		req.TripType = domain.TripTypeRegular
	}

	active, err := s.bookingRepo.GetActiveByCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrCustomerHasActiveBooking
	}

	quote, err := s.fareService.Quote(ctx, QuoteRequest{
		TripType:         req.TripType,
		DistanceKm:       req.DistanceKm,
		DriverToPickupKm: req.DriverToPickupKm,
		Discount:         req.Discount,
		DiscountVerified: req.DiscountVerified,
	})
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:               uuid.New().String(),
		CustomerID:       req.CustomerID,
		CustomerName:     req.CustomerName,
		Phone:            req.Phone,
		PickupLat:        req.PickupLat,
		PickupLng:        req.PickupLng,
		PickupText:       req.PickupText,
		DropoffLat:       req.DropoffLat,
		DropoffLng:       req.DropoffLng,
		DropoffText:      req.DropoffText,
		TripType:         req.TripType,
		DistanceKm:       req.DistanceKm,
		Fare:             quote.Total,
		Status:           domain.BookingStatusPending,
		VerificationCode: newVerificationCode(),
		CreatedAt:        time.Now(),
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	id := booking.ID
	s.timeouts.Schedule(id, s.pendingTimeout, func() {
		s.autoCancel(id)
	})

	observability.BookingTransitions.WithLabelValues("", string(domain.BookingStatusPending)).Inc()
	s.publish(ctx, booking)

	return booking, nil
}

// Accept is the commit half of a match: PENDING → ACCEPTED with the
// driver assigned, as one compare-and-set. The caller (the matching
// engine) owns the paired dequeue and its compensation.
func (s *LifecycleService) Accept(ctx context.Context, bookingID, driverID, vehicleID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	changes := repository.BookingChanges{
		DriverID:  &driverID,
		VehicleID: &vehicleID,
	}
	if err := s.bookingRepo.UpdateStatusCAS(ctx, bookingID, domain.BookingStatusPending, domain.BookingStatusAccepted, changes); err != nil {
		return nil, err
	}

	s.timeouts.Cancel(bookingID)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	observability.BookingTransitions.WithLabelValues(string(domain.BookingStatusPending), string(domain.BookingStatusAccepted)).Inc()
	s.publish(ctx, booking)
	if s.notifier != nil {
		s.notifier.NotifyNewBooking(ctx, driverID, booking)
	}

	return booking, nil
}

// MarkArrived records the driver reaching the pickup point. The status
// stays ACCEPTED; the arrival flag gates the no-show report.
func (s *LifecycleService) MarkArrived(ctx context.Context, bookingID, driverID string) (*domain.Booking, error) {
	booking, err := s.getForDriver(ctx, bookingID, driverID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusAccepted {
		return nil, repository.ErrStaleState
	}

	arrived := true
	now := time.Now()
	changes := repository.BookingChanges{
		ArrivedAtPickup: &arrived,
		ArrivedAt:       &now,
	}
	if err := s.bookingRepo.UpdateStatusCAS(ctx, bookingID, domain.BookingStatusAccepted, domain.BookingStatusAccepted, changes); err != nil {
		return nil, err
	}

	booking.ArrivedAtPickup = true
	booking.ArrivedAt = now

	s.publish(ctx, booking)
	if s.notifier != nil {
		s.notifier.NotifyDriverArrived(ctx, booking.CustomerID, booking)
	}

	return booking, nil
}

// StartTrip moves an ACCEPTED booking to IN_PROGRESS.
func (s *LifecycleService) StartTrip(ctx context.Context, bookingID, driverID string) (*domain.Booking, error) {
	if _, err := s.getForDriver(ctx, bookingID, driverID); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.UpdateStatusCAS(ctx, bookingID, domain.BookingStatusAccepted, domain.BookingStatusInProgress, repository.BookingChanges{}); err != nil {
		return nil, err
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	observability.BookingTransitions.WithLabelValues(string(domain.BookingStatusAccepted), string(domain.BookingStatusInProgress)).Inc()
	s.publish(ctx, booking)

	return booking, nil
}

// Complete finishes a trip. IN_PROGRESS is the normal source state;
// ACCEPTED is allowed for very short hops where the driver never
// reported the start.
func (s *LifecycleService) Complete(ctx context.Context, bookingID, driverID string) (*domain.Booking, error) {
	booking, err := s.getForDriver(ctx, bookingID, driverID)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusInProgress && booking.Status != domain.BookingStatusAccepted {
		return nil, repository.ErrStaleState
	}

	if err := s.bookingRepo.UpdateStatusCAS(ctx, bookingID, booking.Status, domain.BookingStatusCompleted, repository.BookingChanges{}); err != nil {
		return nil, err
	}

	from := booking.Status
	booking.Status = domain.BookingStatusCompleted

	observability.BookingTransitions.WithLabelValues(string(from), string(domain.BookingStatusCompleted)).Inc()
	s.publish(ctx, booking)
	if s.ratings != nil {
		s.ratings.RatingOpened(ctx, booking)
	}

	return booking, nil
}

// CancelRequest contains the parameters for cancelling a booking.
type CancelRequest struct {
	BookingID string
	ActorID   string
	Role      domain.ActorRole
	Reason    string
}

// Cancel moves a PENDING or ACCEPTED booking to CANCELLED. A pending
// booking with no driver cancels unconditionally; an accepted booking
// notifies the driver, who may re-join the queue at their discretion.
func (s *LifecycleService) Cancel(ctx context.Context, req CancelRequest) (*domain.Booking, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}

	if err := authorizeCancel(booking, req); err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusPending && booking.Status != domain.BookingStatusAccepted {
		return nil, ErrBookingNotCancellable
	}

	now := time.Now()
	changes := repository.BookingChanges{
		CancelledAt:     &now,
		CancelledBy:     &req.ActorID,
		CancelReason:    &req.Reason,
		ClearAssignment: true,
	}
	if err := s.bookingRepo.UpdateStatusCAS(ctx, req.BookingID, booking.Status, domain.BookingStatusCancelled, changes); err != nil {
		return nil, err
	}

	s.timeouts.Cancel(req.BookingID)

	// Only active bookings carry an assignment; the driver from an
	// accepted booking is kept for the notification below.
	assignedDriver := booking.DriverID

	from := booking.Status
	booking.Status = domain.BookingStatusCancelled
	booking.DriverID = ""
	booking.VehicleID = ""
	booking.CancelledAt = now
	booking.CancelledBy = req.ActorID
	booking.CancelReason = req.Reason

	observability.BookingTransitions.WithLabelValues(string(from), string(domain.BookingStatusCancelled)).Inc()
	s.publish(ctx, booking)
	s.notifyCancelled(ctx, booking, req, assignedDriver)

	return booking, nil
}

// ReportNoShow flags a no-show on an ACCEPTED booking after the driver
// has arrived at pickup. It does not cancel the booking; the driver
// cancels separately once the arrival window lapses.
func (s *LifecycleService) ReportNoShow(ctx context.Context, bookingID, driverID string) (*domain.Booking, error) {
	booking, err := s.getForDriver(ctx, bookingID, driverID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusAccepted {
		return nil, repository.ErrStaleState
	}
	if !booking.ArrivedAtPickup {
		return nil, ErrNotArrivedAtPickup
	}

	noShow := true
	now := time.Now()
	changes := repository.BookingChanges{
		NoShow:   &noShow,
		NoShowAt: &now,
	}
	if err := s.bookingRepo.UpdateStatusCAS(ctx, bookingID, domain.BookingStatusAccepted, domain.BookingStatusAccepted, changes); err != nil {
		return nil, err
	}

	booking.NoShow = true
	booking.NoShowAt = now

	s.publish(ctx, booking)

	return booking, nil
}

// Get retrieves a booking by ID.
func (s *LifecycleService) Get(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	return s.bookingRepo.GetByID(ctx, bookingID)
}

// List retrieves recent bookings.
func (s *LifecycleService) List(ctx context.Context) ([]*domain.Booking, error) {
	return s.bookingRepo.List(ctx)
}

// autoCancel runs when the pending timeout fires. A booking that already
// left PENDING makes this a silent no-op; the compare-and-set guarantees
// the cancel commits at most once even if checks race.
func (s *LifecycleService) autoCancel(bookingID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.ErrorContext(ctx, "auto-cancel read failed", "booking_id", bookingID, "error", err)
		}
		return
	}
	if booking.Status != domain.BookingStatusPending {
		return
	}

	now := time.Now()
	actor := string(domain.ActorSystem)
	reason := autoCancelReason
	changes := repository.BookingChanges{
		CancelledAt:  &now,
		CancelledBy:  &actor,
		CancelReason: &reason,
	}
	err = s.bookingRepo.UpdateStatusCAS(ctx, bookingID, domain.BookingStatusPending, domain.BookingStatusCancelled, changes)
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) || errors.Is(err, repository.ErrNotFound) {
			// Lost the race to a match or a human cancel.
			return
		}
		s.logger.ErrorContext(ctx, "auto-cancel failed", "booking_id", bookingID, "error", err)
		return
	}

	observability.PendingTimeouts.Inc()
	observability.BookingTransitions.WithLabelValues(string(domain.BookingStatusPending), string(domain.BookingStatusCancelled)).Inc()

	booking.Status = domain.BookingStatusCancelled
	booking.CancelledAt = now
	booking.CancelledBy = actor
	booking.CancelReason = reason

	s.publish(ctx, booking)
	if s.notifier != nil {
		s.notifier.NotifyBookingCancelled(ctx, booking.CustomerID, booking, reason)
	}
}

// getForDriver loads a booking and verifies the caller is its assigned
// driver.
func (s *LifecycleService) getForDriver(ctx context.Context, bookingID, driverID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.DriverID != driverID {
		return nil, ErrActorNotAllowed
	}

	return booking, nil
}

func authorizeCancel(booking *domain.Booking, req CancelRequest) error {
	switch req.Role {
	case domain.ActorCustomer:
		if req.ActorID != booking.CustomerID {
			return ErrActorNotAllowed
		}
	case domain.ActorDriver:
		if booking.DriverID == "" || req.ActorID != booking.DriverID {
			return ErrActorNotAllowed
		}
	case domain.ActorAdmin, domain.ActorSystem:
		// Always allowed.
	default:
		return ErrActorNotAllowed
	}
	return nil
}

func (s *LifecycleService) notifyCancelled(ctx context.Context, booking *domain.Booking, req CancelRequest, assignedDriver string) {
	if s.notifier == nil {
		return
	}

	// Notify the party that did not initiate the cancel.
	recipient := booking.CustomerID
	if req.ActorID == booking.CustomerID {
		recipient = assignedDriver
	}
	s.notifier.NotifyBookingCancelled(ctx, recipient, booking, req.Reason)
}

func (s *LifecycleService) publish(ctx context.Context, booking *domain.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBooking(ctx, booking); err != nil {
		s.logger.WarnContext(ctx, "booking publish failed", "booking_id", booking.ID, "error", err)
	}
}

// newVerificationCode returns the short code a driver uses to confirm
// the customer's identity at pickup.
func newVerificationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:4])
}

package tests

import (
	"context"
	"errors"
	"testing"

	"trike/internal/domain"
	"trike/internal/repository"
	"trike/internal/service"
)

type lifecycleFixture struct {
	bookingRepo *MockBookingRepository
	scheduler   *MockScheduler
	publisher   *MockPublisher
	notifier    *MockNotifier
	ratings     *MockRatingSink
	lifecycle   *service.LifecycleService
}

func newLifecycleFixture() *lifecycleFixture {
	bookingRepo := NewMockBookingRepository()
	scheduler := NewMockScheduler()
	publisher := NewMockPublisher()
	notifier := NewMockNotifier()
	ratings := NewMockRatingSink()

	fareService := service.NewFareService(NewMockFareConfigRepository(), nil)
	lifecycle := service.NewLifecycleService(
		bookingRepo, fareService, scheduler, publisher, notifier, ratings,
		testLogger(), 0,
	)

	return &lifecycleFixture{
		bookingRepo: bookingRepo,
		scheduler:   scheduler,
		publisher:   publisher,
		notifier:    notifier,
		ratings:     ratings,
		lifecycle:   lifecycle,
	}
}

func validCreateRequest() service.CreateBookingRequest {
	return service.CreateBookingRequest{
		CustomerID:   "customer-1",
		CustomerName: "Maria",
		Phone:        "09170000001",
		TripType:     domain.TripTypeRegular,
		DistanceKm:   3,
	}
}

func TestCreateBooking_StartsPendingWithFareAndTimer(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	booking, err := f.lifecycle.Create(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if booking.Status != domain.BookingStatusPending {
		t.Errorf("expected PENDING, got %s", booking.Status)
	}
	if booking.DriverID != "" {
		t.Errorf("expected no driver on a fresh booking, got %s", booking.DriverID)
	}
	// 20 base + 2km at 8 + full convenience fee.
	if booking.Fare != 38.0 {
		t.Errorf("expected fare 38.00, got %.2f", booking.Fare)
	}
	if len(booking.VerificationCode) != 4 {
		t.Errorf("expected 4-char verification code, got %q", booking.VerificationCode)
	}
	if !f.scheduler.Pending(booking.ID) {
		t.Error("expected an auto-cancel timer to be scheduled")
	}

	statuses := f.publisher.PublishedStatuses()
	if len(statuses) != 1 || statuses[0] != domain.BookingStatusPending {
		t.Errorf("expected a PENDING event on the stream, got %v", statuses)
	}
}

func TestCreateBooking_Validation(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	cases := []struct {
		name    string
		mutate  func(*service.CreateBookingRequest)
		wantErr error
	}{
		{"blank customer", func(r *service.CreateBookingRequest) { r.CustomerID = "  " }, service.ErrInvalidCustomerID},
		{"blank phone", func(r *service.CreateBookingRequest) { r.Phone = "" }, service.ErrInvalidPhone},
		{"negative distance", func(r *service.CreateBookingRequest) { r.DistanceKm = -2 }, service.ErrInvalidDistance},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(&req)
			if _, err := f.lifecycle.Create(ctx, req); !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateBooking_RejectsSecondActiveBooking(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	if _, err := f.lifecycle.Create(ctx, validCreateRequest()); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := f.lifecycle.Create(ctx, validCreateRequest())
	if !errors.Is(err, service.ErrCustomerHasActiveBooking) {
		t.Errorf("expected ErrCustomerHasActiveBooking, got %v", err)
	}
}

func TestHappyPath_PendingToCompleted(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	booking, err := f.lifecycle.Create(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	accepted, err := f.lifecycle.Accept(ctx, booking.ID, "driver-1", "trike-7")
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != domain.BookingStatusAccepted || accepted.DriverID != "driver-1" {
		t.Errorf("unexpected accepted booking: status=%s driver=%s", accepted.Status, accepted.DriverID)
	}
	if f.scheduler.Pending(booking.ID) {
		t.Error("expected the auto-cancel timer to be cancelled on accept")
	}
	if len(f.notifier.NewBookings) != 1 || f.notifier.NewBookings[0] != "driver-1" {
		t.Errorf("expected driver-1 to be notified, got %v", f.notifier.NewBookings)
	}

	arrived, err := f.lifecycle.MarkArrived(ctx, booking.ID, "driver-1")
	if err != nil {
		t.Fatalf("mark arrived failed: %v", err)
	}
	if arrived.Status != domain.BookingStatusAccepted || !arrived.ArrivedAtPickup {
		t.Errorf("arrival must not change status: status=%s arrived=%v", arrived.Status, arrived.ArrivedAtPickup)
	}
	if len(f.notifier.Arrivals) != 1 || f.notifier.Arrivals[0] != "customer-1" {
		t.Errorf("expected customer-1 arrival notification, got %v", f.notifier.Arrivals)
	}

	started, err := f.lifecycle.StartTrip(ctx, booking.ID, "driver-1")
	if err != nil {
		t.Fatalf("start trip failed: %v", err)
	}
	if started.Status != domain.BookingStatusInProgress {
		t.Errorf("expected IN_PROGRESS, got %s", started.Status)
	}

	completed, err := f.lifecycle.Complete(ctx, booking.ID, "driver-1")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != domain.BookingStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", completed.Status)
	}
	if f.ratings.OpenedCount() != 1 {
		t.Errorf("expected a rating stub, got %d", f.ratings.OpenedCount())
	}
}

func TestComplete_FromAcceptedShortHop(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	booking, _ := f.lifecycle.Create(ctx, validCreateRequest())
	if _, err := f.lifecycle.Accept(ctx, booking.ID, "driver-1", "trike-7"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	completed, err := f.lifecycle.Complete(ctx, booking.ID, "driver-1")
	if err != nil {
		t.Fatalf("complete from ACCEPTED failed: %v", err)
	}
	if completed.Status != domain.BookingStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", completed.Status)
	}
}

func TestStartTrip_RequiresAssignedDriver(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	booking, _ := f.lifecycle.Create(ctx, validCreateRequest())
	if _, err := f.lifecycle.Accept(ctx, booking.ID, "driver-1", "trike-7"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	_, err := f.lifecycle.StartTrip(ctx, booking.ID, "driver-2")
	if !errors.Is(err, service.ErrActorNotAllowed) {
		t.Errorf("expected ErrActorNotAllowed, got %v", err)
	}
}

func TestCancel_ByOwningCustomer(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	booking, _ := f.lifecycle.Create(ctx, validCreateRequest())

	cancelled, err := f.lifecycle.Cancel(ctx, service.CancelRequest{
		BookingID: booking.ID,
		ActorID:   "customer-1",
		Role:      domain.ActorCustomer,
		Reason:    "changed plans",
	})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.BookingStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
	if cancelled.CancelledBy != "customer-1" || cancelled.CancelReason != "changed plans" {
		t.Errorf("unexpected cancel fields: by=%s reason=%s", cancelled.CancelledBy, cancelled.CancelReason)
	}
	if f.scheduler.Pending(booking.ID) {
		t.Error("expected the auto-cancel timer to be cancelled")
	}
}

func TestCancel_AcceptedClearsAssignment(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	booking, _ := f.lifecycle.Create(ctx, validCreateRequest())
	if _, err := f.lifecycle.Accept(ctx, booking.ID, "driver-1", "trike-7"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	cancelled, err := f.lifecycle.Cancel(ctx, service.CancelRequest{
		BookingID: booking.ID,
		ActorID:   "customer-1",
		Role:      domain.ActorCustomer,
		Reason:    "waited too long",
	})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// A booking only carries an assignment while it is ACCEPTED,
	// IN_PROGRESS, or COMPLETED.
	if cancelled.DriverID != "" || cancelled.VehicleID != "" {
		t.Errorf("cancelled booking still assigned: driver=%q vehicle=%q", cancelled.DriverID, cancelled.VehicleID)
	}
	stored := f.bookingRepo.GetBooking(booking.ID)
	if stored.DriverID != "" || stored.VehicleID != "" {
		t.Errorf("stored booking still assigned: driver=%q vehicle=%q", stored.DriverID, stored.VehicleID)
	}
	if stored.CancelledBy != "customer-1" {
		t.Errorf("expected cancelled_by customer-1, got %q", stored.CancelledBy)
	}

	// The displaced driver is still the one notified.
	if len(f.notifier.Cancellations) != 1 || f.notifier.Cancellations[0] != "driver-1" {
		t.Errorf("expected driver-1 cancellation notice, got %v", f.notifier.Cancellations)
	}
}

func TestCancel_WrongActorRejected(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	booking, _ := f.lifecycle.Create(ctx, validCreateRequest())

	_, err := f.lifecycle.Cancel(ctx, service.CancelRequest{
		BookingID: booking.ID,
		ActorID:   "customer-2",
		Role:      domain.ActorCustomer,
	})
	if !errors.Is(err, service.ErrActorNotAllowed) {
		t.Errorf("expected ErrActorNotAllowed, got %v", err)
	}

	// A driver cannot cancel a booking they are not assigned to.
	_, err = f.lifecycle.Cancel(ctx, service.CancelRequest{
		BookingID: booking.ID,
		ActorID:   "driver-9",
		Role:      domain.ActorDriver,
	})
	if !errors.Is(err, service.ErrActorNotAllowed) {
		t.Errorf("expected ErrActorNotAllowed, got %v", err)
	}
}

func TestCancel_TerminalStateRejected(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	booking, _ := f.lifecycle.Create(ctx, validCreateRequest())
	f.lifecycle.Accept(ctx, booking.ID, "driver-1", "trike-7")
	if _, err := f.lifecycle.Complete(ctx, booking.ID, "driver-1"); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	_, err := f.lifecycle.Cancel(ctx, service.CancelRequest{
		BookingID: booking.ID,
		ActorID:   "admin-1",
		Role:      domain.ActorAdmin,
	})
	if !errors.Is(err, service.ErrBookingNotCancellable) {
		t.Errorf("expected ErrBookingNotCancellable, got %v", err)
	}
}

func TestNoShow_RequiresArrival(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	booking, _ := f.lifecycle.Create(ctx, validCreateRequest())
	f.lifecycle.Accept(ctx, booking.ID, "driver-1", "trike-7")

	_, err := f.lifecycle.ReportNoShow(ctx, booking.ID, "driver-1")
	if !errors.Is(err, service.ErrNotArrivedAtPickup) {
		t.Errorf("expected ErrNotArrivedAtPickup, got %v", err)
	}

	if _, err := f.lifecycle.MarkArrived(ctx, booking.ID, "driver-1"); err != nil {
		t.Fatalf("mark arrived failed: %v", err)
	}

	reported, err := f.lifecycle.ReportNoShow(ctx, booking.ID, "driver-1")
	if err != nil {
		t.Fatalf("report no-show failed: %v", err)
	}
	if !reported.NoShow {
		t.Error("expected no-show flag set")
	}
	if reported.Status != domain.BookingStatusAccepted {
		t.Errorf("no-show must not change status, got %s", reported.Status)
	}
}

func TestAccept_StaleAfterCancel(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	booking, _ := f.lifecycle.Create(ctx, validCreateRequest())
	if _, err := f.lifecycle.Cancel(ctx, service.CancelRequest{
		BookingID: booking.ID,
		ActorID:   "customer-1",
		Role:      domain.ActorCustomer,
	}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	_, err := f.lifecycle.Accept(ctx, booking.ID, "driver-1", "trike-7")
	if !errors.Is(err, repository.ErrStaleState) {
		t.Errorf("expected ErrStaleState, got %v", err)
	}
}

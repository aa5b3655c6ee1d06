package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"trike/internal/domain"
	"trike/internal/repository"
	"trike/internal/service"
)

type queueFixture struct {
	queueRepo   *MockQueueRepository
	driverRepo  *MockDriverRepository
	contribRepo *MockContributionRepository
	lock        *MockQueueLock
	publisher   *MockPublisher
	queue       *service.QueueService
}

func newQueueFixture() *queueFixture {
	queueRepo := NewMockQueueRepository()
	driverRepo := NewMockDriverRepository()
	contribRepo := NewMockContributionRepository()
	lock := NewMockQueueLock()
	publisher := NewMockPublisher()

	gate := service.NewContributionService(contribRepo, nil, testLogger())
	queue := service.NewQueueService(queueRepo, driverRepo, gate, lock, publisher, testLogger())

	return &queueFixture{
		queueRepo:   queueRepo,
		driverRepo:  driverRepo,
		contribRepo: contribRepo,
		lock:        lock,
		publisher:   publisher,
		queue:       queue,
	}
}

// addApprovedDriver registers an approved driver with dues paid today.
func (f *queueFixture) addApprovedDriver(driverID string) {
	f.driverRepo.AddDriver(&domain.Driver{
		ID:        driverID,
		Name:      "Driver " + driverID,
		Phone:     "0917" + driverID,
		VehicleID: "trike-" + driverID,
		Status:    domain.DriverStatusApproved,
	})
	f.contribRepo.AddContribution(&domain.Contribution{
		ID:       "contrib-" + driverID,
		DriverID: driverID,
		Amount:   20,
		PaidAt:   time.Now(),
	})
}

func TestQueueJoin_AppendsInOrder(t *testing.T) {
	ctx := context.Background()
	f := newQueueFixture()
	f.addApprovedDriver("driver-a")
	f.addApprovedDriver("driver-b")

	if _, err := f.queue.Join(ctx, "driver-a", ""); err != nil {
		t.Fatalf("join a failed: %v", err)
	}
	if _, err := f.queue.Join(ctx, "driver-b", ""); err != nil {
		t.Fatalf("join b failed: %v", err)
	}

	entries, err := f.queue.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].DriverID != "driver-a" || entries[1].DriverID != "driver-b" {
		t.Errorf("expected FIFO order [driver-a driver-b], got [%s %s]", entries[0].DriverID, entries[1].DriverID)
	}
	// Vehicle defaults from the registry when not passed.
	if entries[0].VehicleID != "trike-driver-a" {
		t.Errorf("expected registry vehicle, got %s", entries[0].VehicleID)
	}
}

func TestQueueJoin_DuplicateRejected(t *testing.T) {
	ctx := context.Background()
	f := newQueueFixture()
	f.addApprovedDriver("driver-a")

	if _, err := f.queue.Join(ctx, "driver-a", ""); err != nil {
		t.Fatalf("first join failed: %v", err)
	}

	_, err := f.queue.Join(ctx, "driver-a", "")
	if !errors.Is(err, service.ErrAlreadyQueued) {
		t.Errorf("expected ErrAlreadyQueued, got %v", err)
	}

	entries, _ := f.queue.Snapshot(ctx)
	if len(entries) != 1 {
		t.Errorf("expected the driver to appear once, got %d entries", len(entries))
	}
}

func TestQueueJoin_UnpaidDriverRejected(t *testing.T) {
	ctx := context.Background()
	f := newQueueFixture()

	// Approved but no contribution today.
	f.driverRepo.AddDriver(&domain.Driver{
		ID:     "driver-a",
		Status: domain.DriverStatusApproved,
	})
	f.contribRepo.AddContribution(&domain.Contribution{
		ID:       "contrib-old",
		DriverID: "driver-a",
		Amount:   20,
		PaidAt:   time.Now().AddDate(0, 0, -1),
	})

	_, err := f.queue.Join(ctx, "driver-a", "trike-1")
	if !errors.Is(err, service.ErrNotEligible) {
		t.Errorf("expected ErrNotEligible, got %v", err)
	}
}

func TestQueueJoin_UnapprovedDriverRejected(t *testing.T) {
	ctx := context.Background()
	f := newQueueFixture()

	f.driverRepo.AddDriver(&domain.Driver{
		ID:     "driver-a",
		Status: domain.DriverStatusPendingApproval,
	})

	_, err := f.queue.Join(ctx, "driver-a", "trike-1")
	if !errors.Is(err, service.ErrDriverNotApproved) {
		t.Errorf("expected ErrDriverNotApproved, got %v", err)
	}
}

func TestQueueJoin_UnknownDriverRejected(t *testing.T) {
	ctx := context.Background()
	f := newQueueFixture()

	_, err := f.queue.Join(ctx, "ghost", "trike-1")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestQueueLeave_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newQueueFixture()

	err := f.queue.Leave(ctx, "driver-a")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestQueueJoin_TriggersRematchForWaitingBooking(t *testing.T) {
	ctx := context.Background()
	f := newQueueFixture()
	lf := newLifecycleFixture()

	matching := service.NewMatchingService(
		f.queueRepo, lf.bookingRepo, lf.lifecycle, f.lock, f.publisher, testLogger(),
	)
	f.queue.SetMatcher(matching)

	booking, err := lf.lifecycle.Create(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	f.addApprovedDriver("driver-a")
	if _, err := f.queue.Join(ctx, "driver-a", ""); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	// The waiting booking was matched by the join, draining the queue.
	stored := lf.bookingRepo.GetBooking(booking.ID)
	if stored.Status != domain.BookingStatusAccepted {
		t.Fatalf("expected ACCEPTED after join, got %s", stored.Status)
	}
	if stored.DriverID != "driver-a" {
		t.Errorf("expected driver-a assigned, got %s", stored.DriverID)
	}
	entries, _ := f.queue.Snapshot(ctx)
	if len(entries) != 0 {
		t.Errorf("expected an empty queue, got %d entries", len(entries))
	}
}

func TestQueuePeekFirst_DoesNotMutate(t *testing.T) {
	ctx := context.Background()
	f := newQueueFixture()
	f.addApprovedDriver("driver-a")

	if _, err := f.queue.Join(ctx, "driver-a", ""); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	head, err := f.queue.PeekFirst(ctx)
	if err != nil {
		t.Fatalf("peek failed: %v", err)
	}
	if head == nil || head.DriverID != "driver-a" {
		t.Fatalf("expected driver-a at head, got %+v", head)
	}

	entries, _ := f.queue.Snapshot(ctx)
	if len(entries) != 1 {
		t.Errorf("peek must not remove the entry, queue has %d", len(entries))
	}
}

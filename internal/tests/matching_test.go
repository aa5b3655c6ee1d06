package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trike/internal/domain"
	"trike/internal/repository"
	"trike/internal/service"
)

type matchingFixture struct {
	*lifecycleFixture
	queueRepo *MockQueueRepository
	lock      *MockQueueLock
	matching  *service.MatchingService
}

func newMatchingFixture() *matchingFixture {
	lf := newLifecycleFixture()
	queueRepo := NewMockQueueRepository()
	lock := NewMockQueueLock()
	matching := service.NewMatchingService(
		queueRepo, lf.bookingRepo, lf.lifecycle, lock, lf.publisher, testLogger(),
	)
	return &matchingFixture{
		lifecycleFixture: lf,
		queueRepo:        queueRepo,
		lock:             lock,
		matching:         matching,
	}
}

func enqueueDriver(t *testing.T, repo *MockQueueRepository, driverID string) {
	t.Helper()
	err := repo.Join(context.Background(), &domain.QueueEntry{
		DriverID:  driverID,
		VehicleID: "trike-" + driverID,
		PaidToday: true,
		JoinedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("enqueue %s failed: %v", driverID, err)
	}
}

func TestAttemptMatch_AssignsQueueHead(t *testing.T) {
	ctx := context.Background()
	f := newMatchingFixture()

	// A joins before B.
	enqueueDriver(t, f.queueRepo, "driver-a")
	enqueueDriver(t, f.queueRepo, "driver-b")

	booking, err := f.lifecycle.Create(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	result, err := f.matching.AttemptMatch(ctx, booking.ID)
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}

	if !result.Matched || result.DriverID != "driver-a" {
		t.Fatalf("expected driver-a to match, got %+v", result)
	}
	if result.Booking.Status != domain.BookingStatusAccepted {
		t.Errorf("expected ACCEPTED, got %s", result.Booking.Status)
	}
	if result.Booking.DriverID != "driver-a" {
		t.Errorf("expected assigned driver-a, got %s", result.Booking.DriverID)
	}

	// Only B remains.
	entries, _ := f.queueRepo.Snapshot(ctx)
	if len(entries) != 1 || entries[0].DriverID != "driver-b" {
		t.Errorf("expected only driver-b queued, got %+v", entries)
	}
}

func TestAttemptMatch_EmptyQueueLeavesPending(t *testing.T) {
	ctx := context.Background()
	f := newMatchingFixture()

	booking, _ := f.lifecycle.Create(ctx, validCreateRequest())

	result, err := f.matching.AttemptMatch(ctx, booking.ID)
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if result.Matched {
		t.Fatal("expected no match on an empty queue")
	}

	stored := f.bookingRepo.GetBooking(booking.ID)
	if stored.Status != domain.BookingStatusPending {
		t.Errorf("expected booking to stay PENDING, got %s", stored.Status)
	}
}

func TestAttemptMatch_StaleBookingRestoresDriverToFront(t *testing.T) {
	ctx := context.Background()
	f := newMatchingFixture()

	enqueueDriver(t, f.queueRepo, "driver-a")
	enqueueDriver(t, f.queueRepo, "driver-b")

	booking, _ := f.lifecycle.Create(ctx, validCreateRequest())
	if _, err := f.lifecycle.Cancel(ctx, service.CancelRequest{
		BookingID: booking.ID,
		ActorID:   "customer-1",
		Role:      domain.ActorCustomer,
	}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	_, err := f.matching.AttemptMatch(ctx, booking.ID)
	if !errors.Is(err, repository.ErrStaleState) {
		t.Fatalf("expected ErrStaleState, got %v", err)
	}

	// The dequeued driver is back at the head, original order preserved.
	entries, _ := f.queueRepo.Snapshot(ctx)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].DriverID != "driver-a" || entries[1].DriverID != "driver-b" {
		t.Errorf("expected order [driver-a driver-b], got [%s %s]", entries[0].DriverID, entries[1].DriverID)
	}
	if f.queueRepo.RequeueFrontCallCount != 1 {
		t.Errorf("expected 1 front requeue, got %d", f.queueRepo.RequeueFrontCallCount)
	}
}

func TestAttemptMatch_QueueLockBusy(t *testing.T) {
	ctx := context.Background()
	f := newMatchingFixture()

	booking, _ := f.lifecycle.Create(ctx, validCreateRequest())

	// Another worker holds the queue mutex.
	if ok, _ := f.lock.Acquire(ctx, time.Second); !ok {
		t.Fatal("setup: could not pre-acquire lock")
	}

	_, err := f.matching.AttemptMatch(ctx, booking.ID)
	if !errors.Is(err, service.ErrQueueBusy) {
		t.Errorf("expected ErrQueueBusy, got %v", err)
	}
}

func TestDequeueFirst_ConcurrentCallersNeverShareAnEntry(t *testing.T) {
	ctx := context.Background()
	queueRepo := NewMockQueueRepository()

	const drivers = 20
	for i := 0; i < drivers; i++ {
		enqueueDriver(t, queueRepo, string(rune('a'+i)))
	}

	var mu sync.Mutex
	seen := make(map[string]int)

	var wg sync.WaitGroup
	for i := 0; i < drivers*2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := queueRepo.DequeueFirst(ctx)
			if err != nil || entry == nil {
				return
			}
			mu.Lock()
			seen[entry.DriverID]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != drivers {
		t.Errorf("expected %d distinct dequeues, got %d", drivers, len(seen))
	}
	for driverID, count := range seen {
		if count != 1 {
			t.Errorf("driver %s dequeued %d times", driverID, count)
		}
	}
}

func TestMatchOldestPending_PairsInCreationOrder(t *testing.T) {
	ctx := context.Background()
	f := newMatchingFixture()

	first, err := f.lifecycle.Create(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	secondReq := validCreateRequest()
	secondReq.CustomerID = "customer-2"
	second, err := f.lifecycle.Create(ctx, secondReq)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// One driver for two bookings: the older booking wins.
	enqueueDriver(t, f.queueRepo, "driver-a")

	matched, err := f.matching.MatchOldestPending(ctx)
	if err != nil {
		t.Fatalf("match oldest failed: %v", err)
	}
	if matched != 1 {
		t.Fatalf("expected 1 match, got %d", matched)
	}

	if got := f.bookingRepo.GetBooking(first.ID).Status; got != domain.BookingStatusAccepted {
		t.Errorf("expected the older booking ACCEPTED, got %s", got)
	}
	if got := f.bookingRepo.GetBooking(second.ID).Status; got != domain.BookingStatusPending {
		t.Errorf("expected the newer booking to stay PENDING, got %s", got)
	}
}

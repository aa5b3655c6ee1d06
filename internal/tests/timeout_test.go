package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"trike/internal/domain"
	"trike/internal/service"
)

func TestAutoCancel_FiresOnceAndSetsReason(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	booking, err := f.lifecycle.Create(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	f.scheduler.Fire(booking.ID)

	stored := f.bookingRepo.GetBooking(booking.ID)
	if stored.Status != domain.BookingStatusCancelled {
		t.Fatalf("expected CANCELLED after timeout, got %s", stored.Status)
	}
	if stored.CancelledBy != string(domain.ActorSystem) {
		t.Errorf("expected system actor, got %s", stored.CancelledBy)
	}
	if stored.CancelReason != "no drivers available, request cancelled" {
		t.Errorf("unexpected cancel reason: %q", stored.CancelReason)
	}
	if len(f.notifier.Cancellations) != 1 || f.notifier.Cancellations[0] != "customer-1" {
		t.Errorf("expected the customer to be notified, got %v", f.notifier.Cancellations)
	}
}

func TestAutoCancel_ConcurrentFiresCommitOnce(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	booking, err := f.lifecycle.Create(ctx, validCreateRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Capture the callback once, then run it from many goroutines to
	// simulate racing timeout checks. The compare-and-set must admit
	// exactly one cancel.
	fire := f.scheduler.Callback(booking.ID)
	if fire == nil {
		t.Fatal("expected a scheduled timer")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fire()
		}()
	}
	wg.Wait()

	stored := f.bookingRepo.GetBooking(booking.ID)
	if stored.Status != domain.BookingStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", stored.Status)
	}
	// Exactly one CANCELLED event reaches the stream.
	cancelledEvents := 0
	for _, status := range f.publisher.PublishedStatuses() {
		if status == domain.BookingStatusCancelled {
			cancelledEvents++
		}
	}
	if cancelledEvents != 1 {
		t.Errorf("expected exactly 1 cancelled event, got %d", cancelledEvents)
	}
}

func TestCustomerCancelThenTimeout_IsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	booking, _ := f.lifecycle.Create(ctx, validCreateRequest())

	// Grab the timer callback before the cancel removes it, simulating a
	// timeout already in flight.
	if _, err := f.lifecycle.Cancel(ctx, service.CancelRequest{
		BookingID: booking.ID,
		ActorID:   "customer-1",
		Role:      domain.ActorCustomer,
		Reason:    "found another ride",
	}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// The timer was deregistered; firing is a no-op either way.
	f.scheduler.Fire(booking.ID)

	stored := f.bookingRepo.GetBooking(booking.ID)
	if stored.CancelledBy != "customer-1" {
		t.Errorf("timeout must not overwrite the customer cancel, got by=%s", stored.CancelledBy)
	}
	if stored.CancelReason != "found another ride" {
		t.Errorf("unexpected reason: %q", stored.CancelReason)
	}
}

func TestMatchThenTimeout_IsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newLifecycleFixture()

	booking, _ := f.lifecycle.Create(ctx, validCreateRequest())

	// Keep a handle to the callback, then accept before it fires.
	fired := f.scheduler.Pending(booking.ID)
	if !fired {
		t.Fatal("expected a scheduled timer")
	}
	if _, err := f.lifecycle.Accept(ctx, booking.ID, "driver-1", "trike-7"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	f.scheduler.Fire(booking.ID)

	stored := f.bookingRepo.GetBooking(booking.ID)
	if stored.Status != domain.BookingStatusAccepted {
		t.Errorf("a late timeout must not cancel an accepted booking, got %s", stored.Status)
	}
}

func TestTimerScheduler_FiresAfterDelay(t *testing.T) {
	scheduler := service.NewTimerScheduler()
	defer scheduler.Stop()

	fired := make(chan struct{})
	scheduler.Schedule("booking-1", 10*time.Millisecond, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestTimerScheduler_CancelPreventsFire(t *testing.T) {
	scheduler := service.NewTimerScheduler()
	defer scheduler.Stop()

	fired := make(chan struct{}, 1)
	scheduler.Schedule("booking-1", 20*time.Millisecond, func() {
		fired <- struct{}{}
	})
	scheduler.Cancel("booking-1")

	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTimerScheduler_RescheduleReplacesTimer(t *testing.T) {
	scheduler := service.NewTimerScheduler()
	defer scheduler.Stop()

	var mu sync.Mutex
	var order []string

	scheduler.Schedule("booking-1", 20*time.Millisecond, func() {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	})
	scheduler.Schedule("booking-1", 40*time.Millisecond, func() {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
	})

	time.Sleep(120 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 1 || order[0] != "second" {
		t.Errorf("expected only the replacement to fire, got %v", order)
	}
}

package service

import (
	"sync"
	"time"
)

// TimeoutScheduler defines the delayed-task contract used for pending
// auto-cancel. Schedule replaces any timer already registered for the
// same booking; Cancel is a no-op for unknown bookings.
type TimeoutScheduler interface {
	Schedule(bookingID string, delay time.Duration, fire func())
	Cancel(bookingID string)
}

// TimerScheduler is a TimeoutScheduler backed by one cancellable
// time.Timer per booking. The timer removes itself from the registry
// before firing, so a booking never leaks a blocked waiter.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewTimerScheduler creates a new TimerScheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[string]*time.Timer)}
}

// Schedule registers fire to run after delay, keyed by booking ID.
func (s *TimerScheduler) Schedule(bookingID string, delay time.Duration, fire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[bookingID]; ok {
		t.Stop()
	}

	s.timers[bookingID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, bookingID)
		s.mu.Unlock()
		fire()
	})
}

// Cancel stops the booking's timer, if still pending.
func (s *TimerScheduler) Cancel(bookingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[bookingID]; ok {
		t.Stop()
		delete(s.timers, bookingID)
	}
}

// Stop cancels every outstanding timer. Used at shutdown.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

var _ TimeoutScheduler = (*TimerScheduler)(nil)

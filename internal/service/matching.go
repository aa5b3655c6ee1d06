package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"trike/internal/domain"
	"trike/internal/observability"
	internalRedis "trike/internal/redis"
	"trike/internal/repository"
)

const defaultQueueLockTTL = 5 * time.Second

// MatchResult contains the outcome of a match attempt.
type MatchResult struct {
	Matched  bool
	DriverID string
	Booking  *domain.Booking
}

// MatchingService pairs PENDING bookings with the head of the driver
// queue. The dequeue and the booking's PENDING→ACCEPTED flip form one
// logical unit: if the accept is rejected, the dequeued driver is
// restored to the front of the queue so the race costs them nothing.
type MatchingService struct {
	queueRepo   repository.QueueRepository
	bookingRepo repository.BookingRepository
	lifecycle   *LifecycleService
	lock        internalRedis.QueueLockInterface
	publisher   ChangePublisher
	logger      *slog.Logger
	lockTTL     time.Duration
}

// NewMatchingService creates a new MatchingService.
func NewMatchingService(
	queueRepo repository.QueueRepository,
	bookingRepo repository.BookingRepository,
	lifecycle *LifecycleService,
	lock internalRedis.QueueLockInterface,
	publisher ChangePublisher,
	logger *slog.Logger,
) *MatchingService {
	return &MatchingService{
		queueRepo:   queueRepo,
		bookingRepo: bookingRepo,
		lifecycle:   lifecycle,
		lock:        lock,
		publisher:   publisher,
		logger:      logger,
		lockTTL:     defaultQueueLockTTL,
	}
}

// SetLockTTL overrides the queue mutex TTL. Zero or negative keeps the
// default.
func (s *MatchingService) SetLockTTL(ttl time.Duration) {
	if ttl > 0 {
		s.lockTTL = ttl
	}
}

// AttemptMatch tries to pair one booking with the queue head. An empty
// queue leaves the booking PENDING for a later retry; that is not an
// error. A booking that left PENDING in the race window returns
// repository.ErrStaleState after the dequeued driver has been restored
// to the front.
func (s *MatchingService) AttemptMatch(ctx context.Context, bookingID string) (*MatchResult, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	locked, err := s.lock.Acquire(ctx, s.lockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrQueueBusy
	}
	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			s.logger.WarnContext(ctx, "queue lock release failed", "error", err)
		}
	}()

	entry, err := s.queueRepo.DequeueFirst(ctx)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return &MatchResult{Matched: false}, nil
	}

	booking, err := s.lifecycle.Accept(ctx, bookingID, entry.DriverID, entry.VehicleID)
	if err != nil {
		s.restoreToFront(ctx, entry)
		if errors.Is(err, repository.ErrStaleState) || errors.Is(err, repository.ErrNotFound) {
			observability.MatchFailures.Inc()
		}
		return nil, err
	}

	observability.Matches.Inc()
	s.publishQueue(ctx)

	return &MatchResult{
		Matched:  true,
		DriverID: entry.DriverID,
		Booking:  booking,
	}, nil
}

// MatchOldestPending walks unmatched PENDING bookings oldest-first,
// pairing each with the queue head until the queue runs dry. Bookings
// that resolved in the meantime are skipped. Returns the match count.
func (s *MatchingService) MatchOldestPending(ctx context.Context) (int, error) {
	pending, err := s.bookingRepo.ListPendingUnassigned(ctx)
	if err != nil {
		return 0, err
	}

	matched := 0
	for _, booking := range pending {
		result, err := s.AttemptMatch(ctx, booking.ID)
		if err != nil {
			if errors.Is(err, repository.ErrStaleState) || errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return matched, err
		}
		if !result.Matched {
			break
		}
		matched++
	}

	return matched, nil
}

// restoreToFront is the compensating half of a failed match commit: the
// driver goes back ahead of the current head, preserving their original
// position.
func (s *MatchingService) restoreToFront(ctx context.Context, entry *domain.QueueEntry) {
	if err := s.queueRepo.RequeueFront(ctx, entry); err != nil {
		// The driver would otherwise silently lose their place.
		s.logger.ErrorContext(ctx, "front requeue failed",
			"driver_id", entry.DriverID,
			"error", err,
		)
		return
	}
	s.publishQueue(ctx)
}

func (s *MatchingService) publishQueue(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	entries, err := s.queueRepo.Snapshot(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "queue snapshot failed", "error", err)
		return
	}
	observability.QueueDepth.Set(float64(len(entries)))
	if err := s.publisher.PublishQueue(ctx, entries); err != nil {
		s.logger.WarnContext(ctx, "queue publish failed", "error", err)
	}
}

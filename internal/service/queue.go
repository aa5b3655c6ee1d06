package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"trike/internal/domain"
	"trike/internal/observability"
	internalRedis "trike/internal/redis"
	"trike/internal/repository"
)

// ContributionGate decides whether a driver may enter the queue for the
// current period.
type ContributionGate interface {
	IsEligible(ctx context.Context, driverID string, date time.Time) (bool, error)
}

// Rematcher retries matching when queue supply changes.
type Rematcher interface {
	MatchOldestPending(ctx context.Context) (int, error)
}

// QueueService manages the FIFO roster of available drivers. Mutations
// are serialized through the shared queue lock so membership checks and
// inserts cannot interleave across processes.
type QueueService struct {
	queueRepo  repository.QueueRepository
	driverRepo repository.DriverRepository
	gate       ContributionGate
	lock       internalRedis.QueueLockInterface
	matcher    Rematcher
	publisher  ChangePublisher
	logger     *slog.Logger
	lockTTL    time.Duration
}

// NewQueueService creates a new QueueService. The matcher is optional;
// when set, every successful join retries pending bookings.
func NewQueueService(
	queueRepo repository.QueueRepository,
	driverRepo repository.DriverRepository,
	gate ContributionGate,
	lock internalRedis.QueueLockInterface,
	publisher ChangePublisher,
	logger *slog.Logger,
) *QueueService {
	return &QueueService{
		queueRepo:  queueRepo,
		driverRepo: driverRepo,
		gate:       gate,
		lock:       lock,
		publisher:  publisher,
		logger:     logger,
		lockTTL:    defaultQueueLockTTL,
	}
}

// SetLockTTL overrides the queue mutex TTL. Zero or negative keeps the
// default.
func (s *QueueService) SetLockTTL(ttl time.Duration) {
	if ttl > 0 {
		s.lockTTL = ttl
	}
}

// SetMatcher wires the join-triggered rematch. Separate from the
// constructor because the matcher and queue service reference each other
// indirectly at assembly time.
func (s *QueueService) SetMatcher(matcher Rematcher) {
	s.matcher = matcher
}

// Join puts an approved, dues-paid driver at the back of the queue.
func (s *QueueService) Join(ctx context.Context, driverID, vehicleID string) (*domain.QueueEntry, error) {
	if strings.TrimSpace(driverID) == "" {
		return nil, ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver.Status != domain.DriverStatusApproved {
		return nil, ErrDriverNotApproved
	}
	if vehicleID == "" {
		vehicleID = driver.VehicleID
	}

	eligible, err := s.gate.IsEligible(ctx, driverID, time.Now())
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, ErrNotEligible
	}

	entry := &domain.QueueEntry{
		DriverID:  driverID,
		VehicleID: vehicleID,
		PaidToday: true,
		JoinedAt:  time.Now(),
	}

	if err := s.withLock(ctx, func() error {
		member, err := s.queueRepo.IsMember(ctx, driverID)
		if err != nil {
			return err
		}
		if member {
			return ErrAlreadyQueued
		}
		if err := s.queueRepo.Join(ctx, entry); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrAlreadyQueued
			}
			return err
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.publishSnapshot(ctx)

	// New supply may satisfy a waiting booking. Best-effort; the booking
	// keeps its own timeout either way.
	if s.matcher != nil {
		if _, err := s.matcher.MatchOldestPending(ctx); err != nil && !errors.Is(err, ErrQueueBusy) {
			s.logger.WarnContext(ctx, "rematch after join failed", "driver_id", driverID, "error", err)
		}
	}

	return entry, nil
}

// Leave removes the driver from the queue.
func (s *QueueService) Leave(ctx context.Context, driverID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	if err := s.withLock(ctx, func() error {
		return s.queueRepo.Leave(ctx, driverID)
	}); err != nil {
		return err
	}

	s.publishSnapshot(ctx)
	return nil
}

// PeekFirst returns the queue head without mutating.
func (s *QueueService) PeekFirst(ctx context.Context) (*domain.QueueEntry, error) {
	return s.queueRepo.PeekFirst(ctx)
}

// IsMember reports whether the driver is enqueued.
func (s *QueueService) IsMember(ctx context.Context, driverID string) (bool, error) {
	return s.queueRepo.IsMember(ctx, driverID)
}

// Snapshot returns the queue in order for admin display.
func (s *QueueService) Snapshot(ctx context.Context) ([]*domain.QueueEntry, error) {
	return s.queueRepo.Snapshot(ctx)
}

func (s *QueueService) withLock(ctx context.Context, fn func() error) error {
	locked, err := s.lock.Acquire(ctx, s.lockTTL)
	if err != nil {
		return err
	}
	if !locked {
		return ErrQueueBusy
	}
	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			s.logger.WarnContext(ctx, "queue lock release failed", "error", err)
		}
	}()

	return fn()
}

func (s *QueueService) publishSnapshot(ctx context.Context) {
	entries, err := s.queueRepo.Snapshot(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "queue snapshot failed", "error", err)
		return
	}
	observability.QueueDepth.Set(float64(len(entries)))
	if s.publisher != nil {
		if err := s.publisher.PublishQueue(ctx, entries); err != nil {
			s.logger.WarnContext(ctx, "queue publish failed", "error", err)
		}
	}
}

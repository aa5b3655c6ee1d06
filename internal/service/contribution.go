package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/repository"
)

// SummaryCacheInterface caches computed contribution summaries.
type SummaryCacheInterface interface {
	Get(ctx context.Context, driverID string) (*domain.ContributionSummary, error)
	Set(ctx context.Context, summary *domain.ContributionSummary) error
	Invalidate(ctx context.Context, driverID string) error
}

// ContributionService manages the driver dues ledger: queue eligibility,
// payment recording, and the derived summary shown to drivers. All period
// boundaries (day, week, month) use local time.
type ContributionService struct {
	contribRepo repository.ContributionRepository
	cache       SummaryCacheInterface
	logger      *slog.Logger
	now         func() time.Time
}

// NewContributionService creates a new ContributionService. A nil cache
// disables summary caching.
func NewContributionService(
	contribRepo repository.ContributionRepository,
	cache SummaryCacheInterface,
	logger *slog.Logger,
) *ContributionService {
	return &ContributionService{
		contribRepo: contribRepo,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
	}
}

// IsEligible reports whether the driver has a qualifying payment for the
// given date's local day.
func (s *ContributionService) IsEligible(ctx context.Context, driverID string, date time.Time) (bool, error) {
	if driverID == "" {
		return false, ErrInvalidDriverID
	}

	dayStart := startOfDay(date)
	contributions, err := s.contribRepo.ListByDriver(ctx, driverID, dayStart)
	if err != nil {
		return false, err
	}

	dayEnd := dayStart.Add(24 * time.Hour)
	for _, c := range contributions {
		if !c.PaidAt.Before(dayStart) && c.PaidAt.Before(dayEnd) {
			return true, nil
		}
	}

	return false, nil
}

// Record appends a dues payment to the ledger.
func (s *ContributionService) Record(ctx context.Context, driverID string, amount float64) (*domain.Contribution, error) {
	if strings.TrimSpace(driverID) == "" {
		return nil, ErrInvalidDriverID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	contribution := &domain.Contribution{
		ID:       uuid.New().String(),
		DriverID: driverID,
		Amount:   amount,
		PaidAt:   s.now(),
	}

	if err := s.contribRepo.Create(ctx, contribution); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, driverID); err != nil {
			s.logger.WarnContext(ctx, "summary cache invalidate failed", "driver_id", driverID, "error", err)
		}
	}

	return contribution, nil
}

// Summary recomputes the driver's aggregate view from the raw ledger.
// Results are cached best-effort; the ledger stays the source of truth.
func (s *ContributionService) Summary(ctx context.Context, driverID string) (*domain.ContributionSummary, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, driverID); err == nil && cached != nil {
			return cached, nil
		}
	}

	contributions, err := s.contribRepo.ListByDriver(ctx, driverID, time.Time{})
	if err != nil {
		return nil, err
	}

	summary := s.computeSummary(driverID, contributions)

	if s.cache != nil {
		if err := s.cache.Set(ctx, summary); err != nil {
			s.logger.WarnContext(ctx, "summary cache set failed", "driver_id", driverID, "error", err)
		}
	}

	return summary, nil
}

func (s *ContributionService) computeSummary(driverID string, contributions []*domain.Contribution) *domain.ContributionSummary {
	now := s.now()
	dayStart := startOfDay(now)
	weekStart := startOfWeek(now)
	monthStart := startOfMonth(now)
	windowStart := now.AddDate(0, 0, -30)

	summary := &domain.ContributionSummary{
		DriverID: driverID,
		Count:    len(contributions),
	}

	var windowTotal float64
	for _, c := range contributions {
		summary.Total += c.Amount
		if !c.PaidAt.Before(dayStart) {
			summary.Today += c.Amount
		}
		if !c.PaidAt.Before(weekStart) {
			summary.ThisWeek += c.Amount
		}
		if !c.PaidAt.Before(monthStart) {
			summary.ThisMonth += c.Amount
		}
		if !c.PaidAt.Before(windowStart) {
			windowTotal += c.Amount
		}
	}
	summary.Average30Days = round2(windowTotal / 30)
	summary.StreakDays = streakDays(contributions)

	return summary
}

// streakDays walks distinct contribution dates newest-first and counts
// consecutive days, stopping at the first gap longer than one day.
func streakDays(contributions []*domain.Contribution) int {
	if len(contributions) == 0 {
		return 0
	}

	var days []time.Time
	seen := make(map[time.Time]bool)
	for _, c := range contributions {
		day := startOfDay(c.PaidAt)
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}

	// The ledger arrives newest-first, so distinct days already descend.
	streak := 1
	for i := 1; i < len(days); i++ {
		if !days[i-1].AddDate(0, 0, -1).Equal(days[i]) {
			break
		}
		streak++
	}

	return streak
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the local Monday 00:00 of t's week.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Ensure the gate contract is satisfied.
var _ ContributionGate = (*ContributionService)(nil)

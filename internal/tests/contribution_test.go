package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"trike/internal/domain"
	"trike/internal/service"
)

func TestRecordContribution_Validation(t *testing.T) {
	ctx := context.Background()
	contribRepo := NewMockContributionRepository()
	svc := service.NewContributionService(contribRepo, nil, testLogger())

	if _, err := svc.Record(ctx, "  ", 20); !errors.Is(err, service.ErrInvalidDriverID) {
		t.Errorf("expected ErrInvalidDriverID, got %v", err)
	}
	if _, err := svc.Record(ctx, "driver-a", 0); !errors.Is(err, service.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.Record(ctx, "driver-a", -5); !errors.Is(err, service.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestRecordContribution_InvalidatesCachedSummary(t *testing.T) {
	ctx := context.Background()
	contribRepo := NewMockContributionRepository()
	cache := NewMockSummaryCache()
	svc := service.NewContributionService(contribRepo, cache, testLogger())

	if _, err := svc.Record(ctx, "driver-a", 20); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	// First summary computes and caches; the second is served from cache.
	if _, err := svc.Summary(ctx, "driver-a"); err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if _, err := svc.Summary(ctx, "driver-a"); err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if cache.HitCount != 1 {
		t.Errorf("expected 1 cache hit, got %d", cache.HitCount)
	}

	// A new payment invalidates the cached view.
	if _, err := svc.Record(ctx, "driver-a", 20); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	summary, err := svc.Summary(ctx, "driver-a")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.Count != 2 {
		t.Errorf("expected recomputed count 2, got %d", summary.Count)
	}
}

func TestIsEligible_RequiresPaymentToday(t *testing.T) {
	ctx := context.Background()
	contribRepo := NewMockContributionRepository()
	svc := service.NewContributionService(contribRepo, nil, testLogger())
	now := time.Now()

	eligible, err := svc.IsEligible(ctx, "driver-a", now)
	if err != nil {
		t.Fatalf("eligibility check failed: %v", err)
	}
	if eligible {
		t.Error("expected ineligible with an empty ledger")
	}

	// Yesterday's payment does not count for today.
	contribRepo.AddContribution(&domain.Contribution{
		ID: "c1", DriverID: "driver-a", Amount: 20, PaidAt: now.AddDate(0, 0, -1),
	})
	eligible, _ = svc.IsEligible(ctx, "driver-a", now)
	if eligible {
		t.Error("expected yesterday's payment to be insufficient")
	}

	contribRepo.AddContribution(&domain.Contribution{
		ID: "c2", DriverID: "driver-a", Amount: 20, PaidAt: now,
	})
	eligible, _ = svc.IsEligible(ctx, "driver-a", now)
	if !eligible {
		t.Error("expected eligible after a same-day payment")
	}
}

func TestSummary_StreakStopsAtFirstGap(t *testing.T) {
	ctx := context.Background()
	contribRepo := NewMockContributionRepository()
	svc := service.NewContributionService(contribRepo, nil, testLogger())
	now := time.Now()

	// Payments today, yesterday, two days ago, then a gap, then one more.
	for i, daysAgo := range []int{0, 1, 2, 4} {
		contribRepo.AddContribution(&domain.Contribution{
			ID:       string(rune('a' + i)),
			DriverID: "driver-a",
			Amount:   20,
			PaidAt:   now.AddDate(0, 0, -daysAgo),
		})
	}

	summary, err := svc.Summary(ctx, "driver-a")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.StreakDays != 3 {
		t.Errorf("expected streak 3, got %d", summary.StreakDays)
	}
}

func TestSummary_MultiplePaymentsSameDayCountOnceForStreak(t *testing.T) {
	ctx := context.Background()
	contribRepo := NewMockContributionRepository()
	svc := service.NewContributionService(contribRepo, nil, testLogger())
	now := time.Now()

	contribRepo.AddContribution(&domain.Contribution{
		ID: "c1", DriverID: "driver-a", Amount: 10, PaidAt: now,
	})
	contribRepo.AddContribution(&domain.Contribution{
		ID: "c2", DriverID: "driver-a", Amount: 10, PaidAt: now.Add(-time.Hour),
	})
	contribRepo.AddContribution(&domain.Contribution{
		ID: "c3", DriverID: "driver-a", Amount: 10, PaidAt: now.AddDate(0, 0, -1),
	})

	summary, err := svc.Summary(ctx, "driver-a")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.StreakDays != 2 {
		t.Errorf("expected streak 2, got %d", summary.StreakDays)
	}
	if summary.Count != 3 {
		t.Errorf("expected count 3, got %d", summary.Count)
	}
	if summary.Today != 20 {
		t.Errorf("expected 20 paid today, got %.2f", summary.Today)
	}
}

func TestSummary_PeriodTotalsAndAverage(t *testing.T) {
	ctx := context.Background()
	contribRepo := NewMockContributionRepository()
	svc := service.NewContributionService(contribRepo, nil, testLogger())
	now := time.Now()

	contribRepo.AddContribution(&domain.Contribution{
		ID: "c1", DriverID: "driver-a", Amount: 30, PaidAt: now,
	})
	// Outside the 30-day window, still part of the lifetime total.
	contribRepo.AddContribution(&domain.Contribution{
		ID: "c2", DriverID: "driver-a", Amount: 45, PaidAt: now.AddDate(0, 0, -40),
	})

	summary, err := svc.Summary(ctx, "driver-a")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.Total != 75 {
		t.Errorf("expected lifetime total 75, got %.2f", summary.Total)
	}
	if summary.Today != 30 {
		t.Errorf("expected 30 today, got %.2f", summary.Today)
	}
	// Only the recent payment falls inside the 30-day average window.
	if summary.Average30Days != 1.0 {
		t.Errorf("expected 30-day average 1.00, got %.2f", summary.Average30Days)
	}
}

func TestSummary_EmptyLedger(t *testing.T) {
	ctx := context.Background()
	contribRepo := NewMockContributionRepository()
	svc := service.NewContributionService(contribRepo, nil, testLogger())

	summary, err := svc.Summary(ctx, "driver-a")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.Count != 0 || summary.Total != 0 || summary.StreakDays != 0 {
		t.Errorf("expected a zero summary, got %+v", summary)
	}
}

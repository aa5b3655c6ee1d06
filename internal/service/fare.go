package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/repository"
)

const (
	// repositionRatePerKm is charged per kilometer the driver must travel
	// beyond the first to reach the pickup point.
	repositionRatePerKm = 5.0

	convenienceFeeFull    = 2.0
	convenienceFeeStudent = 1.0
)

// DefaultTariffs returns the built-in tariff configuration used until an
// admin stores an override.
func DefaultTariffs() map[domain.TripType]domain.TariffConfig {
	return map[domain.TripType]domain.TariffConfig{
		domain.TripTypeRegular: {Tier: domain.TripTypeRegular, BaseFare: 20.0, PerKmRate: 8.0},
		domain.TripTypeSpecial: {Tier: domain.TripTypeSpecial, BaseFare: 25.0, PerKmRate: 10.0},
	}
}

// FareService computes trip quotes and manages the per-tier tariff
// configuration with an audited change history.
type FareService struct {
	configRepo repository.FareConfigRepository
	audit      *AuditService
}

// NewFareService creates a new FareService.
func NewFareService(configRepo repository.FareConfigRepository, audit *AuditService) *FareService {
	return &FareService{
		configRepo: configRepo,
		audit:      audit,
	}
}

// QuoteRequest contains the parameters for a fare quote.
type QuoteRequest struct {
	TripType         domain.TripType
	DistanceKm       float64
	DriverToPickupKm float64
	Discount         domain.DiscountClass
	DiscountVerified bool
}

// Quote computes the price for one trip.
//
// The base fare covers the first kilometer; distance beyond that is
// charged at the tier's per-km rate, pro-rated for fractions. A
// repositioning surcharge applies when the driver starts more than one
// kilometer from pickup. Intermediate math keeps full float precision;
// only the final total is rounded to two decimals.
func (s *FareService) Quote(ctx context.Context, req QuoteRequest) (*domain.FareQuote, error) {
	if req.DistanceKm < 0 || req.DriverToPickupKm < 0 {
		return nil, ErrInvalidDistance
	}

	config, err := s.tariff(ctx, req.TripType)
	if err != nil {
		return nil, err
	}

	distanceCharge := 0.0
	if req.DistanceKm > 1 {
		distanceCharge = (req.DistanceKm - 1) * config.PerKmRate
	}

	surcharge := 0.0
	if req.DriverToPickupKm > 1 {
		surcharge = (req.DriverToPickupKm - 1) * repositionRatePerKm
	}

	fee := convenienceFee(req.Discount, req.DiscountVerified)

	total := config.BaseFare + distanceCharge + surcharge + fee

	return &domain.FareQuote{
		Tier:                config.Tier,
		BaseFare:            config.BaseFare,
		DistanceCharge:      distanceCharge,
		RepositionSurcharge: surcharge,
		ConvenienceFee:      fee,
		Total:               round2(total),
	}, nil
}

// convenienceFee returns the fixed surcharge for the customer's discount
// class. Unknown classes pay the full fee.
func convenienceFee(class domain.DiscountClass, verified bool) float64 {
	if !verified {
		return convenienceFeeFull
	}
	switch class {
	case domain.DiscountPWD, domain.DiscountSenior:
		return 0
	case domain.DiscountStudent:
		return convenienceFeeStudent
	default:
		return convenienceFeeFull
	}
}

// UpdateTariffRequest contains the parameters for a tariff update.
type UpdateTariffRequest struct {
	Tier      domain.TripType
	BaseFare  float64
	PerKmRate float64
	Reason    string
	AdminID   string
}

// UpdateTariff stores a new tariff for a tier, retaining the old values
// in the change history and emitting an audit record.
func (s *FareService) UpdateTariff(ctx context.Context, req UpdateTariffRequest) (*domain.TariffConfig, error) {
	if req.BaseFare < 0 || req.PerKmRate < 0 {
		return nil, ErrInvalidAmount
	}

	old, err := s.tariff(ctx, req.Tier)
	if err != nil {
		return nil, err
	}

	config := &domain.TariffConfig{
		Tier:      req.Tier,
		BaseFare:  req.BaseFare,
		PerKmRate: req.PerKmRate,
		UpdatedAt: time.Now(),
	}

	if err := s.configRepo.UpsertConfig(ctx, config); err != nil {
		return nil, err
	}

	change := &domain.FareChange{
		ID:           uuid.New().String(),
		Tier:         req.Tier,
		OldBaseFare:  old.BaseFare,
		OldPerKmRate: old.PerKmRate,
		NewBaseFare:  req.BaseFare,
		NewPerKmRate: req.PerKmRate,
		Reason:       req.Reason,
		AdminID:      req.AdminID,
		ChangedAt:    config.UpdatedAt,
	}
	if err := s.configRepo.AppendChange(ctx, change); err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, "fares", "tariff_update", req.AdminID, string(req.Tier), old, config)
	}

	return config, nil
}

// History returns the change history for a tier, newest first.
func (s *FareService) History(ctx context.Context, tier domain.TripType) ([]*domain.FareChange, error) {
	if _, ok := DefaultTariffs()[tier]; !ok {
		return nil, ErrInvalidTripType
	}
	return s.configRepo.ListChanges(ctx, tier)
}

// Tariffs returns the effective tariff for every tier.
func (s *FareService) Tariffs(ctx context.Context) ([]*domain.TariffConfig, error) {
	tiers := []domain.TripType{domain.TripTypeRegular, domain.TripTypeSpecial}
	configs := make([]*domain.TariffConfig, 0, len(tiers))
	for _, tier := range tiers {
		config, err := s.tariff(ctx, tier)
		if err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}
	return configs, nil
}

// tariff loads the stored config for a tier, falling back to defaults
// when no override has been saved yet.
func (s *FareService) tariff(ctx context.Context, tier domain.TripType) (*domain.TariffConfig, error) {
	defaults, ok := DefaultTariffs()[tier]
	if !ok {
		return nil, ErrInvalidTripType
	}

	config, err := s.configRepo.GetConfig(ctx, tier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &defaults, nil
		}
		return nil, err
	}

	return config, nil
}

// round2 rounds a monetary amount to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package repository

import (
	"context"

	"trike/internal/domain"
)

// FareConfigRepository defines the persistence operations for tariff
// configuration and its change history.
type FareConfigRepository interface {
	// GetConfig retrieves the tariff for a tier.
	GetConfig(ctx context.Context, tier domain.TripType) (*domain.TariffConfig, error)

	// UpsertConfig stores the tariff for a tier, inserting or replacing.
	UpsertConfig(ctx context.Context, config *domain.TariffConfig) error

	// AppendChange records one tariff update in the history.
	AppendChange(ctx context.Context, change *domain.FareChange) error

	// ListChanges returns a tier's change history, newest first.
	ListChanges(ctx context.Context, tier domain.TripType) ([]*domain.FareChange, error)
}

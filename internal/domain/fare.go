package domain

import "time"

// TariffConfig holds the configurable fare parameters for one trip tier.
// The base fare covers the first kilometer; distance beyond that is
// charged at PerKmRate per kilometer, pro-rated for fractions.
type TariffConfig struct {
	Tier      TripType
	BaseFare  float64
	PerKmRate float64
	UpdatedAt time.Time
}

// FareChange records one tariff update for audit display.
type FareChange struct {
	ID           string
	Tier         TripType
	OldBaseFare  float64
	OldPerKmRate float64
	NewBaseFare  float64
	NewPerKmRate float64
	Reason       string
	AdminID      string
	ChangedAt    time.Time
}

// FareQuote is the ephemeral price breakdown for one trip request.
type FareQuote struct {
	Tier                TripType
	BaseFare            float64
	DistanceCharge      float64
	RepositionSurcharge float64
	ConvenienceFee      float64
	Total               float64 // rounded to 2 decimal places
}

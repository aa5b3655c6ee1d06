package domain

import "time"

// Contribution is one dues payment in a driver's ledger.
type Contribution struct {
	ID       string
	DriverID string
	Amount   float64
	PaidAt   time.Time
}

// ContributionSummary is a derived aggregate of a driver's dues payments.
// It is recomputed from the ledger on demand, never persisted.
type ContributionSummary struct {
	DriverID      string
	Total         float64
	Today         float64
	ThisWeek      float64
	ThisMonth     float64
	Count         int
	StreakDays    int     // consecutive days with a payment, ending today or yesterday
	Average30Days float64 // total paid over the last 30 days divided by 30
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trike/internal/domain"
)

const summaryTTL = 5 * time.Minute

// SummaryCache stores computed contribution summaries so the ledger is
// not re-aggregated on every driver-facing read.
type SummaryCache struct {
	client *redis.Client
}

// NewSummaryCache creates a new SummaryCache.
func NewSummaryCache(client *redis.Client) *SummaryCache {
	return &SummaryCache{client: client}
}

func summaryKey(driverID string) string {
	return fmt.Sprintf("contrib:summary:%s", driverID)
}

// Get returns the cached summary, or nil on a miss.
func (c *SummaryCache) Get(ctx context.Context, driverID string) (*domain.ContributionSummary, error) {
	data, err := c.client.Get(ctx, summaryKey(driverID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var summary domain.ContributionSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}

	return &summary, nil
}

// Set caches a summary.
func (c *SummaryCache) Set(ctx context.Context, summary *domain.ContributionSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, summaryKey(summary.DriverID), data, summaryTTL).Err()
}

// Invalidate drops a driver's cached summary after a ledger append.
func (c *SummaryCache) Invalidate(ctx context.Context, driverID string) error {
	return c.client.Del(ctx, summaryKey(driverID)).Err()
}

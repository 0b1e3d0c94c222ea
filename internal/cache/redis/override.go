package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// OverrideCache implements domain.OverrideCache with one string key per
// period, TTL-bound so stale overrides for long-resolved periods disappear
// on their own.
type OverrideCache struct {
	rdb *redis.Client
}

// NewOverrideCache creates an OverrideCache backed by the given Client.
func NewOverrideCache(c *Client) *OverrideCache {
	return &OverrideCache{rdb: c.Underlying()}
}

func overrideKey(key domain.PeriodKey, periodID string) string {
	return "override:" + key.String() + ":" + periodID
}

// Set stores an admin-injected outcome for the period.
func (oc *OverrideCache) Set(ctx context.Context, key domain.PeriodKey, periodID string, outcome domain.Outcome, ttl time.Duration) error {
	if err := oc.rdb.Set(ctx, overrideKey(key, periodID), string(outcome), ttl).Err(); err != nil {
		return fmt.Errorf("redis: set override %s/%s: %w", key, periodID, err)
	}
	return nil
}

// Get returns the stored override, if any.
func (oc *OverrideCache) Get(ctx context.Context, key domain.PeriodKey, periodID string) (domain.Outcome, bool, error) {
	val, err := oc.rdb.Get(ctx, overrideKey(key, periodID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis: get override %s/%s: %w", key, periodID, err)
	}
	return domain.Outcome(val), true, nil
}

// Clear removes the override for the period.
func (oc *OverrideCache) Clear(ctx context.Context, key domain.PeriodKey, periodID string) error {
	if err := oc.rdb.Del(ctx, overrideKey(key, periodID)).Err(); err != nil {
		return fmt.Errorf("redis: clear override %s/%s: %w", key, periodID, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.OverrideCache = (*OverrideCache)(nil)

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// EventDedup implements domain.EventDedup with a plain SET NX PX per event
// key: the first claimant within the TTL window wins, and keys self-expire
// so the guard cannot grow unbounded across periods.
type EventDedup struct {
	rdb *redis.Client
}

// NewEventDedup creates an EventDedup backed by the given Client.
func NewEventDedup(c *Client) *EventDedup {
	return &EventDedup{rdb: c.Underlying()}
}

func dedupKey(key string) string {
	return "dedup:" + key
}

// Claim returns true when the caller is the first to claim key within ttl.
func (d *EventDedup) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := d.rdb.SetNX(ctx, dedupKey(key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: dedup claim %s: %w", key, err)
	}
	return ok, nil
}

// Compile-time interface check.
var _ domain.EventDedup = (*EventDedup)(nil)

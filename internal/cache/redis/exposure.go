package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// ExposureLedger implements domain.ExposureLedger with one Redis hash per
// period: field = canonical predicate key, value = cumulative potential
// payout in minor units. Increments are commutative HINCRBY calls, never
// read-modify-write, so concurrent intake cannot lose an update and never
// blocks on resolution work. A parallel set tracks distinct bettor IDs for
// the liquidity signal.
type ExposureLedger struct {
	rdb       *redis.Client
	retention time.Duration
}

// NewExposureLedger creates an ExposureLedger backed by the given Client.
// retention is the TTL applied to per-period keys at first touch so
// abandoned periods cannot leak memory.
func NewExposureLedger(c *Client, retention time.Duration) *ExposureLedger {
	return &ExposureLedger{rdb: c.Underlying(), retention: retention}
}

func exposureKey(key domain.PeriodKey, periodID string) string {
	return "exposure:" + key.String() + ":" + periodID
}

func bettorsKey(key domain.PeriodKey, periodID string) string {
	return "bettors:" + key.String() + ":" + periodID
}

// RecordBet atomically adds the bet's potential payout to its predicate's
// exposure counter and records the bettor. All commands ride one pipeline;
// TTLs are set only if absent so later bets never shorten the window.
func (el *ExposureLedger) RecordBet(ctx context.Context, key domain.PeriodKey, periodID, userID string, predicate domain.BetPredicate, payoutIfWin int64) error {
	ek := exposureKey(key, periodID)
	bk := bettorsKey(key, periodID)

	pipe := el.rdb.TxPipeline()
	pipe.HIncrBy(ctx, ek, predicate.Key(), payoutIfWin)
	pipe.SAdd(ctx, bk, userID)
	pipe.ExpireNX(ctx, ek, el.retention)
	pipe.ExpireNX(ctx, bk, el.retention)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: record bet %s/%s: %w", key, periodID, err)
	}
	return nil
}

// Snapshot returns the full predicate -> exposure map for a period as of the
// call. Fields that fail to parse are skipped; the selector treats their
// exposure as zero.
func (el *ExposureLedger) Snapshot(ctx context.Context, key domain.PeriodKey, periodID string) (map[string]int64, error) {
	vals, err := el.rdb.HGetAll(ctx, exposureKey(key, periodID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: exposure snapshot %s/%s: %w", key, periodID, err)
	}

	snap := make(map[string]int64, len(vals))
	for field, raw := range vals {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		snap[field] = n
	}
	return snap, nil
}

// UniqueBettorCount returns the number of distinct users with accepted bets
// on the period.
func (el *ExposureLedger) UniqueBettorCount(ctx context.Context, key domain.PeriodKey, periodID string) (int, error) {
	n, err := el.rdb.SCard(ctx, bettorsKey(key, periodID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: bettor count %s/%s: %w", key, periodID, err)
	}
	return int(n), nil
}

// Compile-time interface check.
var _ domain.ExposureLedger = (*ExposureLedger)(nil)

package domain

import (
	"context"
	"time"
)

// ExposureLedger accumulates, per period, the potential payout owed for each
// bet predicate. RecordBet must be a plain atomic increment: it never blocks
// on outcome selection or settlement, and concurrent intake never loses an
// update. Snapshot is read-consistent as of the call; it never loses an
// increment accepted before the call returned.
type ExposureLedger interface {
	RecordBet(ctx context.Context, key PeriodKey, periodID, userID string, predicate BetPredicate, payoutIfWin int64) error
	Snapshot(ctx context.Context, key PeriodKey, periodID string) (map[string]int64, error)
	UniqueBettorCount(ctx context.Context, key PeriodKey, periodID string) (int, error)
}

// LockManager provides distributed locking with a TTL so a crashed holder
// cannot permanently wedge a period.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// EventDedup is a self-expiring cross-process duplicate guard. Claim returns
// true when the caller is the first to claim the key within the TTL window.
type EventDedup interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// OverrideCache holds admin-injected outcomes for periods that have not been
// settled yet. Entries self-expire shortly after their period resolves.
type OverrideCache interface {
	Set(ctx context.Context, key PeriodKey, periodID string, outcome Outcome, ttl time.Duration) error
	Get(ctx context.Context, key PeriodKey, periodID string) (Outcome, bool, error)
	Clear(ctx context.Context, key PeriodKey, periodID string) error
}

// RateLimiter bounds request rates per caller key. Allow reports whether the
// caller is within limit events per window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// BusMessage is one delivery from a SignalBus subscription. Channel is the
// concrete originating channel, which differs from the subscription argument
// for pattern subscriptions.
type BusMessage struct {
	Channel string
	Payload []byte
}

// SignalBus provides pub/sub fan-out for lifecycle events. Delivery to any
// given observer is at-least-once; origination dedup is the sequencer's job.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan BusMessage, error)
}

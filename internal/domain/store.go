package domain

import (
	"context"
	"time"
)

// BetStore persists bets. SettleBatch applies one settlement pass inside a
// single transaction: each bet row transitions out of pending at most once
// (guarded update), and winning payouts are credited to the user's balance in
// the same transaction, so a crash mid-pass leaves no bet half-updated and a
// resumed pass cannot re-credit.
type BetStore interface {
	Create(ctx context.Context, bet Bet) error
	GetByID(ctx context.Context, id string) (Bet, error)
	ListPending(ctx context.Context, key PeriodKey, periodID string) ([]Bet, error)
	SettleBatch(ctx context.Context, settled []SettledBet) (applied int, err error)
	ListSettledBefore(ctx context.Context, before time.Time) ([]Bet, error)
	DeleteSettledBefore(ctx context.Context, before time.Time) (int64, error)
}

// ResultStore persists the single canonical Result per period. Create is an
// idempotent insert: when a row already exists the stored row is returned and
// created is false, so racing replicas converge on one outcome.
type ResultStore interface {
	Create(ctx context.Context, r Result) (created bool, canonical Result, err error)
	Get(ctx context.Context, key PeriodKey, periodID string) (Result, error)
	ListRecent(ctx context.Context, key PeriodKey, limit int) ([]Result, error)
	ListBefore(ctx context.Context, before time.Time) ([]Result, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// BalanceStore exposes the external account ledger. Credit must tolerate
// being retried at the call-site level; at-most-once per bet is achieved by
// the settlement transaction, not by this interface.
type BalanceStore interface {
	Credit(ctx context.Context, userID string, amount int64) error
	Get(ctx context.Context, userID string) (int64, error)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetStatus represents a bet's settlement state. A bet transitions out of
// pending exactly once.
type BetStatus string

const (
	BetPending BetStatus = "pending"
	BetWon     BetStatus = "won"
	BetLost    BetStatus = "lost"
)

// Bet is one accepted stake against a predicate on a period. All monetary
// amounts are integer minor units; Odds is the payout multiplier applied with
// fixed-point rounding only at settlement time.
type Bet struct {
	ID          string
	UserID      string
	Key         PeriodKey
	PeriodID    string
	Predicate   BetPredicate
	GrossAmount int64
	PlatformFee int64
	NetAmount   int64
	Odds        decimal.Decimal
	Status      BetStatus
	Payout      int64
	PlacedAt    time.Time
	SettledAt   *time.Time
}

// PotentialPayout is the amount the house owes if this bet wins, rounded to
// the nearest minor unit. This is the value accumulated in the exposure
// ledger at intake time.
func (b Bet) PotentialPayout() int64 {
	return decimal.NewFromInt(b.NetAmount).Mul(b.Odds).Round(0).IntPart()
}

// SettledBet is the outcome of evaluating one pending bet against a period's
// chosen outcome. The settlement processor applies these in a single
// transaction, crediting Payout for wins.
type SettledBet struct {
	BetID  string
	UserID string
	Status BetStatus
	Payout int64
}

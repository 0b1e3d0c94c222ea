// Package game provides the per-game outcome-space lookup tables: the finite
// set of canonical outcomes for each game, win evaluation for every
// (predicate, outcome) pair, and the payout multipliers. Tables are immutable
// and built once per process; they are safe for shared concurrent reads
// without locking.
package game

import (
	"github.com/shopspring/decimal"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// Table is one game's outcome-space provider. Implementations are pure
// lookup structures with no mutable state.
type Table interface {
	Game() domain.GameType

	// Outcomes enumerates the full canonical outcome space.
	Outcomes() []domain.Outcome

	// Odds returns the nominal payout multiplier quoted at intake time for a
	// predicate, or domain.ErrUnknownPredicate when the game does not accept
	// that predicate kind or value.
	Odds(p domain.BetPredicate) (decimal.Decimal, error)

	// Wins reports whether the predicate pays against the outcome.
	Wins(p domain.BetPredicate, o domain.Outcome) bool

	// Multiplier returns the payout multiplier actually applied when the
	// predicate wins against the outcome, zero otherwise. It can differ from
	// the nominal odds: on the wheel games a color bet landing on a
	// violet-tinted number pays at a reduced rate.
	Multiplier(p domain.BetPredicate, o domain.Outcome) decimal.Decimal
}

var (
	oddsZero   = decimal.Decimal{}
	oddsDouble = decimal.NewFromInt(2)
	oddsHalf   = decimal.RequireFromString("1.5")
	oddsViolet = decimal.RequireFromString("4.5")
	oddsNumber = decimal.NewFromInt(9)
)

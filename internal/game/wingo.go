package game

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// wingoTable is the 10-symbol wheel: outcomes are the numbers 0-9. Number 0
// is red-violet and number 5 is green-violet; the remaining evens are red and
// odds are green. Big covers 5-9, small covers 0-4.
type wingoTable struct {
	game     domain.GameType
	outcomes []domain.Outcome
}

var (
	wingoOnce sync.Once
	wingoTab  *wingoTable
)

// Wingo returns the shared wheel table. It is built on first use and never
// mutated afterwards.
func Wingo() Table {
	wingoOnce.Do(func() {
		wingoTab = &wingoTable{game: domain.GameWingo, outcomes: wheelOutcomes()}
	})
	return wingoTab
}

func wheelOutcomes() []domain.Outcome {
	out := make([]domain.Outcome, 10)
	for i := range out {
		out[i] = domain.Outcome(fmt.Sprintf("%d", i))
	}
	return out
}

func (t *wingoTable) Game() domain.GameType      { return t.game }
func (t *wingoTable) Outcomes() []domain.Outcome { return t.outcomes }

// wheelNumber decodes a wheel outcome; -1 for anything malformed.
func wheelNumber(o domain.Outcome) int {
	if len(o) != 1 || o[0] < '0' || o[0] > '9' {
		return -1
	}
	return int(o[0] - '0')
}

func (t *wingoTable) Odds(p domain.BetPredicate) (decimal.Decimal, error) {
	switch p.Kind {
	case domain.PredColor:
		switch p.Value {
		case "red", "green":
			return oddsDouble, nil
		case "violet":
			return oddsViolet, nil
		}
	case domain.PredNumber:
		if p.Digit >= 0 && p.Digit <= 9 {
			return oddsNumber, nil
		}
	case domain.PredSize:
		if p.Value == "big" || p.Value == "small" {
			return oddsDouble, nil
		}
	}
	return oddsZero, fmt.Errorf("%s odds for %q: %w", t.game, p.Key(), domain.ErrUnknownPredicate)
}

func (t *wingoTable) Wins(p domain.BetPredicate, o domain.Outcome) bool {
	n := wheelNumber(o)
	if n < 0 {
		return false
	}

	switch p.Kind {
	case domain.PredColor:
		switch p.Value {
		case "red":
			return n%2 == 0 // evens, incl. the red-violet 0
		case "green":
			return n%2 == 1 // odds, incl. the green-violet 5
		case "violet":
			return n == 0 || n == 5
		}
	case domain.PredNumber:
		return p.Digit == n
	case domain.PredSize:
		if p.Value == "big" {
			return n >= 5
		}
		return n <= 4
	}
	return false
}

func (t *wingoTable) Multiplier(p domain.BetPredicate, o domain.Outcome) decimal.Decimal {
	if !t.Wins(p, o) {
		return oddsZero
	}

	n := wheelNumber(o)

	// Color bets landing on a violet-tinted number pay at the reduced rate.
	if p.Kind == domain.PredColor {
		if (p.Value == "red" && n == 0) || (p.Value == "green" && n == 5) {
			return oddsHalf
		}
	}

	odds, err := t.Odds(p)
	if err != nil {
		return oddsZero
	}
	return odds
}

var _ Table = (*wingoTable)(nil)

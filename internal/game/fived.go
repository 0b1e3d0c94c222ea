package game

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// fivedTable is the five-digit game: outcomes "00000".."99999". Bets target a
// single position (A-E, exact digit, low/high, odd/even) or the digit-sum
// aggregate, so win evaluation inspects one digit or the sum rather than the
// full cross product.
type fivedTable struct {
	outcomes []domain.Outcome
}

var (
	fivedOnce sync.Once
	fivedTab  *fivedTable
)

// FiveD returns the shared five-digit table. The 100 000-entry outcome list
// is materialized once on first use.
func FiveD() Table {
	fivedOnce.Do(func() {
		out := make([]domain.Outcome, 100000)
		for i := range out {
			out[i] = domain.Outcome(fmt.Sprintf("%05d", i))
		}
		fivedTab = &fivedTable{outcomes: out}
	})
	return fivedTab
}

func (t *fivedTable) Game() domain.GameType      { return domain.GameFiveD }
func (t *fivedTable) Outcomes() []domain.Outcome { return t.outcomes }

// posDigit returns the digit at position 'A'..'E' of a fived outcome, -1 for
// malformed input.
func posDigit(o domain.Outcome, pos byte) int {
	if len(o) != 5 || pos < 'A' || pos > 'E' {
		return -1
	}
	c := o[pos-'A']
	if c < '0' || c > '9' {
		return -1
	}
	return int(c - '0')
}

func digitSum(o domain.Outcome) (int, bool) {
	if len(o) != 5 {
		return 0, false
	}
	sum := 0
	for i := 0; i < 5; i++ {
		if o[i] < '0' || o[i] > '9' {
			return 0, false
		}
		sum += int(o[i] - '0')
	}
	return sum, true
}

func (t *fivedTable) Odds(p domain.BetPredicate) (decimal.Decimal, error) {
	switch p.Kind {
	case domain.PredPosition:
		if p.Pos >= 'A' && p.Pos <= 'E' && p.Digit >= 0 && p.Digit <= 9 {
			return oddsNumber, nil
		}
	case domain.PredPositionSize:
		if p.Pos >= 'A' && p.Pos <= 'E' && (p.Value == "low" || p.Value == "high") {
			return oddsDouble, nil
		}
	case domain.PredPositionParity:
		if p.Pos >= 'A' && p.Pos <= 'E' && (p.Value == "odd" || p.Value == "even") {
			return oddsDouble, nil
		}
	case domain.PredSumSize:
		if p.Value == "big" || p.Value == "small" {
			return oddsDouble, nil
		}
	case domain.PredSumParity:
		if p.Value == "odd" || p.Value == "even" {
			return oddsDouble, nil
		}
	}
	return oddsZero, fmt.Errorf("fived odds for %q: %w", p.Key(), domain.ErrUnknownPredicate)
}

func (t *fivedTable) Wins(p domain.BetPredicate, o domain.Outcome) bool {
	switch p.Kind {
	case domain.PredPosition:
		return posDigit(o, p.Pos) == p.Digit
	case domain.PredPositionSize:
		d := posDigit(o, p.Pos)
		if d < 0 {
			return false
		}
		if p.Value == "high" {
			return d >= 5
		}
		return d <= 4
	case domain.PredPositionParity:
		d := posDigit(o, p.Pos)
		if d < 0 {
			return false
		}
		if p.Value == "odd" {
			return d%2 == 1
		}
		return d%2 == 0
	case domain.PredSumSize:
		sum, ok := digitSum(o)
		if !ok {
			return false
		}
		// Five digits sum to 0-45; big is the upper half.
		if p.Value == "big" {
			return sum >= 23
		}
		return sum <= 22
	case domain.PredSumParity:
		sum, ok := digitSum(o)
		if !ok {
			return false
		}
		if p.Value == "odd" {
			return sum%2 == 1
		}
		return sum%2 == 0
	}
	return false
}

func (t *fivedTable) Multiplier(p domain.BetPredicate, o domain.Outcome) decimal.Decimal {
	if !t.Wins(p, o) {
		return oddsZero
	}
	odds, err := t.Odds(p)
	if err != nil {
		return oddsZero
	}
	return odds
}

var _ Table = (*fivedTable)(nil)

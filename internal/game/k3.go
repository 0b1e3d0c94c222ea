package game

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// k3Table is the three-die game: 216 ordered outcomes "111".."666". Sum bets
// pay per-sum odds; size splits at 10/11; triples and doubles pay combination
// odds.
type k3Table struct {
	outcomes []domain.Outcome
}

var (
	k3Once sync.Once
	k3Tab  *k3Table
)

// K3 returns the shared three-die table.
func K3() Table {
	k3Once.Do(func() {
		out := make([]domain.Outcome, 0, 216)
		for a := 1; a <= 6; a++ {
			for b := 1; b <= 6; b++ {
				for c := 1; c <= 6; c++ {
					out = append(out, domain.Outcome(fmt.Sprintf("%d%d%d", a, b, c)))
				}
			}
		}
		k3Tab = &k3Table{outcomes: out}
	})
	return k3Tab
}

// k3SumOdds maps an exact dice sum to its payout multiplier. Rarer sums pay
// more; the table is symmetric around 10.5.
var k3SumOdds = map[int]decimal.Decimal{
	3: decimal.RequireFromString("207.36"), 18: decimal.RequireFromString("207.36"),
	4: decimal.RequireFromString("69.12"), 17: decimal.RequireFromString("69.12"),
	5: decimal.RequireFromString("34.56"), 16: decimal.RequireFromString("34.56"),
	6: decimal.RequireFromString("20.74"), 15: decimal.RequireFromString("20.74"),
	7: decimal.RequireFromString("13.83"), 14: decimal.RequireFromString("13.83"),
	8: decimal.RequireFromString("8.64"), 13: decimal.RequireFromString("8.64"),
	9: decimal.RequireFromString("6.91"), 12: decimal.RequireFromString("6.91"),
	10: decimal.RequireFromString("6.22"), 11: decimal.RequireFromString("6.22"),
}

var (
	oddsTripleExact = decimal.RequireFromString("207.36")
	oddsTripleAny   = decimal.RequireFromString("34.56")
	oddsDoubleExact = decimal.RequireFromString("13.83")
	oddsSingleDie   = decimal.RequireFromString("2.07")
)

func (t *k3Table) Game() domain.GameType      { return domain.GameK3 }
func (t *k3Table) Outcomes() []domain.Outcome { return t.outcomes }

// dice decodes a k3 outcome into its three faces; ok is false for malformed
// encodings.
func dice(o domain.Outcome) (d [3]int, ok bool) {
	if len(o) != 3 {
		return d, false
	}
	for i := 0; i < 3; i++ {
		if o[i] < '1' || o[i] > '6' {
			return d, false
		}
		d[i] = int(o[i] - '0')
	}
	return d, true
}

func (t *k3Table) Odds(p domain.BetPredicate) (decimal.Decimal, error) {
	switch p.Kind {
	case domain.PredSum:
		if odds, ok := k3SumOdds[p.Sum]; ok {
			return odds, nil
		}
	case domain.PredSumSize:
		if p.Value == "big" || p.Value == "small" {
			return oddsDouble, nil
		}
	case domain.PredSumParity:
		if p.Value == "odd" || p.Value == "even" {
			return oddsDouble, nil
		}
	case domain.PredTriple:
		if p.Digit >= 1 && p.Digit <= 6 {
			return oddsTripleExact, nil
		}
	case domain.PredAnyTriple:
		return oddsTripleAny, nil
	case domain.PredDouble:
		if p.Digit >= 1 && p.Digit <= 6 {
			return oddsDoubleExact, nil
		}
	case domain.PredSingle:
		if p.Digit >= 1 && p.Digit <= 6 {
			return oddsSingleDie, nil
		}
	}
	return oddsZero, fmt.Errorf("k3 odds for %q: %w", p.Key(), domain.ErrUnknownPredicate)
}

func (t *k3Table) Wins(p domain.BetPredicate, o domain.Outcome) bool {
	d, ok := dice(o)
	if !ok {
		return false
	}
	sum := d[0] + d[1] + d[2]

	switch p.Kind {
	case domain.PredSum:
		return p.Sum == sum
	case domain.PredSumSize:
		if p.Value == "big" {
			return sum >= 11
		}
		return sum <= 10
	case domain.PredSumParity:
		if p.Value == "odd" {
			return sum%2 == 1
		}
		return sum%2 == 0
	case domain.PredTriple:
		return d[0] == p.Digit && d[1] == p.Digit && d[2] == p.Digit
	case domain.PredAnyTriple:
		return d[0] == d[1] && d[1] == d[2]
	case domain.PredDouble:
		n := 0
		for _, f := range d {
			if f == p.Digit {
				n++
			}
		}
		return n >= 2
	case domain.PredSingle:
		for _, f := range d {
			if f == p.Digit {
				return true
			}
		}
	}
	return false
}

func (t *k3Table) Multiplier(p domain.BetPredicate, o domain.Outcome) decimal.Decimal {
	if !t.Wins(p, o) {
		return oddsZero
	}
	odds, err := t.Odds(p)
	if err != nil {
		return oddsZero
	}
	return odds
}

var _ Table = (*k3Table)(nil)

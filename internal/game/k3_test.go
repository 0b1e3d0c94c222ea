package game

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

func TestK3Outcomes(t *testing.T) {
	tab := K3()
	assert.Equal(t, domain.GameK3, tab.Game())

	out := tab.Outcomes()
	require.Len(t, out, 216)
	assert.Equal(t, domain.Outcome("111"), out[0])
	assert.Equal(t, domain.Outcome("666"), out[215])
}

func TestK3Wins(t *testing.T) {
	tab := K3()
	tests := []struct {
		pred    domain.BetPredicate
		outcome domain.Outcome
		want    bool
	}{
		{domain.BetPredicate{Kind: domain.PredSum, Sum: 9}, "234", true},
		{domain.BetPredicate{Kind: domain.PredSum, Sum: 9}, "235", false},
		{domain.BetPredicate{Kind: domain.PredSumSize, Value: "big"}, "456", true},  // sum 15
		{domain.BetPredicate{Kind: domain.PredSumSize, Value: "big"}, "235", false}, // sum 10
		{domain.BetPredicate{Kind: domain.PredSumSize, Value: "small"}, "235", true},
		{domain.BetPredicate{Kind: domain.PredSumParity, Value: "odd"}, "234", true},
		{domain.BetPredicate{Kind: domain.PredSumParity, Value: "even"}, "235", true},
		{domain.BetPredicate{Kind: domain.PredTriple, Digit: 4}, "444", true},
		{domain.BetPredicate{Kind: domain.PredTriple, Digit: 4}, "445", false},
		{domain.BetPredicate{Kind: domain.PredAnyTriple}, "222", true},
		{domain.BetPredicate{Kind: domain.PredAnyTriple}, "223", false},
		{domain.BetPredicate{Kind: domain.PredDouble, Digit: 2}, "225", true},
		{domain.BetPredicate{Kind: domain.PredDouble, Digit: 2}, "235", false},
		{domain.BetPredicate{Kind: domain.PredDouble, Digit: 2}, "222", true},
		{domain.BetPredicate{Kind: domain.PredSingle, Digit: 6}, "136", true},
		{domain.BetPredicate{Kind: domain.PredSingle, Digit: 6}, "135", false},
	}
	for _, tt := range tests {
		got := tab.Wins(tt.pred, tt.outcome)
		assert.Equalf(t, tt.want, got, "Wins(%s, %s)", tt.pred.Key(), tt.outcome)
	}
}

func TestK3SumOddsSymmetric(t *testing.T) {
	tab := K3()
	for low, high := 3, 18; low < high; low, high = low+1, high-1 {
		lo, err := tab.Odds(domain.BetPredicate{Kind: domain.PredSum, Sum: low})
		require.NoError(t, err)
		hi, err := tab.Odds(domain.BetPredicate{Kind: domain.PredSum, Sum: high})
		require.NoError(t, err)
		assert.Truef(t, lo.Equal(hi), "odds for sum %d and %d should match", low, high)
	}

	_, err := tab.Odds(domain.BetPredicate{Kind: domain.PredSum, Sum: 2})
	assert.ErrorIs(t, err, domain.ErrUnknownPredicate)
	_, err = tab.Odds(domain.BetPredicate{Kind: domain.PredSum, Sum: 19})
	assert.ErrorIs(t, err, domain.ErrUnknownPredicate)
}

func TestK3TripleOdds(t *testing.T) {
	tab := K3()

	exact, err := tab.Odds(domain.BetPredicate{Kind: domain.PredTriple, Digit: 3})
	require.NoError(t, err)
	assert.True(t, exact.Equal(decimal.RequireFromString("207.36")))

	anyTriple, err := tab.Odds(domain.BetPredicate{Kind: domain.PredAnyTriple})
	require.NoError(t, err)
	assert.True(t, anyTriple.Equal(decimal.RequireFromString("34.56")))

	_, err = tab.Odds(domain.BetPredicate{Kind: domain.PredTriple, Digit: 7})
	assert.ErrorIs(t, err, domain.ErrUnknownPredicate)
}

package game

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

func TestWingoOutcomes(t *testing.T) {
	tab := Wingo()
	assert.Equal(t, domain.GameWingo, tab.Game())

	out := tab.Outcomes()
	require.Len(t, out, 10)
	assert.Equal(t, domain.Outcome("0"), out[0])
	assert.Equal(t, domain.Outcome("9"), out[9])
}

func TestWingoWins(t *testing.T) {
	tab := Wingo()
	tests := []struct {
		pred    domain.BetPredicate
		outcome domain.Outcome
		want    bool
	}{
		{domain.BetPredicate{Kind: domain.PredColor, Value: "red"}, "2", true},
		{domain.BetPredicate{Kind: domain.PredColor, Value: "red"}, "0", true},
		{domain.BetPredicate{Kind: domain.PredColor, Value: "red"}, "3", false},
		{domain.BetPredicate{Kind: domain.PredColor, Value: "green"}, "5", true},
		{domain.BetPredicate{Kind: domain.PredColor, Value: "green"}, "4", false},
		{domain.BetPredicate{Kind: domain.PredColor, Value: "violet"}, "0", true},
		{domain.BetPredicate{Kind: domain.PredColor, Value: "violet"}, "5", true},
		{domain.BetPredicate{Kind: domain.PredColor, Value: "violet"}, "7", false},
		{domain.BetPredicate{Kind: domain.PredNumber, Digit: 7}, "7", true},
		{domain.BetPredicate{Kind: domain.PredNumber, Digit: 7}, "8", false},
		{domain.BetPredicate{Kind: domain.PredSize, Value: "big"}, "5", true},
		{domain.BetPredicate{Kind: domain.PredSize, Value: "big"}, "4", false},
		{domain.BetPredicate{Kind: domain.PredSize, Value: "small"}, "0", true},
		{domain.BetPredicate{Kind: domain.PredSize, Value: "small"}, "9", false},
	}
	for _, tt := range tests {
		got := tab.Wins(tt.pred, tt.outcome)
		assert.Equalf(t, tt.want, got, "Wins(%s, %s)", tt.pred.Key(), tt.outcome)
	}
}

func TestWingoOdds(t *testing.T) {
	tab := Wingo()

	odds, err := tab.Odds(domain.BetPredicate{Kind: domain.PredColor, Value: "red"})
	require.NoError(t, err)
	assert.True(t, odds.Equal(decimal.NewFromInt(2)))

	odds, err = tab.Odds(domain.BetPredicate{Kind: domain.PredColor, Value: "violet"})
	require.NoError(t, err)
	assert.True(t, odds.Equal(decimal.RequireFromString("4.5")))

	odds, err = tab.Odds(domain.BetPredicate{Kind: domain.PredNumber, Digit: 3})
	require.NoError(t, err)
	assert.True(t, odds.Equal(decimal.NewFromInt(9)))

	_, err = tab.Odds(domain.BetPredicate{Kind: domain.PredSum, Sum: 10})
	assert.ErrorIs(t, err, domain.ErrUnknownPredicate)

	_, err = tab.Odds(domain.BetPredicate{Kind: domain.PredNumber, Digit: 12})
	assert.ErrorIs(t, err, domain.ErrUnknownPredicate)
}

func TestWingoVioletTintedMultiplier(t *testing.T) {
	tab := Wingo()

	red := domain.BetPredicate{Kind: domain.PredColor, Value: "red"}
	green := domain.BetPredicate{Kind: domain.PredColor, Value: "green"}

	// Color bets landing on the violet-tinted numbers pay the reduced rate.
	assert.True(t, tab.Multiplier(red, "0").Equal(decimal.RequireFromString("1.5")))
	assert.True(t, tab.Multiplier(green, "5").Equal(decimal.RequireFromString("1.5")))

	// Plain landings pay full odds.
	assert.True(t, tab.Multiplier(red, "2").Equal(decimal.NewFromInt(2)))
	assert.True(t, tab.Multiplier(green, "3").Equal(decimal.NewFromInt(2)))

	// Losses pay zero.
	assert.True(t, tab.Multiplier(red, "3").IsZero())
}

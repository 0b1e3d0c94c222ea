package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicateKeyRoundTrip(t *testing.T) {
	preds := []BetPredicate{
		{Kind: PredColor, Value: "red"},
		{Kind: PredColor, Value: "violet"},
		{Kind: PredNumber, Digit: 0},
		{Kind: PredNumber, Digit: 9},
		{Kind: PredSize, Value: "big"},
		{Kind: PredSum, Sum: 3},
		{Kind: PredSum, Sum: 18},
		{Kind: PredSumSize, Value: "small"},
		{Kind: PredSumParity, Value: "odd"},
		{Kind: PredTriple, Digit: 6},
		{Kind: PredAnyTriple},
		{Kind: PredDouble, Digit: 2},
		{Kind: PredSingle, Digit: 4},
		{Kind: PredPosition, Pos: 'A', Digit: 7},
		{Kind: PredPosition, Pos: 'E', Digit: 0},
		{Kind: PredPositionSize, Pos: 'B', Value: "high"},
		{Kind: PredPositionParity, Pos: 'D', Value: "even"},
	}
	for _, p := range preds {
		got, err := ParsePredicate(p.Key())
		require.NoErrorf(t, err, "ParsePredicate(%q)", p.Key())
		assert.Equalf(t, p, got, "round trip of %q", p.Key())
	}
}

func TestPredicateKeyForm(t *testing.T) {
	assert.Equal(t, "color:red", BetPredicate{Kind: PredColor, Value: "red"}.Key())
	assert.Equal(t, "number:5", BetPredicate{Kind: PredNumber, Digit: 5}.Key())
	assert.Equal(t, "sum:11", BetPredicate{Kind: PredSum, Sum: 11}.Key())
	assert.Equal(t, "anytriple", BetPredicate{Kind: PredAnyTriple}.Key())
	assert.Equal(t, "position:A=3", BetPredicate{Kind: PredPosition, Pos: 'A', Digit: 3}.Key())
	assert.Equal(t, "possize:C=low", BetPredicate{Kind: PredPositionSize, Pos: 'C', Value: "low"}.Key())
}

func TestParsePredicateRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"color",
		"color:",
		"number:x",
		"sum:abc",
		"position:A",
		"position:AB=3",
		"position:F=3",
		"position:A=x",
		"possize:Z=low",
		"teleport:far",
	}
	for _, s := range bad {
		_, err := ParsePredicate(s)
		assert.ErrorIsf(t, err, ErrUnknownPredicate, "ParsePredicate(%q)", s)
	}
}

package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PredicateKind enumerates the closed set of bet predicate families across
// all games. Which kinds are accepted for a given game is decided by that
// game's outcome table.
type PredicateKind string

const (
	// Wheel games (wingo, trxwin).
	PredColor  PredicateKind = "color"  // red | green | violet
	PredNumber PredicateKind = "number" // exact number 0-9
	PredSize   PredicateKind = "size"   // big (5-9) | small (0-4)

	// Dice game (k3).
	PredSum       PredicateKind = "sum"       // exact sum of three dice, 3-18
	PredSumSize   PredicateKind = "sumsize"   // big (11-18) | small (3-10)
	PredSumParity PredicateKind = "sumparity" // odd | even
	PredTriple    PredicateKind = "triple"    // all three dice show this face
	PredAnyTriple PredicateKind = "anytriple" // any three-of-a-kind
	PredDouble    PredicateKind = "double"    // at least two dice show this face
	PredSingle    PredicateKind = "single"    // at least one die shows this face

	// Digit game (fived).
	PredPosition       PredicateKind = "position"  // exact digit at position A-E
	PredPositionSize   PredicateKind = "possize"   // low (0-4) | high (5-9) at position
	PredPositionParity PredicateKind = "posparity" // odd | even at position
)

// BetPredicate is a bet's winning condition as a closed tagged variant. Only
// the fields relevant to Kind are meaningful; Key() produces the canonical
// string form used as the exposure ledger hash field.
type BetPredicate struct {
	Kind  PredicateKind
	Value string // color/size/parity variants
	Digit int    // number, triple, double, single, position digit
	Pos   byte   // 'A'..'E' for fived position kinds
	Sum   int    // k3 exact sum
}

// Key returns the canonical encoding, e.g. "color:red", "sum:11",
// "position:A=3". ParsePredicate inverts it.
func (p BetPredicate) Key() string {
	switch p.Kind {
	case PredColor, PredSize, PredSumSize, PredSumParity:
		return string(p.Kind) + ":" + p.Value
	case PredNumber, PredTriple, PredDouble, PredSingle:
		return string(p.Kind) + ":" + strconv.Itoa(p.Digit)
	case PredSum:
		return string(p.Kind) + ":" + strconv.Itoa(p.Sum)
	case PredAnyTriple:
		return string(PredAnyTriple)
	case PredPosition:
		return fmt.Sprintf("%s:%c=%d", p.Kind, p.Pos, p.Digit)
	case PredPositionSize, PredPositionParity:
		return fmt.Sprintf("%s:%c=%s", p.Kind, p.Pos, p.Value)
	default:
		return string(p.Kind)
	}
}

// ParsePredicate decodes the canonical predicate encoding produced by Key.
// It returns ErrUnknownPredicate for anything it cannot decode; callers on
// the resolution path treat such exposure as zero rather than failing the
// round.
func ParsePredicate(s string) (BetPredicate, error) {
	if s == string(PredAnyTriple) {
		return BetPredicate{Kind: PredAnyTriple}, nil
	}

	kind, rest, ok := strings.Cut(s, ":")
	if !ok || rest == "" {
		return BetPredicate{}, fmt.Errorf("parse predicate %q: %w", s, ErrUnknownPredicate)
	}

	switch PredicateKind(kind) {
	case PredColor, PredSize, PredSumSize, PredSumParity:
		return BetPredicate{Kind: PredicateKind(kind), Value: rest}, nil

	case PredNumber, PredTriple, PredDouble, PredSingle:
		d, err := strconv.Atoi(rest)
		if err != nil {
			return BetPredicate{}, fmt.Errorf("parse predicate %q: %w", s, ErrUnknownPredicate)
		}
		return BetPredicate{Kind: PredicateKind(kind), Digit: d}, nil

	case PredSum:
		n, err := strconv.Atoi(rest)
		if err != nil {
			return BetPredicate{}, fmt.Errorf("parse predicate %q: %w", s, ErrUnknownPredicate)
		}
		return BetPredicate{Kind: PredSum, Sum: n}, nil

	case PredPosition, PredPositionSize, PredPositionParity:
		pos, val, ok := strings.Cut(rest, "=")
		if !ok || len(pos) != 1 || pos[0] < 'A' || pos[0] > 'E' {
			return BetPredicate{}, fmt.Errorf("parse predicate %q: %w", s, ErrUnknownPredicate)
		}
		p := BetPredicate{Kind: PredicateKind(kind), Pos: pos[0]}
		if PredicateKind(kind) == PredPosition {
			d, err := strconv.Atoi(val)
			if err != nil {
				return BetPredicate{}, fmt.Errorf("parse predicate %q: %w", s, ErrUnknownPredicate)
			}
			p.Digit = d
		} else {
			p.Value = val
		}
		return p, nil
	}

	return BetPredicate{}, fmt.Errorf("parse predicate %q: %w", s, ErrUnknownPredicate)
}

package selector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

var (
	wingoKey = domain.PeriodKey{Game: domain.GameWingo, Duration: 60, Timeline: "default"}
	trxKey   = domain.PeriodKey{Game: domain.GameTrxWin, Duration: 60, Timeline: "default"}
)

const testPeriod = "2026082800000630"

type fakeLedger struct {
	bettors    int
	bettorsErr error
	snapshot   map[string]int64
	snapErr    error
}

func (f *fakeLedger) RecordBet(context.Context, domain.PeriodKey, string, string, domain.BetPredicate, int64) error {
	return nil
}

func (f *fakeLedger) Snapshot(context.Context, domain.PeriodKey, string) (map[string]int64, error) {
	return f.snapshot, f.snapErr
}

func (f *fakeLedger) UniqueBettorCount(context.Context, domain.PeriodKey, string) (int, error) {
	return f.bettors, f.bettorsErr
}

type fakeOverrides struct {
	outcome domain.Outcome
	set     bool
	err     error
}

func (f *fakeOverrides) Set(context.Context, domain.PeriodKey, string, domain.Outcome, time.Duration) error {
	return nil
}

func (f *fakeOverrides) Get(context.Context, domain.PeriodKey, string) (domain.Outcome, bool, error) {
	return f.outcome, f.set, f.err
}

func (f *fakeOverrides) Clear(context.Context, domain.PeriodKey, string) error { return nil }

// fixedEntropy replays one predetermined draw.
type fixedEntropy struct {
	e Entropy
}

func (f fixedEntropy) Draw(context.Context) (Entropy, error) { return f.e, nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSelectRandomAboveThreshold(t *testing.T) {
	ledger := &fakeLedger{bettors: 5}
	entropy := fixedEntropy{Entropy{Hash: "ab17", Seed: 23}}
	s := New(ledger, nil, entropy, nil, testLogger())

	r, err := s.Select(context.Background(), wingoKey, testPeriod)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceRandom, r.SourceMode)
	assert.Equal(t, domain.Outcome("3"), r.Outcome) // seed 23 over 10 outcomes
	assert.Equal(t, "ab17", r.Proof)
}

func TestSelectProtectedBelowThreshold(t *testing.T) {
	// A lone bettor stacked on red: every even number pays, so the minimal
	// set is the odd numbers and the chosen outcome must come from it.
	ledger := &fakeLedger{
		bettors:  1,
		snapshot: map[string]int64{"color:red": 10000},
	}
	s := New(ledger, nil, fixedEntropy{Entropy{Hash: "ff", Seed: 1}}, nil, testLogger())

	r, err := s.Select(context.Background(), wingoKey, testPeriod)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceProtected, r.SourceMode)
	n := int(r.Outcome[0] - '0')
	assert.Equal(t, 1, n%2, "outcome %s should be a losing (odd) number", r.Outcome)
}

func TestSelectProtectedPicksUniqueMinimum(t *testing.T) {
	// big covers 5-9 and number:3 covers 3; every small number except 3
	// costs zero, and 3 costs 900. With wide coverage the minimum is unique
	// among {0,1,2,4}.
	ledger := &fakeLedger{
		bettors: 2,
		snapshot: map[string]int64{
			"size:big":  5000,
			"number:3":  900,
			"color:red": 100, // evens
		},
	}
	thresholds := map[domain.GameType]int{domain.GameWingo: 3}
	s := New(ledger, nil, fixedEntropy{Entropy{Hash: "ff", Seed: 1}}, thresholds, testLogger())

	r, err := s.Select(context.Background(), wingoKey, testPeriod)
	require.NoError(t, err)

	// Odd small numbers other than 3 carry zero exposure: only 1 qualifies.
	assert.Equal(t, domain.SourceProtected, r.SourceMode)
	assert.Equal(t, domain.Outcome("1"), r.Outcome)
}

func TestSelectProtectedEmptyLedgerFallsBackToRandom(t *testing.T) {
	ledger := &fakeLedger{bettors: 0, snapshot: map[string]int64{}}
	s := New(ledger, nil, fixedEntropy{Entropy{Hash: "cd", Seed: 7}}, nil, testLogger())

	r, err := s.Select(context.Background(), wingoKey, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceRandom, r.SourceMode)
	assert.Equal(t, domain.Outcome("7"), r.Outcome)
}

func TestSelectUnreachableLedgerStillResolves(t *testing.T) {
	ledger := &fakeLedger{bettorsErr: errors.New("connection refused")}
	s := New(ledger, nil, fixedEntropy{Entropy{Hash: "ef", Seed: 9}}, nil, testLogger())

	r, err := s.Select(context.Background(), wingoKey, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceRandom, r.SourceMode)
}

func TestSelectSkipsUnparseableExposureFields(t *testing.T) {
	ledger := &fakeLedger{
		bettors: 0,
		snapshot: map[string]int64{
			"garbage???":  99999,
			"color:green": 500, // odds
		},
	}
	s := New(ledger, nil, fixedEntropy{Entropy{Hash: "ff", Seed: 1}}, nil, testLogger())

	r, err := s.Select(context.Background(), wingoKey, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceProtected, r.SourceMode)
	n := int(r.Outcome[0] - '0')
	assert.Equal(t, 0, n%2, "outcome %s should dodge the green exposure", r.Outcome)
}

func TestSelectOverrideShortCircuits(t *testing.T) {
	ledger := &fakeLedger{bettors: 50}
	overrides := &fakeOverrides{outcome: "8", set: true}
	s := New(ledger, overrides, fixedEntropy{Entropy{Hash: "ff", Seed: 1}}, nil, testLogger())

	r, err := s.Select(context.Background(), wingoKey, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceOverride, r.SourceMode)
	assert.Equal(t, domain.Outcome("8"), r.Outcome)
}

func TestSelectOverrideCacheErrorIsIgnored(t *testing.T) {
	ledger := &fakeLedger{bettors: 50}
	overrides := &fakeOverrides{err: errors.New("timeout")}
	s := New(ledger, overrides, fixedEntropy{Entropy{Hash: "ab", Seed: 2}}, nil, testLogger())

	r, err := s.Select(context.Background(), wingoKey, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceRandom, r.SourceMode)
}

func TestSelectTrxWinDerivesOutcomeFromHash(t *testing.T) {
	ledger := &fakeLedger{bettors: 10}
	entropy := fixedEntropy{Entropy{Hash: "00deadbeef4abc", Seed: 999}}
	s := New(ledger, nil, entropy, nil, testLogger())

	r, err := s.Select(context.Background(), trxKey, testPeriod)
	require.NoError(t, err)

	// The hash convention wins over the seed: last decimal digit is 4.
	assert.Equal(t, domain.Outcome("4"), r.Outcome)
	assert.Equal(t, "00deadbeef4abc", r.Proof)
}

func TestSelectTrxWinProtectedSynthesizesProof(t *testing.T) {
	ledger := &fakeLedger{
		bettors:  1,
		snapshot: map[string]int64{"number:5": 4500},
	}
	s := New(ledger, nil, fixedEntropy{Entropy{Hash: "ff", Seed: 1}}, nil, testLogger())

	r, err := s.Select(context.Background(), trxKey, testPeriod)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceProtected, r.SourceMode)
	assert.NotEqual(t, domain.Outcome("5"), r.Outcome)
	require.NotEmpty(t, r.Proof)
	assert.Equal(t, string(r.Outcome), r.Proof[len(r.Proof)-1:],
		"synthesized proof must derive back to the outcome")
}

func TestSelectUnknownGame(t *testing.T) {
	s := New(&fakeLedger{}, nil, nil, nil, testLogger())
	_, err := s.Select(context.Background(), domain.PeriodKey{Game: "roulette", Duration: 60, Timeline: "default"}, testPeriod)
	assert.ErrorIs(t, err, domain.ErrUnknownGame)
}

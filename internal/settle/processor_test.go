package settle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

var wingoKey = domain.PeriodKey{Game: domain.GameWingo, Duration: 60, Timeline: "default"}

const testPeriod = "2026082800000630"

type fakeLocks struct {
	held     bool
	acquired int
}

func (f *fakeLocks) Acquire(_ context.Context, _ string, _ time.Duration) (func(), error) {
	if f.held {
		return nil, domain.ErrLockHeld
	}
	f.acquired++
	return func() {}, nil
}

type fakeResults struct {
	stored map[string]domain.Result
	// preexists simulates a concurrent insert winning the race: Create
	// reports created=false and returns this row.
	preexists *domain.Result
}

func newFakeResults() *fakeResults {
	return &fakeResults{stored: make(map[string]domain.Result)}
}

func (f *fakeResults) Create(_ context.Context, r domain.Result) (bool, domain.Result, error) {
	k := r.Key.String() + r.PeriodID
	if f.preexists != nil {
		f.stored[k] = *f.preexists
		return false, *f.preexists, nil
	}
	if existing, ok := f.stored[k]; ok {
		return false, existing, nil
	}
	f.stored[k] = r
	return true, r, nil
}

func (f *fakeResults) Get(_ context.Context, key domain.PeriodKey, periodID string) (domain.Result, error) {
	r, ok := f.stored[key.String()+periodID]
	if !ok {
		return domain.Result{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeResults) ListRecent(context.Context, domain.PeriodKey, int) ([]domain.Result, error) {
	return nil, nil
}

func (f *fakeResults) ListBefore(context.Context, time.Time) ([]domain.Result, error) {
	return nil, nil
}

func (f *fakeResults) DeleteBefore(context.Context, time.Time) (int64, error) { return 0, nil }

type fakeBets struct {
	pending []domain.Bet
	applied []domain.SettledBet
}

func (f *fakeBets) Create(context.Context, domain.Bet) error { return nil }

func (f *fakeBets) GetByID(context.Context, string) (domain.Bet, error) {
	return domain.Bet{}, domain.ErrNotFound
}

func (f *fakeBets) ListPending(context.Context, domain.PeriodKey, string) ([]domain.Bet, error) {
	return f.pending, nil
}

func (f *fakeBets) SettleBatch(_ context.Context, settled []domain.SettledBet) (int, error) {
	f.applied = append(f.applied, settled...)
	// Simulate the guarded update: the fake clears pending so a rerun
	// settles nothing.
	f.pending = nil
	return len(settled), nil
}

func (f *fakeBets) ListSettledBefore(context.Context, time.Time) ([]domain.Bet, error) {
	return nil, nil
}

func (f *fakeBets) DeleteSettledBefore(context.Context, time.Time) (int64, error) { return 0, nil }

type fakeSelector struct {
	result domain.Result
	err    error
	calls  int
}

func (f *fakeSelector) Select(_ context.Context, key domain.PeriodKey, periodID string) (domain.Result, error) {
	f.calls++
	if f.err != nil {
		return domain.Result{}, f.err
	}
	r := f.result
	r.Key, r.PeriodID = key, periodID
	return r, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingBet(id, user, predKey string, net int64, odds string) domain.Bet {
	pred, err := domain.ParsePredicate(predKey)
	if err != nil {
		panic(err)
	}
	return domain.Bet{
		ID:        id,
		UserID:    user,
		Key:       wingoKey,
		PeriodID:  testPeriod,
		Predicate: pred,
		NetAmount: net,
		Odds:      decimal.RequireFromString(odds),
		Status:    domain.BetPending,
	}
}

func testPeriodObj() domain.Period {
	return domain.Period{Key: wingoKey, ID: testPeriod}
}

func TestResolveSettlesWinnersAndLosers(t *testing.T) {
	bets := &fakeBets{pending: []domain.Bet{
		pendingBet("b1", "u1", "color:red", 980, "2"),   // outcome 2 is red: wins 1960
		pendingBet("b2", "u2", "number:2", 490, "9"),    // wins 4410
		pendingBet("b3", "u3", "size:big", 980, "2"),    // 2 is small: loses
		pendingBet("b4", "u4", "color:green", 980, "2"), // loses
	}}
	sel := &fakeSelector{result: domain.Result{Outcome: "2", SourceMode: domain.SourceRandom}}
	p := New(&fakeLocks{}, newFakeResults(), bets, sel, nil, testLogger())

	report, err := p.Resolve(context.Background(), testPeriodObj())
	require.NoError(t, err)

	assert.Equal(t, domain.Outcome("2"), report.Outcome)
	assert.Equal(t, 4, report.BetsSettled)
	assert.Equal(t, 2, report.BetsWon)
	assert.Equal(t, 2, report.BetsLost)
	assert.Equal(t, int64(1960+4410), report.TotalPayout)
	assert.False(t, report.AlreadyDone)

	require.Len(t, bets.applied, 4)
	assert.Equal(t, domain.BetWon, bets.applied[0].Status)
	assert.Equal(t, int64(1960), bets.applied[0].Payout)
	assert.Equal(t, domain.BetLost, bets.applied[2].Status)
	assert.Zero(t, bets.applied[2].Payout)
}

func TestResolveReducedColorPayout(t *testing.T) {
	// Red landing on the red-violet 0 pays 1.5x instead of 2x.
	bets := &fakeBets{pending: []domain.Bet{
		pendingBet("b1", "u1", "color:red", 1000, "2"),
	}}
	sel := &fakeSelector{result: domain.Result{Outcome: "0", SourceMode: domain.SourceRandom}}
	p := New(&fakeLocks{}, newFakeResults(), bets, sel, nil, testLogger())

	report, err := p.Resolve(context.Background(), testPeriodObj())
	require.NoError(t, err)
	assert.Equal(t, int64(1500), report.TotalPayout)
}

func TestResolveIsIdempotent(t *testing.T) {
	bets := &fakeBets{pending: []domain.Bet{
		pendingBet("b1", "u1", "color:red", 980, "2"),
	}}
	results := newFakeResults()
	sel := &fakeSelector{result: domain.Result{Outcome: "2", SourceMode: domain.SourceRandom}}
	p := New(&fakeLocks{}, results, bets, sel, nil, testLogger())

	first, err := p.Resolve(context.Background(), testPeriodObj())
	require.NoError(t, err)
	assert.Equal(t, 1, first.BetsSettled)

	// The rerun adopts the stored result, selects nothing new, and the
	// guarded batch settles zero bets.
	second, err := p.Resolve(context.Background(), testPeriodObj())
	require.NoError(t, err)
	assert.Equal(t, first.Outcome, second.Outcome)
	assert.Equal(t, 0, second.BetsSettled)
	assert.Equal(t, 1, sel.calls)
}

func TestResolveLockHeldWithResultReportsAlreadyDone(t *testing.T) {
	results := newFakeResults()
	results.stored[wingoKey.String()+testPeriod] = domain.Result{
		Key: wingoKey, PeriodID: testPeriod,
		Outcome: "7", SourceMode: domain.SourceProtected,
	}
	sel := &fakeSelector{}
	p := New(&fakeLocks{held: true}, results, &fakeBets{}, sel, nil, testLogger())

	report, err := p.Resolve(context.Background(), testPeriodObj())
	require.NoError(t, err)
	assert.True(t, report.AlreadyDone)
	assert.Equal(t, domain.Outcome("7"), report.Outcome)
	assert.Zero(t, sel.calls)
}

func TestResolveLockHeldWithoutResult(t *testing.T) {
	p := New(&fakeLocks{held: true}, newFakeResults(), &fakeBets{}, &fakeSelector{}, nil, testLogger())

	_, err := p.Resolve(context.Background(), testPeriodObj())
	assert.ErrorIs(t, err, domain.ErrLockHeld)
}

func TestResolveAdoptsConcurrentResult(t *testing.T) {
	// Another replica inserts its result between our Get and Create; the
	// stored row wins and all bets settle against it.
	results := newFakeResults()
	results.preexists = &domain.Result{
		Key: wingoKey, PeriodID: testPeriod,
		Outcome: "9", SourceMode: domain.SourceRandom,
	}
	bets := &fakeBets{pending: []domain.Bet{
		pendingBet("b1", "u1", "size:big", 1000, "2"), // 9 is big: wins
	}}
	sel := &fakeSelector{result: domain.Result{Outcome: "0", SourceMode: domain.SourceRandom}}
	p := New(&fakeLocks{}, results, bets, sel, nil, testLogger())

	report, err := p.Resolve(context.Background(), testPeriodObj())
	require.NoError(t, err)
	assert.Equal(t, domain.Outcome("9"), report.Outcome)
	assert.Equal(t, int64(2000), report.TotalPayout)
}

func TestResolveSelectorFailureSurfaces(t *testing.T) {
	sel := &fakeSelector{err: errors.New("entropy source down")}
	p := New(&fakeLocks{}, newFakeResults(), &fakeBets{}, sel, nil, testLogger())

	_, err := p.Resolve(context.Background(), testPeriodObj())
	assert.Error(t, err)
}

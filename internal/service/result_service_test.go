package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

type fakeBalances struct {
	balances map[string]int64
	err      error
}

func (f *fakeBalances) Credit(context.Context, string, int64) error { return nil }

func (f *fakeBalances) Get(_ context.Context, userID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	b, ok := f.balances[userID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return b, nil
}

func newTestResultService(results *fakeResultStore, balances *fakeBalances) *ResultService {
	cutoffs := map[domain.PeriodKey]int{wingoKey: 5}
	return NewResultService(results, balances, cutoffs, testLogger())
}

func TestCurrentPeriod(t *testing.T) {
	s := newTestResultService(&fakeResultStore{stored: map[string]domain.Result{}}, &fakeBalances{})
	s.now = func() time.Time { return time.Date(2026, 8, 28, 10, 30, 10, 0, time.UTC) }

	view, err := s.CurrentPeriod(wingoKey)
	require.NoError(t, err)

	assert.Equal(t, "2026082800000630", view.PeriodID)
	assert.Equal(t, domain.PeriodOpen, view.Status)
	assert.Equal(t, 50, view.Remaining)
	assert.Equal(t, time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC), view.StartTime)
}

func TestCurrentPeriodClosingInsideCutoff(t *testing.T) {
	s := newTestResultService(&fakeResultStore{stored: map[string]domain.Result{}}, &fakeBalances{})
	s.now = func() time.Time { return time.Date(2026, 8, 28, 10, 30, 57, 0, time.UTC) }

	view, err := s.CurrentPeriod(wingoKey)
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodClosing, view.Status)
}

func TestCurrentPeriodUnknownTrack(t *testing.T) {
	s := newTestResultService(&fakeResultStore{stored: map[string]domain.Result{}}, &fakeBalances{})

	_, err := s.CurrentPeriod(domain.PeriodKey{Game: domain.GameK3, Duration: 600, Timeline: "default"})
	assert.ErrorIs(t, err, domain.ErrUnknownGame)
}

func TestBalance(t *testing.T) {
	t.Run("known user", func(t *testing.T) {
		s := newTestResultService(&fakeResultStore{stored: map[string]domain.Result{}},
			&fakeBalances{balances: map[string]int64{"u1": 12345}})

		got, err := s.Balance(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(12345), got)
	})

	t.Run("unknown user reports zero", func(t *testing.T) {
		s := newTestResultService(&fakeResultStore{stored: map[string]domain.Result{}}, &fakeBalances{})

		got, err := s.Balance(context.Background(), "nobody")
		require.NoError(t, err)
		assert.Zero(t, got)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		s := newTestResultService(&fakeResultStore{stored: map[string]domain.Result{}},
			&fakeBalances{err: errors.New("connection refused")})

		_, err := s.Balance(context.Background(), "u1")
		assert.Error(t, err)
	})
}

func TestRecentResultsClampsLimit(t *testing.T) {
	stored := make(map[string]domain.Result)
	for i := 0; i < 30; i++ {
		id := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC).Format("20060102")
		stored[string(rune('a'+i))] = domain.Result{Key: wingoKey, PeriodID: id}
	}
	s := newTestResultService(&fakeResultStore{stored: stored}, &fakeBalances{})

	got, err := s.RecentResults(context.Background(), wingoKey, 0)
	require.NoError(t, err)
	assert.Len(t, got, 20) // default page size

	got, err = s.RecentResults(context.Background(), wingoKey, 5)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/round"
)

// PeriodView is the read-side snapshot of a track's current period.
type PeriodView struct {
	Key       domain.PeriodKey    `json:"-"`
	PeriodID  string              `json:"periodId"`
	Status    domain.PeriodStatus `json:"status"`
	Remaining int                 `json:"remaining"`
	StartTime time.Time           `json:"startTime"`
	EndTime   time.Time           `json:"endTime"`
}

// ResultService serves read queries: current periods, result history and
// account balances.
type ResultService struct {
	results  domain.ResultStore
	balances domain.BalanceStore
	cutoffs  map[domain.PeriodKey]int
	logger   *slog.Logger
	now      func() time.Time
}

// NewResultService creates a ResultService.
func NewResultService(results domain.ResultStore, balances domain.BalanceStore, cutoffs map[domain.PeriodKey]int, logger *slog.Logger) *ResultService {
	return &ResultService{
		results:  results,
		balances: balances,
		cutoffs:  cutoffs,
		logger:   logger.With("component", "result_service"),
		now:      time.Now,
	}
}

// CurrentPeriod returns the period containing now on the given track.
func (s *ResultService) CurrentPeriod(key domain.PeriodKey) (PeriodView, error) {
	cutoff, ok := s.cutoffs[key]
	if !ok {
		return PeriodView{}, fmt.Errorf("result_service: track %s: %w", key, domain.ErrUnknownGame)
	}

	now := s.now()
	period := round.PeriodAt(key, now)
	return PeriodView{
		Key:       key,
		PeriodID:  period.ID,
		Status:    round.StatusAt(period, cutoff, now),
		Remaining: period.Remaining(now),
		StartTime: period.Start,
		EndTime:   period.End,
	}, nil
}

// RecentResults returns the newest results for a track, capped at limit.
func (s *ResultService) RecentResults(ctx context.Context, key domain.PeriodKey, limit int) ([]domain.Result, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	results, err := s.results.ListRecent(ctx, key, limit)
	if err != nil {
		return nil, fmt.Errorf("result_service: recent results %s: %w", key, err)
	}
	return results, nil
}

// Result returns the settled outcome of one period.
func (s *ResultService) Result(ctx context.Context, key domain.PeriodKey, periodID string) (domain.Result, error) {
	r, err := s.results.Get(ctx, key, periodID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("result_service: result %s/%s: %w", key, periodID, err)
	}
	return r, nil
}

// Balance returns the user's balance in minor units. Unknown users report a
// zero balance rather than an error.
func (s *ResultService) Balance(ctx context.Context, userID string) (int64, error) {
	balance, err := s.balances.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("result_service: balance %q: %w", userID, err)
	}
	return balance, nil
}

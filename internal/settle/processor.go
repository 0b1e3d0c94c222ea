// Package settle resolves closed periods: it claims the period, makes one
// Result canonical, evaluates every pending bet against it, and applies the
// settlement batch transactionally. Every step is idempotent, so a crashed or
// duplicated pass converges on the same final state.
package settle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/game"
)

// claimTTL bounds how long a crashed settler can hold a period before another
// replica may take over.
const claimTTL = 30 * time.Second

// OutcomeSelector chooses the outcome for a period that has no Result yet.
type OutcomeSelector interface {
	Select(ctx context.Context, key domain.PeriodKey, periodID string) (domain.Result, error)
}

// Processor settles periods. Safe for concurrent use; cross-process exclusion
// per period comes from the lock manager.
type Processor struct {
	locks     domain.LockManager
	results   domain.ResultStore
	bets      domain.BetStore
	selector  OutcomeSelector
	overrides domain.OverrideCache
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Processor. overrides may be nil; when set, the period's
// override entry is cleared once settlement completes.
func New(locks domain.LockManager, results domain.ResultStore, bets domain.BetStore, sel OutcomeSelector, overrides domain.OverrideCache, logger *slog.Logger) *Processor {
	return &Processor{
		locks:     locks,
		results:   results,
		bets:      bets,
		selector:  sel,
		overrides: overrides,
		logger:    logger.With("component", "settle"),
		now:       time.Now,
	}
}

func claimKey(key domain.PeriodKey, periodID string) string {
	return "settle:" + key.String() + ":" + periodID
}

// Resolve settles one period end to end. When another replica holds the claim
// and has already produced a Result, the stored result is reported with
// AlreadyDone set; when the claim is held and no Result exists yet,
// domain.ErrLockHeld is returned so the caller can leave the period to the
// holder.
func (p *Processor) Resolve(ctx context.Context, period domain.Period) (domain.SettlementReport, error) {
	key, periodID := period.Key, period.ID

	unlock, err := p.locks.Acquire(ctx, claimKey(key, periodID), claimTTL)
	if err != nil {
		if errors.Is(err, domain.ErrLockHeld) {
			if r, getErr := p.results.Get(ctx, key, periodID); getErr == nil {
				return domain.SettlementReport{
					Key: key, PeriodID: periodID,
					Outcome: r.Outcome, SourceMode: r.SourceMode,
					AlreadyDone: true, CompletedAt: p.now(),
				}, nil
			}
			return domain.SettlementReport{}, fmt.Errorf("settle: %s/%s: %w", key, periodID, domain.ErrLockHeld)
		}
		return domain.SettlementReport{}, fmt.Errorf("settle: claim %s/%s: %w", key, periodID, err)
	}
	defer unlock()

	result, err := p.canonicalResult(ctx, key, periodID)
	if err != nil {
		return domain.SettlementReport{}, err
	}

	report, err := p.settleBets(ctx, result)
	if err != nil {
		return domain.SettlementReport{}, err
	}

	if p.overrides != nil {
		if err := p.overrides.Clear(ctx, key, periodID); err != nil {
			p.logger.Warn("clearing override entry failed",
				"key", key.String(), "periodId", periodID, "error", err)
		}
	}

	p.logger.Info("period settled",
		"key", key.String(), "periodId", periodID,
		"outcome", string(report.Outcome), "sourceMode", string(report.SourceMode),
		"settled", report.BetsSettled, "won", report.BetsWon, "lost", report.BetsLost,
		"totalPayout", report.TotalPayout)
	return report, nil
}

// canonicalResult returns the period's Result, selecting and persisting one
// when none exists. A concurrent insert loses the race cleanly: the stored
// row wins and the locally selected outcome is discarded.
func (p *Processor) canonicalResult(ctx context.Context, key domain.PeriodKey, periodID string) (domain.Result, error) {
	r, err := p.results.Get(ctx, key, periodID)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Result{}, fmt.Errorf("settle: load result %s/%s: %w", key, periodID, err)
	}

	selected, err := p.selector.Select(ctx, key, periodID)
	if err != nil {
		return domain.Result{}, fmt.Errorf("settle: select outcome %s/%s: %w", key, periodID, err)
	}

	created, canonical, err := p.results.Create(ctx, selected)
	if err != nil {
		return domain.Result{}, fmt.Errorf("settle: persist result %s/%s: %w", key, periodID, err)
	}
	if !created {
		p.logger.Info("adopting concurrently stored result",
			"key", key.String(), "periodId", periodID, "outcome", string(canonical.Outcome))
	}
	return canonical, nil
}

// settleBets evaluates all pending bets for the period against the result and
// applies them in one transaction. The guarded per-row update makes reruns
// no-ops for bets already settled.
func (p *Processor) settleBets(ctx context.Context, result domain.Result) (domain.SettlementReport, error) {
	key, periodID := result.Key, result.PeriodID

	tab, err := game.ForGame(key.Game)
	if err != nil {
		return domain.SettlementReport{}, err
	}

	pending, err := p.bets.ListPending(ctx, key, periodID)
	if err != nil {
		return domain.SettlementReport{}, fmt.Errorf("settle: list pending %s/%s: %w", key, periodID, err)
	}

	report := domain.SettlementReport{
		Key:        key,
		PeriodID:   periodID,
		Outcome:    result.Outcome,
		SourceMode: result.SourceMode,
	}

	settled := make([]domain.SettledBet, 0, len(pending))
	for _, bet := range pending {
		sb := domain.SettledBet{BetID: bet.ID, UserID: bet.UserID, Status: domain.BetLost}
		if tab.Wins(bet.Predicate, result.Outcome) {
			mult := tab.Multiplier(bet.Predicate, result.Outcome)
			sb.Status = domain.BetWon
			sb.Payout = decimal.NewFromInt(bet.NetAmount).Mul(mult).Round(0).IntPart()
			report.BetsWon++
			report.TotalPayout += sb.Payout
		} else {
			report.BetsLost++
		}
		settled = append(settled, sb)
	}

	applied, err := p.bets.SettleBatch(ctx, settled)
	if err != nil {
		return domain.SettlementReport{}, fmt.Errorf("settle: apply batch %s/%s: %w", key, periodID, err)
	}
	report.BetsSettled = applied
	report.CompletedAt = p.now()
	return report, nil
}

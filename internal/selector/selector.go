// Package selector decides the canonical outcome for a closed period. Two
// selection paths exist: a verifiable random draw when the period attracted
// enough distinct bettors, and a protection path that picks the outcome with
// the lowest total payout from the exposure ledger when it did not. An admin
// override short-circuits both.
package selector

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/game"
)

// DefaultThreshold is the minimum count of distinct bettors in a period for
// the random path to apply.
const DefaultThreshold = 5

// Selector chooses period outcomes. Safe for concurrent use.
type Selector struct {
	ledger     domain.ExposureLedger
	overrides  domain.OverrideCache
	entropy    EntropySource
	thresholds map[domain.GameType]int
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Selector. thresholds maps each game to its bettor-count gate;
// games without an entry use DefaultThreshold. overrides may be nil when the
// deployment has no admin surface.
func New(ledger domain.ExposureLedger, overrides domain.OverrideCache, entropy EntropySource, thresholds map[domain.GameType]int, logger *slog.Logger) *Selector {
	if entropy == nil {
		entropy = CryptoEntropy{}
	}
	return &Selector{
		ledger:     ledger,
		overrides:  overrides,
		entropy:    entropy,
		thresholds: thresholds,
		logger:     logger.With("component", "selector"),
		now:        time.Now,
	}
}

func (s *Selector) threshold(g domain.GameType) int {
	if t, ok := s.thresholds[g]; ok {
		return t
	}
	return DefaultThreshold
}

// Select returns the outcome for the period. The result is not persisted
// here; the settlement processor owns making it canonical.
func (s *Selector) Select(ctx context.Context, key domain.PeriodKey, periodID string) (domain.Result, error) {
	tab, err := game.ForGame(key.Game)
	if err != nil {
		return domain.Result{}, err
	}

	if r, ok, err := s.fromOverride(ctx, key, periodID); err != nil {
		return domain.Result{}, err
	} else if ok {
		return r, nil
	}

	bettors, err := s.ledger.UniqueBettorCount(ctx, key, periodID)
	if err != nil {
		// A dead ledger must never wedge resolution. Fall through to the
		// random path so the period still closes on time.
		s.logger.Warn("exposure ledger unreachable, selecting randomly",
			"key", key.String(), "periodId", periodID, "error", err)
		return s.selectRandom(ctx, tab, key, periodID)
	}

	if bettors >= s.threshold(key.Game) {
		return s.selectRandom(ctx, tab, key, periodID)
	}
	return s.selectProtected(ctx, tab, key, periodID)
}

func (s *Selector) fromOverride(ctx context.Context, key domain.PeriodKey, periodID string) (domain.Result, bool, error) {
	if s.overrides == nil {
		return domain.Result{}, false, nil
	}
	outcome, ok, err := s.overrides.Get(ctx, key, periodID)
	if err != nil {
		s.logger.Warn("override cache unreachable, ignoring overrides",
			"key", key.String(), "periodId", periodID, "error", err)
		return domain.Result{}, false, nil
	}
	if !ok {
		return domain.Result{}, false, nil
	}
	r := domain.Result{
		Key:        key,
		PeriodID:   periodID,
		Outcome:    outcome,
		SourceMode: domain.SourceOverride,
		ChosenAt:   s.now(),
	}
	if key.Game == domain.GameTrxWin {
		r.Proof = game.SynthesizeProof(periodID, outcome, r.ChosenAt)
	}
	s.logger.Info("outcome selected by admin override",
		"key", key.String(), "periodId", periodID, "outcome", string(outcome))
	return r, true, nil
}

// selectRandom draws from the verifiable entropy source. The hash-derived
// wheel takes the last decimal digit of the draw's digest; index games map
// the draw's seed onto the outcome space.
func (s *Selector) selectRandom(ctx context.Context, tab game.Table, key domain.PeriodKey, periodID string) (domain.Result, error) {
	e, err := s.entropy.Draw(ctx)
	if err != nil {
		return domain.Result{}, err
	}

	var outcome domain.Outcome
	if key.Game == domain.GameTrxWin {
		outcome, err = game.OutcomeFromHash(e.Hash)
		if err != nil {
			return domain.Result{}, fmt.Errorf("selector: %s/%s: %w", key, periodID, err)
		}
	} else {
		outcomes := tab.Outcomes()
		outcome = outcomes[e.Seed%uint64(len(outcomes))]
	}

	return domain.Result{
		Key:        key,
		PeriodID:   periodID,
		Outcome:    outcome,
		SourceMode: domain.SourceRandom,
		Proof:      e.Hash,
		ChosenAt:   s.now(),
	}, nil
}

// selectProtected picks the outcome minimizing total payout across the
// period's recorded exposure, breaking ties uniformly. An empty or
// unreadable snapshot falls back to the random path, since with no exposure
// every outcome costs the same.
func (s *Selector) selectProtected(ctx context.Context, tab game.Table, key domain.PeriodKey, periodID string) (domain.Result, error) {
	snapshot, err := s.ledger.Snapshot(ctx, key, periodID)
	if err != nil {
		s.logger.Warn("exposure snapshot failed, selecting randomly",
			"key", key.String(), "periodId", periodID, "error", err)
		return s.selectRandom(ctx, tab, key, periodID)
	}
	if len(snapshot) == 0 {
		return s.selectRandom(ctx, tab, key, periodID)
	}

	type entry struct {
		pred     domain.BetPredicate
		exposure int64
	}
	entries := make([]entry, 0, len(snapshot))
	for field, exposure := range snapshot {
		pred, err := domain.ParsePredicate(field)
		if err != nil {
			s.logger.Warn("skipping unparseable exposure field",
				"key", key.String(), "periodId", periodID, "field", field)
			continue
		}
		entries = append(entries, entry{pred: pred, exposure: exposure})
	}
	if len(entries) == 0 {
		return s.selectRandom(ctx, tab, key, periodID)
	}

	var (
		minimal []domain.Outcome
		minCost int64
	)
	for i, o := range tab.Outcomes() {
		var cost int64
		for _, e := range entries {
			if tab.Wins(e.pred, o) {
				cost += e.exposure
			}
		}
		if i == 0 || cost < minCost {
			minCost = cost
			minimal = minimal[:0]
			minimal = append(minimal, o)
		} else if cost == minCost {
			minimal = append(minimal, o)
		}
	}

	outcome := minimal[0]
	if len(minimal) > 1 {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(minimal))))
		if err != nil {
			return domain.Result{}, fmt.Errorf("selector: tie-break %s/%s: %w", key, periodID, err)
		}
		outcome = minimal[n.Int64()]
	}

	r := domain.Result{
		Key:        key,
		PeriodID:   periodID,
		Outcome:    outcome,
		SourceMode: domain.SourceProtected,
		ChosenAt:   s.now(),
	}
	if key.Game == domain.GameTrxWin {
		r.Proof = game.SynthesizeProof(periodID, outcome, r.ChosenAt)
	}
	s.logger.Info("outcome selected under protection",
		"key", key.String(), "periodId", periodID,
		"outcome", string(outcome), "minPayout", minCost, "ties", len(minimal))
	return r, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/game"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/round"
)

// overrideGrace extends an override entry's TTL past the period end so it is
// still readable when settlement runs, then self-expires.
const overrideGrace = 5 * time.Minute

// AdminService injects outcome overrides for periods that have not been
// settled yet.
type AdminService struct {
	overrides domain.OverrideCache
	results   domain.ResultStore
	logger    *slog.Logger
	now       func() time.Time
}

// NewAdminService creates an AdminService.
func NewAdminService(overrides domain.OverrideCache, results domain.ResultStore, logger *slog.Logger) *AdminService {
	return &AdminService{
		overrides: overrides,
		results:   results,
		logger:    logger.With("component", "admin_service"),
		now:       time.Now,
	}
}

// OverrideOutcome pins the outcome of a period. The outcome must belong to
// the game's outcome space, and the period must not be settled yet; an
// override arriving after a Result exists fails with domain.ErrOverrideTooLate.
func (s *AdminService) OverrideOutcome(ctx context.Context, key domain.PeriodKey, periodID string, outcome domain.Outcome) error {
	tab, err := game.ForGame(key.Game)
	if err != nil {
		return err
	}
	if !outcomeValid(tab, outcome) {
		return fmt.Errorf("admin_service: outcome %q not in %s outcome space", outcome, key.Game)
	}

	period, err := round.PeriodByID(key, periodID)
	if err != nil {
		return fmt.Errorf("admin_service: %w", err)
	}

	if _, err := s.results.Get(ctx, key, periodID); err == nil {
		return fmt.Errorf("admin_service: %s/%s: %w", key, periodID, domain.ErrOverrideTooLate)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("admin_service: check result %s/%s: %w", key, periodID, err)
	}

	ttl := period.End.Sub(s.now()) + overrideGrace
	if ttl < overrideGrace {
		ttl = overrideGrace
	}
	if err := s.overrides.Set(ctx, key, periodID, outcome, ttl); err != nil {
		return fmt.Errorf("admin_service: store override %s/%s: %w", key, periodID, err)
	}

	s.logger.Info("outcome override set",
		"key", key.String(), "periodId", periodID, "outcome", string(outcome))
	return nil
}

// ClearOverride removes a pending override.
func (s *AdminService) ClearOverride(ctx context.Context, key domain.PeriodKey, periodID string) error {
	if err := s.overrides.Clear(ctx, key, periodID); err != nil {
		return fmt.Errorf("admin_service: clear override %s/%s: %w", key, periodID, err)
	}
	return nil
}

func outcomeValid(tab game.Table, outcome domain.Outcome) bool {
	for _, o := range tab.Outcomes() {
		if o == outcome {
			return true
		}
	}
	return false
}

// Package service holds the application services: bet intake, admin outcome
// overrides, and the read-side queries the API surface exposes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/game"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/round"
)

// DefaultFeeBps is the platform fee retained from the gross stake, in basis
// points.
const DefaultFeeBps = 200

// PlaceBetRequest is one intake request. GrossAmount is in minor units.
type PlaceBetRequest struct {
	UserID      string
	Key         domain.PeriodKey
	Predicate   domain.BetPredicate
	GrossAmount int64
}

// BetService accepts bets against the currently open period of a track.
type BetService struct {
	bets    domain.BetStore
	ledger  domain.ExposureLedger
	cutoffs map[domain.PeriodKey]int
	feeBps  int64
	logger  *slog.Logger
	now     func() time.Time
}

// NewBetService creates a BetService. cutoffs maps each configured track to
// its pre-close cutoff in seconds; feeBps <= 0 falls back to DefaultFeeBps.
func NewBetService(bets domain.BetStore, ledger domain.ExposureLedger, cutoffs map[domain.PeriodKey]int, feeBps int64, logger *slog.Logger) *BetService {
	if feeBps <= 0 {
		feeBps = DefaultFeeBps
	}
	return &BetService{
		bets:    bets,
		ledger:  ledger,
		cutoffs: cutoffs,
		feeBps:  feeBps,
		logger:  logger.With("component", "bet_service"),
		now:     time.Now,
	}
}

// PlaceBet validates the request against the track's open period, persists
// the bet and records its potential payout in the exposure ledger. Requests
// arriving inside the cutoff window or after period end are rejected with
// domain.ErrBettingClosed.
func (s *BetService) PlaceBet(ctx context.Context, req PlaceBetRequest) (domain.Bet, error) {
	if req.GrossAmount <= 0 {
		return domain.Bet{}, fmt.Errorf("bet_service: gross amount %d: must be positive", req.GrossAmount)
	}

	cutoff, ok := s.cutoffs[req.Key]
	if !ok {
		return domain.Bet{}, fmt.Errorf("bet_service: track %s: %w", req.Key, domain.ErrUnknownGame)
	}

	tab, err := game.ForGame(req.Key.Game)
	if err != nil {
		return domain.Bet{}, err
	}
	odds, err := tab.Odds(req.Predicate)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("bet_service: %s: %w", req.Key, err)
	}

	now := s.now()
	period := round.PeriodAt(req.Key, now)
	if status := round.StatusAt(period, cutoff, now); status != domain.PeriodOpen {
		return domain.Bet{}, fmt.Errorf("bet_service: %s/%s is %s: %w",
			req.Key, period.ID, status, domain.ErrBettingClosed)
	}

	fee := req.GrossAmount * s.feeBps / 10000
	bet := domain.Bet{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Key:         req.Key,
		PeriodID:    period.ID,
		Predicate:   req.Predicate,
		GrossAmount: req.GrossAmount,
		PlatformFee: fee,
		NetAmount:   req.GrossAmount - fee,
		Odds:        odds,
		Status:      domain.BetPending,
		PlacedAt:    now,
	}

	if err := s.bets.Create(ctx, bet); err != nil {
		return domain.Bet{}, fmt.Errorf("bet_service: persist bet: %w", err)
	}

	if err := s.ledger.RecordBet(ctx, req.Key, period.ID, req.UserID, req.Predicate, bet.PotentialPayout()); err != nil {
		// The bet stands; a degraded ledger only weakens protection-mode
		// selection, which already tolerates a missing snapshot.
		s.logger.Error("recording exposure failed",
			"betId", bet.ID, "key", req.Key.String(), "periodId", period.ID, "error", err)
	}

	s.logger.Info("bet placed",
		"betId", bet.ID, "userId", req.UserID, "key", req.Key.String(),
		"periodId", period.ID, "predicate", req.Predicate.Key(),
		"gross", req.GrossAmount, "net", bet.NetAmount, "odds", odds.String())
	return bet, nil
}

// GetBet returns one bet by ID.
func (s *BetService) GetBet(ctx context.Context, id string) (domain.Bet, error) {
	bet, err := s.bets.GetByID(ctx, id)
	if err != nil {
		return domain.Bet{}, fmt.Errorf("bet_service: get bet %q: %w", id, err)
	}
	return bet, nil
}

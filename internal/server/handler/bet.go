package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/service"
)

// BetHandler serves bet intake and lookup.
type BetHandler struct {
	bets   *service.BetService
	logger *slog.Logger
}

// NewBetHandler creates a BetHandler.
func NewBetHandler(bets *service.BetService, logger *slog.Logger) *BetHandler {
	return &BetHandler{bets: bets, logger: logHandler(logger, "bet")}
}

type placeBetRequest struct {
	UserID    string `json:"userId"`
	Game      string `json:"game"`
	Duration  int    `json:"duration"`
	Timeline  string `json:"timeline"`
	Predicate string `json:"predicate"` // canonical form, e.g. "color:red" or "sum:11"
	Amount    int64  `json:"amount"`    // gross stake, minor units
}

// PlaceBet accepts a bet against the currently open period of a track.
// POST /api/bets
func (h *BetHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	var req placeBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.Duration <= 0 {
		writeError(w, http.StatusBadRequest, "duration must be a positive integer of seconds")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.Timeline == "" {
		req.Timeline = "default"
	}

	pred, err := domain.ParsePredicate(req.Predicate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	bet, err := h.bets.PlaceBet(r.Context(), service.PlaceBetRequest{
		UserID: req.UserID,
		Key: domain.PeriodKey{
			Game:     domain.GameType(req.Game),
			Duration: req.Duration,
			Timeline: req.Timeline,
		},
		Predicate:   pred,
		GrossAmount: req.Amount,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, betResponse(bet))
}

// GetBet returns one bet by ID.
// GET /api/bets/{id}
func (h *BetHandler) GetBet(w http.ResponseWriter, r *http.Request) {
	bet, err := h.bets.GetBet(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, betResponse(bet))
}

func betResponse(bet domain.Bet) map[string]any {
	resp := map[string]any{
		"id":        bet.ID,
		"userId":    bet.UserID,
		"game":      string(bet.Key.Game),
		"duration":  bet.Key.Duration,
		"timeline":  bet.Key.Timeline,
		"periodId":  bet.PeriodID,
		"predicate": bet.Predicate.Key(),
		"gross":     bet.GrossAmount,
		"fee":       bet.PlatformFee,
		"net":       bet.NetAmount,
		"odds":      bet.Odds.String(),
		"status":    string(bet.Status),
		"placedAt":  bet.PlacedAt,
	}
	if bet.Status != domain.BetPending {
		resp["payout"] = bet.Payout
		resp["settledAt"] = bet.SettledAt
	}
	return resp
}

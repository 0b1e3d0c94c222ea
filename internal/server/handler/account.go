package handler

import (
	"log/slog"
	"net/http"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/service"
)

// AccountHandler serves account balance lookups.
type AccountHandler struct {
	results *service.ResultService
	logger  *slog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(results *service.ResultService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{results: results, logger: logHandler(logger, "account")}
}

// Balance returns the user's balance in minor units.
// GET /api/accounts/{userId}/balance
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := pathParam(r, "userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	balance, err := h.results.Balance(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"userId":  userID,
		"balance": balance,
	})
}

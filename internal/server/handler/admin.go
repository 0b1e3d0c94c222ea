package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
	"github.com/Ravishek24/duewin-project-real-sub002/internal/service"
)

// AdminHandler serves outcome override management. The server mounts these
// routes behind the API-key middleware.
type AdminHandler struct {
	admin  *service.AdminService
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(admin *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logHandler(logger, "admin")}
}

type overrideRequest struct {
	Game     string `json:"game"`
	Duration int    `json:"duration"`
	Timeline string `json:"timeline"`
	PeriodID string `json:"periodId"`
	Outcome  string `json:"outcome"`
}

func (req overrideRequest) key() domain.PeriodKey {
	timeline := req.Timeline
	if timeline == "" {
		timeline = "default"
	}
	return domain.PeriodKey{
		Game:     domain.GameType(req.Game),
		Duration: req.Duration,
		Timeline: timeline,
	}
}

// SetOverride pins the outcome of an unsettled period.
// POST /api/admin/override
func (h *AdminHandler) SetOverride(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Duration <= 0 || req.PeriodID == "" || req.Outcome == "" {
		writeError(w, http.StatusBadRequest, "duration, periodId and outcome are required")
		return
	}

	err := h.admin.OverrideOutcome(r.Context(), req.key(), req.PeriodID, domain.Outcome(req.Outcome))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "override set"})
}

// ClearOverride removes a pending override.
// DELETE /api/admin/override
func (h *AdminHandler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Duration <= 0 || req.PeriodID == "" {
		writeError(w, http.StatusBadRequest, "duration and periodId are required")
		return
	}

	if err := h.admin.ClearOverride(r.Context(), req.key(), req.PeriodID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "override cleared"})
}

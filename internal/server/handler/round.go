package handler

import (
	"log/slog"
	"net/http"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/service"
)

// RoundHandler serves the round read surface: current period state and
// result history per track.
type RoundHandler struct {
	results *service.ResultService
	logger  *slog.Logger
}

// NewRoundHandler creates a RoundHandler.
func NewRoundHandler(results *service.ResultService, logger *slog.Logger) *RoundHandler {
	return &RoundHandler{results: results, logger: logHandler(logger, "round")}
}

// CurrentPeriod returns the running period of a track.
// GET /api/rounds/current?game=wingo&duration=60&timeline=default
func (h *RoundHandler) CurrentPeriod(w http.ResponseWriter, r *http.Request) {
	key, err := parseTrackKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.results.CurrentPeriod(key)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// RecentResults returns the latest settled outcomes of a track.
// GET /api/rounds/results?game=wingo&duration=60&limit=20
func (h *RoundHandler) RecentResults(w http.ResponseWriter, r *http.Request) {
	key, err := parseTrackKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.results.RecentResults(r.Context(), key, parseLimit(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(results))
	for _, res := range results {
		out = append(out, map[string]any{
			"periodId":   res.PeriodID,
			"outcome":    string(res.Outcome),
			"sourceMode": string(res.SourceMode),
			"proof":      res.Proof,
			"chosenAt":   res.ChosenAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

// Result returns one period's settled outcome.
// GET /api/rounds/results/{periodId}?game=wingo&duration=60
func (h *RoundHandler) Result(w http.ResponseWriter, r *http.Request) {
	key, err := parseTrackKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.results.Result(r.Context(), key, pathParam(r, "periodId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"periodId":   res.PeriodID,
		"outcome":    string(res.Outcome),
		"sourceMode": string(res.SourceMode),
		"proof":      res.Proof,
		"chosenAt":   res.ChosenAt,
	})
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Ravishek24/duewin-project-real-sub002/internal/domain"
)

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps domain sentinel errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrBettingClosed):
		writeError(w, http.StatusConflict, "betting is closed for this period")
	case errors.Is(err, domain.ErrOverrideTooLate):
		writeError(w, http.StatusConflict, "period already settled")
	case errors.Is(err, domain.ErrUnknownGame), errors.Is(err, domain.ErrUnknownPredicate):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseTrackKey extracts the track identity from query parameters. The
// timeline defaults to "default".
func parseTrackKey(r *http.Request) (domain.PeriodKey, error) {
	q := r.URL.Query()

	duration, err := strconv.Atoi(q.Get("duration"))
	if err != nil || duration <= 0 {
		return domain.PeriodKey{}, errors.New("duration must be a positive integer of seconds")
	}

	timeline := q.Get("timeline")
	if timeline == "" {
		timeline = "default"
	}

	return domain.PeriodKey{
		Game:     domain.GameType(q.Get("game")),
		Duration: duration,
		Timeline: timeline,
	}, nil
}

// parseLimit extracts a result-count cap from the query string.
// Defaults: limit=20 (max 100).
func parseLimit(r *http.Request) int {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}
	return limit
}

// pathParam extracts a named path parameter from the request using Go 1.22+
// built-in routing (http.Request.PathValue).
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}

// logHandler is a convenience to attach slog fields in handler code.
func logHandler(logger *slog.Logger, handler string) *slog.Logger {
	return logger.With(slog.String("handler", handler))
}

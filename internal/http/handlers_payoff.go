package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"fincast/internal/core"
	"fincast/internal/services"
)

// handlePayoff runs a debt payoff simulation and returns the month-end
// schedule.
func (s *Server) handlePayoff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req core.PayoffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	result, err := services.RunPayoff(req)
	if err != nil {
		slog.WarnContext(r.Context(), "Payoff rejected",
			"error", err,
			"method", string(req.Method),
			"component", "http")
		writeError(w, statusForError(err), err.Error())
		return
	}

	s.recordRun(r.Context(), "payoff", req, payoffSummary{
		TimeToPayoff: result.TimeToPayoff,
		Months:       len(result.Schedule),
	})
	writeJSON(w, http.StatusOK, result)
}

// payoffSummary is the compact form persisted in run history. The full
// schedule can be regenerated from the stored request.
type payoffSummary struct {
	TimeToPayoff core.TimeToPayoff `json:"time_to_payoff"`
	Months       int               `json:"months"`
}

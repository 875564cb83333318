package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"fincast/internal/core"
	"fincast/internal/services"
	"fincast/internal/storage"
)

// handleForecast runs a cash-flow simulation and returns the daily ledger.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req core.ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	result, err := services.RunForecast(req)
	if err != nil {
		slog.WarnContext(r.Context(), "Forecast rejected",
			"error", err,
			"component", "http")
		writeError(w, statusForError(err), err.Error())
		return
	}

	s.recordRun(r.Context(), "forecast", req, result.Summary)
	writeJSON(w, http.StatusOK, result)
}

// recordRun hands a finished run to the recorder. Recording is best effort:
// a failure is logged and the client still gets its result.
func (s *Server) recordRun(ctx context.Context, kind string, request, summary any) {
	if s.recorder == nil {
		return
	}

	reqJSON, err := json.Marshal(request)
	if err != nil {
		slog.ErrorContext(ctx, "Run request encoding failed", "error", err, "kind", kind, "component", "http")
		return
	}
	sumJSON, err := json.Marshal(summary)
	if err != nil {
		slog.ErrorContext(ctx, "Run summary encoding failed", "error", err, "kind", kind, "component", "http")
		return
	}

	rec := storage.RunRecord{
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		Request:   reqJSON,
		Summary:   sumJSON,
	}
	if err := s.recorder.RecordRun(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "Run recording failed", "error", err, "kind", kind, "component", "http")
	}
}

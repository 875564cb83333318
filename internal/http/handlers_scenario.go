package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fincast/internal/core"
	"fincast/internal/storage"
)

// scenarioRequest is the creation payload for a saved scenario.
type scenarioRequest struct {
	Name                   string          `json:"name"`
	Kind                   string          `json:"kind"`
	Request                json.RawMessage `json:"request"`
	RefreshIntervalSeconds int64           `json:"refresh_interval_seconds"`
}

// scenarioResponse is the wire form of a saved scenario.
type scenarioResponse struct {
	ID                     int64           `json:"id"`
	Name                   string          `json:"name"`
	Kind                   string          `json:"kind"`
	Request                json.RawMessage `json:"request"`
	RefreshIntervalSeconds int64           `json:"refresh_interval_seconds"`
	CreatedAt              time.Time       `json:"created_at"`
	LastRunAt              *time.Time      `json:"last_run_at"`
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	if s.scenarios == nil {
		writeError(w, http.StatusServiceUnavailable, "scenario storage not configured")
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.handleCreateScenario(w, r)
	case http.MethodGet:
		s.handleListScenarios(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "scenario name must not be empty")
		return
	}
	if err := validateScenarioPayload(req.Kind, req.Request); err != nil {
		status := statusForError(err)
		if errors.Is(err, errBadPayload) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	id, err := s.scenarios.SaveScenario(r.Context(), storage.Scenario{
		Name:            req.Name,
		Kind:            req.Kind,
		Request:         req.Request,
		RefreshInterval: time.Duration(req.RefreshIntervalSeconds) * time.Second,
	})
	if err != nil {
		writeError(w, http.StatusConflict, "scenario not saved: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.scenarios.ListScenarios(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list scenarios: "+err.Error())
		return
	}

	out := make([]scenarioResponse, 0, len(scenarios))
	for _, sc := range scenarios {
		out = append(out, scenarioResponse{
			ID:                     sc.ID,
			Name:                   sc.Name,
			Kind:                   sc.Kind,
			Request:                sc.Request,
			RefreshIntervalSeconds: int64(sc.RefreshInterval.Seconds()),
			CreatedAt:              sc.CreatedAt,
			LastRunAt:              sc.LastRunAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

var errBadPayload = errors.New("malformed scenario request payload")

// validateScenarioPayload checks that the embedded request parses and
// validates for its kind, so the refresh worker never chokes on it later.
func validateScenarioPayload(kind string, payload json.RawMessage) error {
	switch kind {
	case "forecast":
		var req core.ForecastRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("%w: %v", errBadPayload, err)
		}
		return req.Validate()
	case "payoff":
		var req core.PayoffRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return fmt.Errorf("%w: %v", errBadPayload, err)
		}
		return req.Validate()
	default:
		return fmt.Errorf("%w: scenario kind %q", core.ErrUnsupportedMethod, kind)
	}
}

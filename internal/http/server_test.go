package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fincast/internal/storage"
)

type fakeRecorder struct{ records []storage.RunRecord }

func (f *fakeRecorder) RecordRun(ctx context.Context, rec storage.RunRecord) error {
	f.records = append(f.records, rec)
	return nil
}

type fakeLister struct{ runs []storage.Run }

func (f *fakeLister) ListRuns(ctx context.Context, limit int) ([]storage.Run, error) {
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

type fakeScenarios struct{ saved []storage.Scenario }

func (f *fakeScenarios) SaveScenario(ctx context.Context, sc storage.Scenario) (int64, error) {
	f.saved = append(f.saved, sc)
	return int64(len(f.saved)), nil
}

func (f *fakeScenarios) ListScenarios(ctx context.Context) ([]storage.Scenario, error) {
	return f.saved, nil
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	srv := NewServer(":0", nil, nil, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doRequest(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rr.Code)
		}
	}
}

func TestForecastEndpoint(t *testing.T) {
	rec := &fakeRecorder{}
	srv := NewServer(":0", rec, nil, nil)

	body := `{
		"starting_balance": 1000.00,
		"start_date": "01-01-2024",
		"end_date": "01-07-2024",
		"paychecks": [{"name": "Salary", "amount": 2000.00, "start_date": "01-01-2024", "frequency": "monthly"}],
		"bills": [{"name": "Groceries", "amount": 500.00, "start_date": "01-01-2024", "frequency": "weekly"}]
	}`
	rr := doRequest(t, srv, http.MethodPost, "/api/forecast", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var result struct {
		Forecast []struct {
			Date        string  `json:"date"`
			Balance     float64 `json:"balance"`
			DailyChange float64 `json:"daily_change"`
		} `json:"forecast"`
		Summary struct {
			FinalBalance      float64 `json:"final_balance"`
			LowestBalance     float64 `json:"lowest_balance"`
			FirstNegativeDate *string `json:"first_negative_date"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Forecast) != 7 {
		t.Fatalf("forecast length = %d, want 7", len(result.Forecast))
	}
	if result.Forecast[0].Date != "01-01-2024" || result.Forecast[0].Balance != 2500.00 {
		t.Errorf("day 1 = %+v, want 01-01-2024 / 2500.00", result.Forecast[0])
	}
	if result.Summary.FinalBalance != 2500.00 || result.Summary.LowestBalance != 2500.00 {
		t.Errorf("summary = %+v", result.Summary)
	}
	if result.Summary.FirstNegativeDate != nil {
		t.Errorf("first_negative_date = %v, want null", *result.Summary.FirstNegativeDate)
	}

	if len(rec.records) != 1 || rec.records[0].Kind != "forecast" {
		t.Fatalf("recorded runs = %+v, want one forecast", rec.records)
	}
	if !json.Valid(rec.records[0].Request) || !json.Valid(rec.records[0].Summary) {
		t.Error("recorded run holds invalid JSON")
	}
}

func TestForecastRejectsBadInput(t *testing.T) {
	srv := NewServer(":0", nil, nil, nil)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"starting_balance":`, http.StatusBadRequest},
		{"iso date format", `{"starting_balance": 100.00, "start_date": "2024-01-01", "end_date": "01-07-2024"}`, http.StatusBadRequest},
		{"reversed range", `{"starting_balance": 100.00, "start_date": "01-07-2024", "end_date": "01-01-2024"}`, http.StatusUnprocessableEntity},
		{"missing dates", `{"starting_balance": 100.00}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(t, srv, http.MethodPost, "/api/forecast", tc.body)
			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tc.want, rr.Body.String())
			}
		})
	}

	rr := doRequest(t, srv, http.MethodGet, "/api/forecast", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rr.Code)
	}
}

func TestPayoffEndpoint(t *testing.T) {
	rec := &fakeRecorder{}
	srv := NewServer(":0", rec, nil, nil)

	body := `{
		"start_date": "01-15-2024",
		"method": "snowball",
		"extra_payment": 200.00,
		"debt": [
			{"name": "Card A", "due_date": "01-10-2024", "current_balance": 500.00, "apr": 0, "minimum_payment": 100.00},
			{"name": "Card B", "due_date": "01-20-2024", "current_balance": 1000.00, "apr": 0, "minimum_payment": 100.00}
		]
	}`
	rr := doRequest(t, srv, http.MethodPost, "/api/payoff", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var result struct {
		Schedule []struct {
			Date      string  `json:"date"`
			TotalDebt float64 `json:"total_debt"`
		} `json:"schedule"`
		TimeToPayoff struct {
			Years  int `json:"years"`
			Months int `json:"months"`
			Days   int `json:"days"`
		} `json:"time_to_payoff"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Schedule) == 0 {
		t.Fatal("schedule is empty")
	}
	if result.TimeToPayoff.Years != 0 {
		t.Errorf("time_to_payoff = %+v", result.TimeToPayoff)
	}

	if len(rec.records) != 1 || rec.records[0].Kind != "payoff" {
		t.Fatalf("recorded runs = %+v, want one payoff", rec.records)
	}
}

func TestPayoffRejectsBadInput(t *testing.T) {
	srv := NewServer(":0", nil, nil, nil)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"unknown method", `{"start_date": "01-15-2024", "method": "tsunami", "extra_payment": 0, "debt": []}`, http.StatusUnprocessableEntity},
		{"negative extra", `{"start_date": "01-15-2024", "method": "snowball", "extra_payment": -5.00, "debt": []}`, http.StatusUnprocessableEntity},
		{"nonconvergent", `{
			"start_date": "01-15-2024",
			"method": "avalanche",
			"extra_payment": 0,
			"debt": [{"name": "Card", "due_date": "01-10-2024", "current_balance": 10000.00, "apr": 40.0, "minimum_payment": 0.01}]
		}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(t, srv, http.MethodPost, "/api/payoff", tc.body)
			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tc.want, rr.Body.String())
			}
		})
	}
}

func TestListRuns(t *testing.T) {
	srv := NewServer(":0", nil, nil, nil)
	rr := doRequest(t, srv, http.MethodGet, "/api/runs", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("no store: status = %d, want 503", rr.Code)
	}

	lister := &fakeLister{runs: []storage.Run{
		{ID: 2, Kind: "payoff", Request: json.RawMessage(`{}`), Summary: json.RawMessage(`{}`)},
		{ID: 1, Kind: "forecast", Request: json.RawMessage(`{}`), Summary: json.RawMessage(`{}`)},
	}}
	srv = NewServer(":0", nil, lister, nil)

	rr = doRequest(t, srv, http.MethodGet, "/api/runs?limit=1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var runs []storage.Run
	if err := json.Unmarshal(rr.Body.Bytes(), &runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != 2 {
		t.Errorf("runs = %+v, want only id 2", runs)
	}
}

func TestScenarioEndpoints(t *testing.T) {
	srv := NewServer(":0", nil, nil, nil)
	rr := doRequest(t, srv, http.MethodGet, "/api/scenarios", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("no store: status = %d, want 503", rr.Code)
	}

	store := &fakeScenarios{}
	srv = NewServer(":0", nil, nil, store)

	valid := `{
		"name": "rainy day",
		"kind": "forecast",
		"refresh_interval_seconds": 3600,
		"request": {"starting_balance": 100.00, "start_date": "01-01-2024", "end_date": "02-01-2024"}
	}`
	rr = doRequest(t, srv, http.MethodPost, "/api/scenarios", valid)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if len(store.saved) != 1 || store.saved[0].Name != "rainy day" {
		t.Fatalf("saved = %+v", store.saved)
	}

	cases := []struct {
		name string
		body string
		want int
	}{
		{"empty name", `{"name": " ", "kind": "forecast", "request": {}}`, http.StatusUnprocessableEntity},
		{"unknown kind", `{"name": "x", "kind": "budget", "request": {}}`, http.StatusUnprocessableEntity},
		{"bad payload", `{"name": "x", "kind": "forecast", "request": {"start_date": 42}}`, http.StatusBadRequest},
		{"invalid embedded request", `{"name": "x", "kind": "payoff", "request": {"start_date": "01-15-2024", "method": "nope", "debt": []}}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(t, srv, http.MethodPost, "/api/scenarios", tc.body)
			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tc.want, rr.Body.String())
			}
		})
	}

	rr = doRequest(t, srv, http.MethodGet, "/api/scenarios", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var listed []scenarioResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "rainy day" || listed[0].RefreshIntervalSeconds != 3600 {
		t.Errorf("listed = %+v", listed)
	}
}

package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "fincast.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndListRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveRun(ctx, RunRecord{
		Kind:    "forecast",
		Request: json.RawMessage(`{"starting_balance":1000.00}`),
		Summary: json.RawMessage(`{"final_balance":2500.00}`),
	})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id == 0 {
		t.Fatal("SaveRun returned zero id")
	}

	if err := store.RecordRun(ctx, RunRecord{
		Kind:    "payoff",
		Request: json.RawMessage(`{}`),
		Summary: json.RawMessage(`{}`),
	}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns = %d runs, want 2", len(runs))
	}
	// Newest first.
	if runs[0].Kind != "payoff" || runs[1].Kind != "forecast" {
		t.Errorf("run order = %s, %s; want payoff, forecast", runs[0].Kind, runs[1].Kind)
	}

	limited, err := store.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited ListRuns = %d runs, want 1", len(limited))
	}
}

func TestScenarioLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveScenario(ctx, Scenario{
		Name:            "monthly budget",
		Kind:            "forecast",
		Request:         json.RawMessage(`{"starting_balance":500.00}`),
		RefreshInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("SaveScenario: %v", err)
	}

	// Duplicate names are rejected by the unique constraint.
	if _, err := store.SaveScenario(ctx, Scenario{
		Name:    "monthly budget",
		Kind:    "forecast",
		Request: json.RawMessage(`{}`),
	}); err == nil {
		t.Error("duplicate scenario name accepted")
	}

	scenarios, err := store.ListScenarios(ctx)
	if err != nil {
		t.Fatalf("ListScenarios: %v", err)
	}
	if len(scenarios) != 1 || scenarios[0].Name != "monthly budget" {
		t.Fatalf("ListScenarios = %+v", scenarios)
	}
	if scenarios[0].RefreshInterval != time.Hour {
		t.Errorf("refresh interval = %v, want 1h", scenarios[0].RefreshInterval)
	}
	if scenarios[0].LastRunAt != nil {
		t.Errorf("fresh scenario has last_run_at %v", scenarios[0].LastRunAt)
	}

	now := time.Now().UTC()

	// Never-run scenarios are always due.
	due, err := store.DueScenarios(ctx, now)
	if err != nil {
		t.Fatalf("DueScenarios: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("due = %d scenarios, want 1", len(due))
	}

	if err := store.TouchScenario(ctx, id, now); err != nil {
		t.Fatalf("TouchScenario: %v", err)
	}

	due, err = store.DueScenarios(ctx, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("DueScenarios after touch: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("scenario due %d minutes after run with 1h interval", 1)
	}

	due, err = store.DueScenarios(ctx, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("DueScenarios after interval: %v", err)
	}
	if len(due) != 1 {
		t.Errorf("scenario not due after interval elapsed")
	}
}

// Package worker persists run records from the broker and re-runs saved
// scenarios on a schedule.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fincast/internal/amqp"
	"fincast/internal/core"
	"fincast/internal/services"
	"fincast/internal/storage"
)

// Store is the slice of the SQLite store the worker needs.
type Store interface {
	SaveRun(ctx context.Context, rec storage.RunRecord) (int64, error)
	DueScenarios(ctx context.Context, now time.Time) ([]storage.Scenario, error)
	TouchScenario(ctx context.Context, id int64, ranAt time.Time) error
}

// RefreshWorker consumes run-recorded messages and refreshes due scenarios.
type RefreshWorker struct {
	store Store
}

func NewRefreshWorker(store Store) *RefreshWorker {
	return &RefreshWorker{store: store}
}

// HandleRunRecorded persists one run record delivered by the broker.
func (w *RefreshWorker) HandleRunRecorded(ctx context.Context, msg *amqp.RunRecordedMessage) error {
	id, err := w.store.SaveRun(ctx, storage.RunRecord{
		Kind:      msg.Kind,
		CreatedAt: msg.CreatedAt,
		Request:   msg.Request,
		Summary:   msg.Summary,
	})
	if err != nil {
		return fmt.Errorf("save run record: %w", err)
	}

	slog.InfoContext(ctx, "Run record persisted",
		"id", id,
		"kind", msg.Kind,
		"component", "worker")
	return nil
}

// RefreshDueScenarios re-runs every scenario whose interval has elapsed.
// One broken scenario never blocks the rest; failures are joined into the
// returned error.
func (w *RefreshWorker) RefreshDueScenarios(ctx context.Context, now time.Time) error {
	due, err := w.store.DueScenarios(ctx, now)
	if err != nil {
		return fmt.Errorf("load due scenarios: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Refreshing scenarios", "count", len(due), "component", "worker")

	var errs []error
	for _, sc := range due {
		if err := w.refreshScenario(ctx, sc, now); err != nil {
			slog.ErrorContext(ctx, "Scenario refresh failed",
				"error", err,
				"scenario", sc.Name,
				"component", "worker")
			errs = append(errs, fmt.Errorf("scenario %q: %w", sc.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (w *RefreshWorker) refreshScenario(ctx context.Context, sc storage.Scenario, now time.Time) error {
	summary, err := runScenario(sc)

	// Stamp the scenario even when the simulation fails, so a bad one
	// waits out its interval instead of failing every tick.
	if touchErr := w.store.TouchScenario(ctx, sc.ID, now); touchErr != nil {
		return fmt.Errorf("touch scenario: %w", touchErr)
	}
	if err != nil {
		return err
	}

	if _, err := w.store.SaveRun(ctx, storage.RunRecord{
		Kind:      sc.Kind,
		CreatedAt: now,
		Request:   sc.Request,
		Summary:   summary,
	}); err != nil {
		return fmt.Errorf("save refreshed run: %w", err)
	}

	slog.InfoContext(ctx, "Scenario refreshed",
		"scenario", sc.Name,
		"kind", sc.Kind,
		"component", "worker")
	return nil
}

// runScenario executes the scenario's stored request and returns the
// summary to persist.
func runScenario(sc storage.Scenario) (json.RawMessage, error) {
	switch sc.Kind {
	case "forecast":
		var req core.ForecastRequest
		if err := json.Unmarshal(sc.Request, &req); err != nil {
			return nil, fmt.Errorf("decode forecast request: %w", err)
		}
		result, err := services.RunForecast(req)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result.Summary)
	case "payoff":
		var req core.PayoffRequest
		if err := json.Unmarshal(sc.Request, &req); err != nil {
			return nil, fmt.Errorf("decode payoff request: %w", err)
		}
		result, err := services.RunPayoff(req)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			TimeToPayoff core.TimeToPayoff `json:"time_to_payoff"`
			Months       int               `json:"months"`
		}{result.TimeToPayoff, len(result.Schedule)})
	default:
		return nil, fmt.Errorf("unknown scenario kind %q", sc.Kind)
	}
}

// Package storage persists simulation run history and saved scenarios in
// SQLite. The store is an optional collaborator: the simulators never
// depend on it.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// RunRecord is one completed simulation run awaiting persistence.
type RunRecord struct {
	Kind      string
	CreatedAt time.Time
	Request   json.RawMessage
	Summary   json.RawMessage
}

// Run is a persisted run record.
type Run struct {
	ID        int64           `json:"id"`
	Kind      string          `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
	Request   json.RawMessage `json:"request"`
	Summary   json.RawMessage `json:"summary"`
}

// Scenario is a named, saved simulation request that the refresh worker
// re-runs periodically.
type Scenario struct {
	ID              int64
	Name            string
	Kind            string
	Request         json.RawMessage
	RefreshInterval time.Duration
	CreatedAt       time.Time
	LastRunAt       *time.Time
}

// Store wraps the SQLite database holding runs and scenarios.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the database at dbPath and applies
// pending migrations.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun inserts a run record and returns its id.
func (s *Store) SaveRun(ctx context.Context, rec RunRecord) (int64, error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (kind, created_at, request, summary) VALUES (?, ?, ?, ?)`,
		rec.Kind, createdAt.UTC().Format(timestampLayout), string(rec.Request), string(rec.Summary))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run insert id: %w", err)
	}

	slog.InfoContext(ctx, "Run saved",
		"id", id,
		"kind", rec.Kind,
		"component", "storage")
	return id, nil
}

// RecordRun persists a run record, discarding the generated id. It exists
// so the store satisfies the same recording interface as the AMQP
// publishing path.
func (s *Store) RecordRun(ctx context.Context, rec RunRecord) error {
	_, err := s.SaveRun(ctx, rec)
	return err
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, created_at, request, summary FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt, request, summary string
		if err := rows.Scan(&run.ID, &run.Kind, &createdAt, &request, &summary); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = parseTimestamp(createdAt)
		run.Request = json.RawMessage(request)
		run.Summary = json.RawMessage(summary)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveScenario inserts a named scenario and returns its id.
func (s *Store) SaveScenario(ctx context.Context, sc Scenario) (int64, error) {
	interval := sc.RefreshInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO scenarios (name, kind, request, refresh_interval_seconds) VALUES (?, ?, ?, ?)`,
		sc.Name, sc.Kind, string(sc.Request), int64(interval.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("insert scenario: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("scenario insert id: %w", err)
	}

	slog.InfoContext(ctx, "Scenario saved",
		"id", id,
		"name", sc.Name,
		"kind", sc.Kind,
		"component", "storage")
	return id, nil
}

// ListScenarios returns every saved scenario, oldest first.
func (s *Store) ListScenarios(ctx context.Context) ([]Scenario, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, kind, request, refresh_interval_seconds, created_at, last_run_at
		 FROM scenarios ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()
	return scanScenarios(rows)
}

// DueScenarios returns scenarios whose refresh interval has elapsed since
// their last run (or that have never run).
func (s *Store) DueScenarios(ctx context.Context, now time.Time) ([]Scenario, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, kind, request, refresh_interval_seconds, created_at, last_run_at
		 FROM scenarios
		 WHERE last_run_at IS NULL
		    OR strftime('%s', ?) - strftime('%s', last_run_at) >= refresh_interval_seconds
		 ORDER BY id`,
		now.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, fmt.Errorf("due scenarios: %w", err)
	}
	defer rows.Close()
	return scanScenarios(rows)
}

// TouchScenario stamps a scenario's last run time.
func (s *Store) TouchScenario(ctx context.Context, id int64, ranAt time.Time) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE scenarios SET last_run_at = ? WHERE id = ?`,
		ranAt.UTC().Format("2006-01-02 15:04:05"), id); err != nil {
		return fmt.Errorf("touch scenario %d: %w", id, err)
	}
	return nil
}

func scanScenarios(rows *sql.Rows) ([]Scenario, error) {
	var scenarios []Scenario
	for rows.Next() {
		var sc Scenario
		var request, createdAt string
		var intervalSeconds int64
		var lastRunAt sql.NullString
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Kind, &request, &intervalSeconds, &createdAt, &lastRunAt); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		sc.Request = json.RawMessage(request)
		sc.RefreshInterval = time.Duration(intervalSeconds) * time.Second
		sc.CreatedAt = parseTimestamp(createdAt)
		if lastRunAt.Valid {
			t := parseTimestamp(lastRunAt.String)
			sc.LastRunAt = &t
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, rows.Err()
}

// timestampLayout matches SQLite's CURRENT_TIMESTAMP output.
const timestampLayout = "2006-01-02 15:04:05"

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

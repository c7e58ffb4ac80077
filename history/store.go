// Package history provides SQLite-based persistence for conformance check
// runs, so that fitness and precision scores can be compared across
// invocations of the CLI against evolving models and logs.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store handles SQLite database operations for conformance run logging.
type Store struct {
	db *sql.DB
}

// Run represents one conformance-checking invocation.
type Run struct {
	ID          string    `json:"id"`
	ModelPath   string    `json:"model_path"`
	LogPath     string    `json:"log_path"`
	StartedAt   time.Time `json:"started_at"`
	TotalTraces int       `json:"total_traces"`
	Fitness     float64   `json:"fitness"`
	Precision   float64   `json:"precision"`
	FScore      float64   `json:"f_score"`
}

// New opens (creating if necessary) the SQLite database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		model_path TEXT NOT NULL,
		log_path TEXT NOT NULL,
		started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		total_traces INTEGER DEFAULT 0,
		fitness REAL DEFAULT 0,
		precision REAL DEFAULT 0,
		f_score REAL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS trace_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		case_id TEXT NOT NULL,
		fitness REAL NOT NULL,
		fitting INTEGER NOT NULL,
		missing_tokens INTEGER DEFAULT 0,
		remaining_tokens INTEGER DEFAULT 0,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_trace_results_run ON trace_results(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores a completed run and its per-trace fitness results.
func (s *Store) RecordRun(run Run, traces []TraceRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, model_path, log_path, started_at, total_traces, fitness, precision, f_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ModelPath, run.LogPath, run.StartedAt, run.TotalTraces,
		run.Fitness, run.Precision, run.FScore,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, t := range traces {
		_, err := tx.Exec(
			`INSERT INTO trace_results (run_id, case_id, fitness, fitting, missing_tokens, remaining_tokens)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, t.CaseID, t.Fitness, t.Fitting, t.MissingTokens, t.RemainingTokens,
		)
		if err != nil {
			return fmt.Errorf("insert trace result: %w", err)
		}
	}

	return tx.Commit()
}

// TraceRecord is the per-trace slice of a Run persisted to trace_results.
type TraceRecord struct {
	CaseID          string
	Fitness         float64
	Fitting         bool
	MissingTokens   int
	RemainingTokens int
}

// RecentRuns returns the most recently started runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, model_path, log_path, started_at, total_traces, fitness, precision, f_score
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ModelPath, &r.LogPath, &r.StartedAt,
			&r.TotalTraces, &r.Fitness, &r.Precision, &r.FScore); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, nil
}

// ExportRunJSON exports a run and its trace results as JSON.
func (s *Store) ExportRunJSON(runID string) ([]byte, error) {
	row := s.db.QueryRow(
		`SELECT id, model_path, log_path, started_at, total_traces, fitness, precision, f_score
		 FROM runs WHERE id = ?`, runID,
	)
	var run Run
	if err := row.Scan(&run.ID, &run.ModelPath, &run.LogPath, &run.StartedAt,
		&run.TotalTraces, &run.Fitness, &run.Precision, &run.FScore); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT case_id, fitness, fitting, missing_tokens, remaining_tokens
		 FROM trace_results WHERE run_id = ?`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var traces []TraceRecord
	for rows.Next() {
		var t TraceRecord
		if err := rows.Scan(&t.CaseID, &t.Fitness, &t.Fitting, &t.MissingTokens, &t.RemainingTokens); err != nil {
			return nil, err
		}
		traces = append(traces, t)
	}

	export := map[string]any{
		"run":    run,
		"traces": traces,
	}
	return json.MarshalIndent(export, "", "  ")
}

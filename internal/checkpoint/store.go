// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package checkpoint persists pipeline runs to SQLite: a per-pass snapshot
// trail and the final Run Report, keyed by run ID. Checkpointing is
// optional and never required for run correctness; the orchestrator treats
// store errors as warnings.
package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/research-pipeline/internal/pipeline"
	"github.com/pdiddy/research-pipeline/pkg/types"
)

const dbFile = "runs.db"

// ErrRunNotFound reports a run ID with no stored report.
var ErrRunNotFound = errors.New("checkpoint: run not found")

// Store manages the run checkpoint SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the checkpoint database at dir/runs.db, creating
// the schema if it does not exist.
func Open(cfg types.CheckpointConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "checkpoints"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating checkpoint directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			requirements TEXT,
			iterations INTEGER NOT NULL,
			converged INTEGER NOT NULL,
			report TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS passes (
			run_id TEXT NOT NULL,
			iteration INTEGER NOT NULL,
			content TEXT NOT NULL,
			convergence_score REAL NOT NULL,
			converged INTEGER NOT NULL,
			scores TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (run_id, iteration)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_passes_run_id ON passes(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SavePass records one pass snapshot. Re-running a pass for the same run
// ID overwrites the earlier snapshot.
func (s *Store) SavePass(ctx context.Context, runID string, snap pipeline.PassSnapshot) error {
	scores, err := json.Marshal(snap.Scores)
	if err != nil {
		return fmt.Errorf("marshaling scores: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO passes (run_id, iteration, content, convergence_score, converged, scores, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, iteration) DO UPDATE SET
			 content = excluded.content,
			 convergence_score = excluded.convergence_score,
			 converged = excluded.converged,
			 scores = excluded.scores,
			 created_at = excluded.created_at`,
		runID, snap.Iteration, snap.Content, snap.ConvergenceScore,
		boolToInt(snap.Converged), string(scores), now())
	if err != nil {
		return fmt.Errorf("saving pass %d for run %s: %w", snap.Iteration, runID, err)
	}
	return nil
}

// SaveReport stores the final Run Report, replacing any earlier report for
// the same run ID.
func (s *Store) SaveReport(ctx context.Context, runID string, report *types.RunReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	ts := now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, topic, requirements, iterations, converged, report, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
			 topic = excluded.topic,
			 requirements = excluded.requirements,
			 iterations = excluded.iterations,
			 converged = excluded.converged,
			 report = excluded.report,
			 updated_at = excluded.updated_at`,
		runID, report.Topic, report.Requirements, report.Iterations,
		boolToInt(report.Converged), string(data), ts, ts)
	if err != nil {
		return fmt.Errorf("saving report for run %s: %w", runID, err)
	}
	return nil
}

// LoadReport returns the stored Run Report for a run ID.
func (s *Store) LoadReport(ctx context.Context, runID string) (*types.RunReport, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT report FROM runs WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading report for run %s: %w", runID, err)
	}

	var report types.RunReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("parsing stored report for run %s: %w", runID, err)
	}
	return &report, nil
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	RunID      string
	Topic      string
	Iterations int
	Converged  bool
	UpdatedAt  string
}

// ListRuns returns stored runs, most recently updated first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, topic, iterations, converged, updated_at
		 FROM runs ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var converged int
		if err := rows.Scan(&r.RunID, &r.Topic, &r.Iterations, &converged, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		r.Converged = converged != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestPass returns the most recent pass snapshot for a run, or
// ErrRunNotFound when the run has no snapshots. Used to seed resumption.
func (s *Store) LatestPass(ctx context.Context, runID string) (pipeline.PassSnapshot, error) {
	var (
		snap      pipeline.PassSnapshot
		converged int
		scores    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT iteration, content, convergence_score, converged, scores
		 FROM passes WHERE run_id = ? ORDER BY iteration DESC LIMIT 1`,
		runID).Scan(&snap.Iteration, &snap.Content, &snap.ConvergenceScore, &converged, &scores)
	if errors.Is(err, sql.ErrNoRows) {
		return pipeline.PassSnapshot{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return pipeline.PassSnapshot{}, fmt.Errorf("loading latest pass for run %s: %w", runID, err)
	}

	snap.Converged = converged != 0
	if err := json.Unmarshal([]byte(scores), &snap.Scores); err != nil {
		return pipeline.PassSnapshot{}, fmt.Errorf("parsing stored scores for run %s: %w", runID, err)
	}
	return snap, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

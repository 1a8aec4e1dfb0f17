// CLAUDE:SUMMARY CRUD for the runs table: insert, list newest-first, fetch by id.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hazyhaar/domgrade/dbopen"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("store: run not found")

// Run is one persisted evaluation run. Report holds the serialised report
// JSON; it is empty on listing and populated on a by-id fetch.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	Passed    bool      `json:"passed"`
	Report    []byte    `json:"report,omitempty"`
}

// InsertRun persists a completed run. Writes go through dbopen.Exec so a
// concurrent writer holding the WAL lock triggers a retry, not a failure.
func (s *Store) InsertRun(ctx context.Context, r Run) error {
	_, err := dbopen.Exec(ctx, s.DB,
		`INSERT INTO runs (id, source, created_at, passed, report_json) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Source, r.CreatedAt.UTC().Format(time.RFC3339Nano), boolToInt(r.Passed), string(r.Report))
	if err != nil {
		return fmt.Errorf("store: insert run %s: %w", r.ID, err)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first, without report bodies.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, source, created_at, passed FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt string
		var passed int
		if err := rows.Scan(&r.ID, &r.Source, &createdAt, &passed); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		r.Passed = passed != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun fetches one run with its full report body.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	var r Run
	var createdAt, report string
	var passed int
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, source, created_at, passed, report_json FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.Source, &createdAt, &passed, &report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get run %s: %w", id, err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	r.Passed = passed != 0
	r.Report = []byte(report)
	return &r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

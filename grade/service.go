// CLAUDE:SUMMARY Service wrapping the engine with SQLite run persistence and history lookups.
package grade

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/domgrade/grade/internal/store"
)

// ErrRunNotFound is returned by GetReport for an unknown run id.
var ErrRunNotFound = store.ErrNotFound

// RunSummary is one run-history entry, without the report body.
type RunSummary struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	Passed    bool      `json:"passed"`
}

// Service couples the evaluation engine with run persistence. With an empty
// database path it degrades to a stateless engine wrapper.
type Service struct {
	Engine *Engine

	store *store.Store
	log   *slog.Logger
}

// NewService creates a service. dbPath is the SQLite run-history database;
// empty disables persistence.
func NewService(cfg Config, dbPath string) (*Service, error) {
	cfg.defaults()
	svc := &Service{Engine: New(cfg), log: cfg.Logger}
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("grade: open run store: %w", err)
		}
		svc.store = st
	}
	return svc, nil
}

// Close releases the run store, if any.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Evaluate runs the engine and persists the resulting report.
func (s *Service) Evaluate(ctx context.Context, in Input) (*Report, error) {
	report, err := s.Engine.Evaluate(ctx, in)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		body, err := json.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("grade: marshal report: %w", err)
		}
		run := store.Run{
			ID:        report.ID,
			Source:    report.Source,
			CreatedAt: report.CreatedAt,
			Passed:    report.Passed,
			Report:    body,
		}
		if err := s.store.InsertRun(ctx, run); err != nil {
			// The evaluation itself succeeded; log and return the report.
			s.log.Error("persist run failed", "run", report.ID, "error", err)
		}
	}
	return report, nil
}

// Runs lists recent runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	if s.store == nil {
		return nil, fmt.Errorf("grade: run history disabled")
	}
	rows, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	summaries := make([]RunSummary, len(rows))
	for i, r := range rows {
		summaries[i] = RunSummary{ID: r.ID, Source: r.Source, CreatedAt: r.CreatedAt, Passed: r.Passed}
	}
	return summaries, nil
}

// GetReport fetches one persisted report by run id.
func (s *Service) GetReport(ctx context.Context, id string) (*Report, error) {
	if s.store == nil {
		return nil, fmt.Errorf("grade: run history disabled")
	}
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	var report Report
	if err := json.Unmarshal(run.Report, &report); err != nil {
		return nil, fmt.Errorf("grade: unmarshal report %s: %w", id, err)
	}
	return &report, nil
}

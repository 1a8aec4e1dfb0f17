// CLAUDE:SUMMARY Evaluation engine: per-viewport fan-out of extraction, rules, layout matching and pixel diff into one report.
// Package grade orchestrates a full evaluation of one HTML document: per
// viewport it extracts a layout snapshot, runs the responsive rule battery,
// optionally scores layout similarity against a reference snapshot and
// optionally diffs a screenshot against a ground-truth image, then assembles
// everything into an immutable report.
package grade

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/domgrade/layout"
	"github.com/hazyhaar/domgrade/pixdiff"
	"github.com/hazyhaar/domgrade/rules"
)

// ViewportInput is the material gathered for one viewport. Reference,
// Screenshot and GroundTruth are optional; the corresponding report sections
// are omitted when absent.
type ViewportInput struct {
	Capture     *layout.PageCapture
	Reference   *layout.Snapshot
	Screenshot  image.Image
	GroundTruth image.Image
}

// Input is one evaluation request: a source label plus per-viewport material.
type Input struct {
	Source    string
	Viewports []ViewportInput
}

// ViewportReport holds everything measured at one viewport. Error carries a
// viewport-local failure (broken capture, mismatched reference); it never
// suppresses the other viewports' results.
type ViewportReport struct {
	Viewport    layout.Viewport     `json:"viewport"`
	Components  int                 `json:"components"`
	Diagnostics []layout.Diagnostic `json:"diagnostics,omitempty"`
	Rules       []rules.Result      `json:"rules,omitempty"`
	Similarity  *layout.Similarity  `json:"similarity,omitempty"`
	PixelDiff   *pixdiff.Stats      `json:"pixel_diff,omitempty"`
	Error       string              `json:"error,omitempty"`
	Passed      bool                `json:"passed"`
}

// Report is the aggregate outcome of one evaluation run. Never mutated after
// assembly.
type Report struct {
	ID        string           `json:"id"`
	Source    string           `json:"source"`
	CreatedAt time.Time        `json:"created_at"`
	Viewports []ViewportReport `json:"viewports"`
	Passed    bool             `json:"passed"`
}

// Engine evaluates documents against the configured viewports, weights and
// thresholds. Safe for concurrent use.
type Engine struct {
	cfg Config
	log *slog.Logger
}

// New creates an evaluation engine.
func New(cfg Config) *Engine {
	cfg.defaults()
	return &Engine{cfg: cfg, log: cfg.Logger}
}

// Evaluate runs the full pipeline over every viewport of the input in
// parallel and joins the results in input order. A viewport that fails is
// reported with its error in place; the other viewports are unaffected.
// Evaluate itself errors only on unusable input as a whole.
func (e *Engine) Evaluate(ctx context.Context, in Input) (*Report, error) {
	if len(in.Viewports) == 0 {
		return nil, fmt.Errorf("grade: no viewport inputs for %q", in.Source)
	}
	for i, vi := range in.Viewports {
		if vi.Capture == nil {
			return nil, fmt.Errorf("grade: viewport input %d has no capture", i)
		}
	}

	report := &Report{
		ID:        e.cfg.IDs(),
		Source:    in.Source,
		CreatedAt: time.Now().UTC(),
		Viewports: make([]ViewportReport, len(in.Viewports)),
	}

	var wg sync.WaitGroup
	for i, vi := range in.Viewports {
		wg.Add(1)
		go func(i int, vi ViewportInput) {
			defer wg.Done()
			report.Viewports[i] = e.evaluateViewport(ctx, vi)
		}(i, vi)
	}
	wg.Wait()

	report.Passed = true
	for _, vr := range report.Viewports {
		if vr.Error != "" || !vr.Passed {
			report.Passed = false
			break
		}
	}

	e.log.Info("evaluation complete",
		"run", report.ID,
		"source", in.Source,
		"viewports", len(report.Viewports),
		"passed", report.Passed)
	return report, nil
}

func (e *Engine) evaluateViewport(ctx context.Context, vi ViewportInput) ViewportReport {
	vr := ViewportReport{Viewport: vi.Capture.Viewport}

	if err := ctx.Err(); err != nil {
		vr.Error = err.Error()
		return vr
	}

	snapshot, diags, err := layout.Extract(vi.Capture)
	if err != nil {
		vr.Error = err.Error()
		return vr
	}
	vr.Components = len(snapshot.Components)
	vr.Diagnostics = diags

	results, err := rules.Run(vi.Capture, e.cfg.Thresholds)
	if err != nil {
		vr.Error = err.Error()
		return vr
	}
	vr.Rules = results

	if vi.Reference != nil {
		sim, err := layout.Match(snapshot, vi.Reference, e.cfg.Weights)
		if err != nil {
			vr.Error = err.Error()
			return vr
		}
		vr.Similarity = sim
	}

	if vi.Screenshot != nil && vi.GroundTruth != nil {
		stats, err := pixdiff.Compare(vi.Screenshot, vi.GroundTruth)
		if err != nil {
			vr.Error = err.Error()
			return vr
		}
		vr.PixelDiff = stats
	}

	vr.Passed = true
	for _, r := range vr.Rules {
		if !r.Passed {
			vr.Passed = false
			break
		}
	}
	return vr
}

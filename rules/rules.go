// CLAUDE:SUMMARY Responsive rule battery: thresholds, RuleResult type, and the per-capture Run entry point.
// Package rules runs stateless responsive-design validators against a page
// capture at one viewport. A failing rule is report data, never an error;
// errors are reserved for structurally unusable input.
package rules

import (
	"errors"
	"fmt"

	"github.com/hazyhaar/domgrade/layout"
)

// Rule identifiers, stable across reports and storage.
const (
	RuleViewportMeta       = "viewport_meta"
	RuleResponsiveMedia    = "responsive_media"
	RuleRelativeUnits      = "relative_units"
	RuleFontSize           = "font_size"
	RuleTapTarget          = "tap_target"
	RuleLineSpacing        = "line_spacing"
	RuleHorizontalOverflow = "horizontal_overflow"
)

// ErrValidatorInput is returned when required computed-style data is
// structurally missing from a capture, as opposed to a page that merely
// fails a check.
var ErrValidatorInput = errors.New("rules: required style data missing")

// Thresholds are the tunable pass limits of the battery. The zero value is
// usable; unset fields take the defaults below.
type Thresholds struct {
	MinFontSize      float64 `json:"min_font_size" yaml:"min_font_size"`           // px
	MinTapTarget     float64 `json:"min_tap_target" yaml:"min_tap_target"`         // px, both dimensions
	MinLineSpacing   float64 `json:"min_line_spacing" yaml:"min_line_spacing"`     // line-height / font-size
	MinRelativeRatio float64 `json:"min_relative_ratio" yaml:"min_relative_ratio"` // relative declarations / all declarations
}

// DefaultThresholds returns the standard limits: 12px fonts, 48x48 tap
// targets, 1.5 line spacing, 60% relative sizing declarations.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinFontSize:      12,
		MinTapTarget:     48,
		MinLineSpacing:   1.5,
		MinRelativeRatio: 0.6,
	}
}

func (t *Thresholds) applyDefaults() {
	def := DefaultThresholds()
	if t.MinFontSize == 0 {
		t.MinFontSize = def.MinFontSize
	}
	if t.MinTapTarget == 0 {
		t.MinTapTarget = def.MinTapTarget
	}
	if t.MinLineSpacing == 0 {
		t.MinLineSpacing = def.MinLineSpacing
	}
	if t.MinRelativeRatio == 0 {
		t.MinRelativeRatio = def.MinRelativeRatio
	}
}

// Offender identifies one element that caused a rule to fail.
type Offender struct {
	Element string `json:"element"`
	Detail  string `json:"detail,omitempty"`
}

// Result is the outcome of one validator at one viewport. Immutable once
// produced; a failed rule is normal data, not an error.
type Result struct {
	RuleID    string     `json:"rule_id"`
	Viewport  string     `json:"viewport"`
	Passed    bool       `json:"passed"`
	Measured  string     `json:"measured"`  // numeric or categorical, human-readable
	Threshold string     `json:"threshold"` // the limit the measurement was held against
	Affected  []Offender `json:"affected,omitempty"`
}

// Run executes the full battery against one capture. The tap-target check
// only applies at the mobile breakpoint and is skipped elsewhere. Returns
// ErrValidatorInput when the capture carries elements but no style data at
// all; individual failing rules are returned as Results, never as errors.
func Run(capture *layout.PageCapture, t Thresholds) ([]Result, error) {
	t.applyDefaults()
	if err := requireStyleData(capture); err != nil {
		return nil, err
	}

	meta, err := CheckViewportMeta(capture)
	if err != nil {
		return nil, err
	}
	results := []Result{meta}

	media, err := CheckResponsiveMedia(capture)
	if err != nil {
		return nil, err
	}
	results = append(results, media)

	rel, err := CheckRelativeUnits(capture, t)
	if err != nil {
		return nil, err
	}
	results = append(results, rel)

	fonts, err := CheckFontSizes(capture, t)
	if err != nil {
		return nil, err
	}
	results = append(results, fonts)

	if capture.Viewport.Name == "mobile" {
		taps, err := CheckTapTargets(capture, t)
		if err != nil {
			return nil, err
		}
		results = append(results, taps)
	}

	spacing, err := CheckLineSpacing(capture, t)
	if err != nil {
		return nil, err
	}
	results = append(results, spacing)

	results = append(results, CheckHorizontalOverflow(capture))
	return results, nil
}

// requireStyleData enforces the structural contract: a capture with elements
// but no style information for any of them cannot be validated.
func requireStyleData(capture *layout.PageCapture) error {
	if len(capture.Elements) == 0 {
		return nil
	}
	for _, e := range capture.Elements {
		if e.Style != nil {
			return nil
		}
	}
	return fmt.Errorf("%w: no computed style on any of %d elements", ErrValidatorInput, len(capture.Elements))
}

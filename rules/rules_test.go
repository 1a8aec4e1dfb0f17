package rules

import (
	"errors"
	"testing"

	"github.com/hazyhaar/domgrade/layout"
)

func mobileCapture(elements ...layout.ElementInfo) *layout.PageCapture {
	return &layout.PageCapture{
		Viewport: layout.Viewport{Name: "mobile", Width: 375},
		HTML:     []byte(`<html><head></head><body></body></html>`),
		Elements: elements,
	}
}

func styled(tag string, style layout.ComputedStyle) layout.ElementInfo {
	return layout.ElementInfo{Tag: tag, Style: &style}
}

func textEl(tag, fontSize, lineHeight string) layout.ElementInfo {
	return layout.ElementInfo{
		Tag:           tag,
		Style:         &layout.ComputedStyle{FontSize: fontSize, LineHeight: lineHeight},
		Text:          "sample",
		HasDirectText: true,
	}
}

func TestCheckViewportMeta(t *testing.T) {
	// WHAT: device-width + initial-scale=1 passes; fixed width and absence fail.
	// WHY: The meta tag is the gate for everything else responsive.
	cases := []struct {
		name   string
		html   string
		passed bool
	}{
		{"canonical", `<html><head><meta name="viewport" content="width=device-width, initial-scale=1"></head><body></body></html>`, true},
		{"scale_float", `<html><head><meta name="viewport" content="initial-scale=1.0,width=device-width"></head><body></body></html>`, true},
		{"fixed_width", `<html><head><meta name="viewport" content="width=600"></head><body></body></html>`, false},
		{"absent", `<html><head></head><body></body></html>`, false},
		{"no_scale", `<html><head><meta name="viewport" content="width=device-width"></head><body></body></html>`, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			capture := mobileCapture()
			capture.HTML = []byte(c.html)
			res, err := CheckViewportMeta(capture)
			if err != nil {
				t.Fatalf("CheckViewportMeta: %v", err)
			}
			if res.Passed != c.passed {
				t.Errorf("passed = %v, want %v (measured %q)", res.Passed, c.passed, res.Measured)
			}
		})
	}
}

func TestCheckResponsiveMedia(t *testing.T) {
	// WHAT: Fixed-pixel media fails unless rescued by a relative max-width.
	capture := mobileCapture(
		styled("img", layout.ComputedStyle{Width: "100%"}),
		styled("img", layout.ComputedStyle{Width: "640px"}),
		styled("img", layout.ComputedStyle{Width: "640px", MaxWidth: "100%"}),
		styled("video", layout.ComputedStyle{Height: "360px"}),
		styled("div", layout.ComputedStyle{Width: "640px"}), // not media
	)

	res, err := CheckResponsiveMedia(capture)
	if err != nil {
		t.Fatalf("CheckResponsiveMedia: %v", err)
	}
	if res.Passed {
		t.Error("expected failure with fixed-size media present")
	}
	if len(res.Affected) != 2 {
		t.Errorf("affected = %d, want 2 (bare px img and px video)", len(res.Affected))
	}
}

func TestCheckRelativeUnits(t *testing.T) {
	// WHAT: 3 of 5 relative declarations meets the 0.6 default; 2 of 5 does not.
	// WHY: Partial absolute usage is tolerated up to the threshold, then flagged.
	pass := mobileCapture(
		styled("div", layout.ComputedStyle{Width: "100%"}),
		styled("section", layout.ComputedStyle{Width: "50%"}),
		styled("main", layout.ComputedStyle{Width: "90vw"}),
		styled("div", layout.ComputedStyle{Width: "300px"}),
		styled("div", layout.ComputedStyle{Width: "200px"}),
	)
	res, err := CheckRelativeUnits(pass, Thresholds{})
	if err != nil {
		t.Fatalf("CheckRelativeUnits: %v", err)
	}
	if !res.Passed {
		t.Errorf("3/5 relative should pass at 0.6: measured %s", res.Measured)
	}
	if len(res.Affected) != 2 {
		t.Errorf("affected = %d, want 2 absolute declarations flagged", len(res.Affected))
	}

	fail := mobileCapture(
		styled("div", layout.ComputedStyle{Width: "100%"}),
		styled("div", layout.ComputedStyle{Width: "50%"}),
		styled("div", layout.ComputedStyle{Width: "300px"}),
		styled("div", layout.ComputedStyle{Width: "200px"}),
		styled("div", layout.ComputedStyle{Width: "100px"}),
	)
	res, err = CheckRelativeUnits(fail, Thresholds{})
	if err != nil {
		t.Fatalf("CheckRelativeUnits: %v", err)
	}
	if res.Passed {
		t.Errorf("2/5 relative should fail at 0.6: measured %s", res.Measured)
	}
}

func TestCheckRelativeUnits_NoDeclarations(t *testing.T) {
	// WHAT: Containers without declared widths pass vacuously.
	capture := mobileCapture(
		styled("div", layout.ComputedStyle{Width: "auto"}),
		styled("div", layout.ComputedStyle{}),
	)
	res, err := CheckRelativeUnits(capture, Thresholds{})
	if err != nil {
		t.Fatalf("CheckRelativeUnits: %v", err)
	}
	if !res.Passed {
		t.Error("no declarations should pass")
	}
}

func TestCheckFontSizes_Boundary(t *testing.T) {
	// WHAT: Exactly 12px passes; 11.99px fails.
	// WHY: The threshold is inclusive.
	pass := mobileCapture(textEl("p", "12px", "normal"))
	res, err := CheckFontSizes(pass, Thresholds{})
	if err != nil {
		t.Fatalf("CheckFontSizes: %v", err)
	}
	if !res.Passed {
		t.Error("12px should pass")
	}

	fail := mobileCapture(textEl("p", "11.99px", "normal"))
	res, err = CheckFontSizes(fail, Thresholds{})
	if err != nil {
		t.Fatalf("CheckFontSizes: %v", err)
	}
	if res.Passed {
		t.Error("11.99px should fail")
	}
	if len(res.Affected) != 1 {
		t.Errorf("affected = %d, want 1", len(res.Affected))
	}
}

func TestCheckTapTargets_Boundary(t *testing.T) {
	// WHAT: 48x48 passes; either dimension short fails and is reported.
	target := func(w, h float64) layout.ElementInfo {
		return layout.ElementInfo{
			Tag: "button",
			Box: &layout.BoundingBox{X: 0, Y: 0, Width: w, Height: h},
		}
	}
	cases := []struct {
		name   string
		el     layout.ElementInfo
		passed bool
	}{
		{"exact", target(48, 48), true},
		{"narrow", target(47, 48), false},
		{"short", target(48, 47), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := CheckTapTargets(mobileCapture(c.el), Thresholds{})
			if err != nil {
				t.Fatalf("CheckTapTargets: %v", err)
			}
			if res.Passed != c.passed {
				t.Errorf("passed = %v, want %v", res.Passed, c.passed)
			}
		})
	}
}

func TestCheckTapTargets_NonInteractiveIgnored(t *testing.T) {
	// WHAT: Tiny non-interactive elements are not tap targets.
	capture := mobileCapture(layout.ElementInfo{
		Tag: "span",
		Box: &layout.BoundingBox{Width: 10, Height: 10},
	})
	res, err := CheckTapTargets(capture, Thresholds{})
	if err != nil {
		t.Fatalf("CheckTapTargets: %v", err)
	}
	if !res.Passed {
		t.Error("non-interactive elements must not fail the rule")
	}
}

func TestCheckLineSpacing_Boundary(t *testing.T) {
	// WHAT: Ratio exactly 1.5 passes; 1.49 fails.
	pass := mobileCapture(textEl("p", "14px", "21px")) // 21/14 = 1.5
	res, err := CheckLineSpacing(pass, Thresholds{})
	if err != nil {
		t.Fatalf("CheckLineSpacing: %v", err)
	}
	if !res.Passed {
		t.Errorf("ratio 1.5 should pass, measured %s", res.Measured)
	}

	fail := mobileCapture(textEl("p", "100px", "149px")) // 1.49
	res, err = CheckLineSpacing(fail, Thresholds{})
	if err != nil {
		t.Fatalf("CheckLineSpacing: %v", err)
	}
	if res.Passed {
		t.Error("ratio 1.49 should fail")
	}
}

func TestCheckLineSpacing_NormalResolved(t *testing.T) {
	// WHAT: line-height "normal" resolves to 1.2x font size and fails at 1.5.
	// WHY: An unspecified line-height must never pass by omission.
	capture := mobileCapture(textEl("p", "16px", "normal"))
	res, err := CheckLineSpacing(capture, Thresholds{})
	if err != nil {
		t.Fatalf("CheckLineSpacing: %v", err)
	}
	if res.Passed {
		t.Error("normal (1.2) should fail against the 1.5 threshold")
	}
	if res.Affected[0].Detail != "1.20" {
		t.Errorf("offender detail = %q, want 1.20", res.Affected[0].Detail)
	}
}

func TestCheckHorizontalOverflow(t *testing.T) {
	// WHAT: Scroll width beyond the viewport fails; unmeasured passes.
	capture := mobileCapture()
	capture.ScrollWidth = 480
	if res := CheckHorizontalOverflow(capture); res.Passed {
		t.Error("480px scroll in a 375px viewport should fail")
	}

	capture.ScrollWidth = 375
	if res := CheckHorizontalOverflow(capture); !res.Passed {
		t.Error("scroll width equal to viewport should pass")
	}

	capture.ScrollWidth = 0
	if res := CheckHorizontalOverflow(capture); !res.Passed {
		t.Error("unmeasured scroll width should pass")
	}
}

func TestRun_MissingStyleData(t *testing.T) {
	// WHAT: Elements present but no style anywhere is a typed input error.
	// WHY: That is a broken capture, not a failing page.
	capture := mobileCapture(
		layout.ElementInfo{Tag: "p", Text: "x", HasDirectText: true},
		layout.ElementInfo{Tag: "div"},
	)
	_, err := Run(capture, Thresholds{})
	if !errors.Is(err, ErrValidatorInput) {
		t.Errorf("error = %v, want ErrValidatorInput", err)
	}
}

func TestRun_TapTargetsMobileOnly(t *testing.T) {
	// WHAT: The battery includes the tap-target rule at mobile only.
	// WHY: 48x48 is the mobile contract; desktop pointers are finer.
	el := styled("div", layout.ComputedStyle{Width: "100%"})

	mobile := mobileCapture(el)
	results, err := Run(mobile, Thresholds{})
	if err != nil {
		t.Fatalf("Run mobile: %v", err)
	}
	if !hasRule(results, RuleTapTarget) {
		t.Error("mobile battery missing tap-target rule")
	}

	desktop := &layout.PageCapture{
		Viewport: layout.Viewport{Name: "desktop", Width: 1280},
		HTML:     []byte(`<html><head></head><body></body></html>`),
		Elements: []layout.ElementInfo{el},
	}
	results, err = Run(desktop, Thresholds{})
	if err != nil {
		t.Fatalf("Run desktop: %v", err)
	}
	if hasRule(results, RuleTapTarget) {
		t.Error("desktop battery must not include tap-target rule")
	}
}

func TestRun_FailureIsDataNotError(t *testing.T) {
	// WHAT: A page failing several rules still returns results, no error.
	capture := mobileCapture(
		textEl("p", "10px", "12px"),
		styled("img", layout.ComputedStyle{Width: "640px"}),
	)
	capture.ScrollWidth = 900

	results, err := Run(capture, Thresholds{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	failed := 0
	for _, r := range results {
		if !r.Passed {
			failed++
		}
	}
	if failed < 4 {
		t.Errorf("failed rules = %d, want at least 4 (meta, media, font, spacing, overflow)", failed)
	}
}

func hasRule(results []Result, id string) bool {
	for _, r := range results {
		if r.RuleID == id {
			return true
		}
	}
	return false
}

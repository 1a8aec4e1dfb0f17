// CLAUDE:SUMMARY The individual responsive validators: viewport meta, media sizing, relative units, fonts, tap targets, line spacing, overflow.
package rules

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hazyhaar/domgrade/layout"
)

// CheckViewportMeta passes iff the document declares
// <meta name="viewport"> with width=device-width and an initial scale of 1.
// A missing tag or a fixed pixel width fails.
func CheckViewportMeta(capture *layout.PageCapture) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(capture.HTML))
	if err != nil {
		return Result{}, fmt.Errorf("%w: parse document: %v", ErrValidatorInput, err)
	}

	res := Result{
		RuleID:    RuleViewportMeta,
		Viewport:  capture.Viewport.Name,
		Threshold: "width=device-width, initial-scale=1",
		Measured:  "absent",
	}

	content, ok := doc.Find(`meta[name="viewport"]`).First().Attr("content")
	if !ok {
		return res, nil
	}
	res.Measured = content

	deviceWidth, scaleOne := false, false
	for _, directive := range strings.FieldsFunc(content, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		key, value, found := strings.Cut(directive, "=")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.ToLower(strings.TrimSpace(value))
		switch key {
		case "width":
			deviceWidth = value == "device-width"
		case "initial-scale":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				scaleOne = math.Abs(f-1) < 1e-9
			}
		}
	}
	res.Passed = deviceWidth && scaleOne
	return res, nil
}

// CheckResponsiveMedia passes iff no image or video element declares a fixed
// pixel width or height without a relative max-width escape hatch.
func CheckResponsiveMedia(capture *layout.PageCapture) (Result, error) {
	res := Result{
		RuleID:    RuleResponsiveMedia,
		Viewport:  capture.Viewport.Name,
		Threshold: "0 fixed-size media elements",
	}

	for _, e := range capture.Elements {
		if e.Tag != "img" && e.Tag != "video" {
			continue
		}
		if e.Style == nil {
			continue
		}
		fixed := isAbsolutePx(e.Style.Width) || isAbsolutePx(e.Style.Height)
		if fixed && !isRelativeUnit(e.Style.MaxWidth) {
			res.Affected = append(res.Affected, Offender{
				Element: e.Identifier(),
				Detail:  fmt.Sprintf("width=%q height=%q max-width=%q", e.Style.Width, e.Style.Height, e.Style.MaxWidth),
			})
		}
	}
	res.Measured = strconv.Itoa(len(res.Affected))
	res.Passed = len(res.Affected) == 0
	return res, nil
}

// containerTags are the structural elements whose sizing declarations the
// relative-units rule samples.
var containerTags = map[string]bool{
	"div": true, "section": true, "main": true, "article": true,
	"header": true, "footer": true, "aside": true, "nav": true,
	"form": true, "table": true,
}

// CheckRelativeUnits passes iff the share of relative-unit width declarations
// among container elements meets the threshold. Containers without a declared
// width are not counted; a document with no declarations passes vacuously.
func CheckRelativeUnits(capture *layout.PageCapture, t Thresholds) (Result, error) {
	t.applyDefaults()
	res := Result{
		RuleID:    RuleRelativeUnits,
		Viewport:  capture.Viewport.Name,
		Threshold: strconv.FormatFloat(t.MinRelativeRatio, 'f', 2, 64),
	}

	total, relative := 0, 0
	for _, e := range capture.Elements {
		if !containerTags[e.Tag] || e.Style == nil {
			continue
		}
		w := strings.TrimSpace(strings.ToLower(e.Style.Width))
		if w == "" || w == "auto" || w == "none" {
			continue
		}
		total++
		if isRelativeUnit(w) {
			relative++
		} else {
			res.Affected = append(res.Affected, Offender{
				Element: e.Identifier(),
				Detail:  fmt.Sprintf("width=%q", e.Style.Width),
			})
		}
	}

	ratio := 1.0
	if total > 0 {
		ratio = float64(relative) / float64(total)
	}
	res.Measured = strconv.FormatFloat(ratio, 'f', 2, 64)
	res.Passed = ratio >= t.MinRelativeRatio
	return res, nil
}

// CheckFontSizes passes iff every text-bearing element's computed font size
// meets the minimum. Re-run per viewport: viewport-relative CSS changes the
// computed value between breakpoints.
func CheckFontSizes(capture *layout.PageCapture, t Thresholds) (Result, error) {
	t.applyDefaults()
	res := Result{
		RuleID:    RuleFontSize,
		Viewport:  capture.Viewport.Name,
		Threshold: formatPx(t.MinFontSize),
	}

	min := math.Inf(1)
	for _, e := range capture.Elements {
		if !textBearing(e) || e.Style == nil {
			continue
		}
		fs, ok := e.Style.FontSizePx()
		if !ok {
			continue
		}
		if fs < min {
			min = fs
		}
		if fs < t.MinFontSize {
			res.Affected = append(res.Affected, Offender{
				Element: e.Identifier(),
				Detail:  formatPx(fs),
			})
		}
	}

	if math.IsInf(min, 1) {
		res.Measured = "no text elements"
	} else {
		res.Measured = formatPx(min)
	}
	res.Passed = len(res.Affected) == 0
	return res, nil
}

// interactiveElement reports whether the element is a touch target.
func interactiveElement(e layout.ElementInfo) bool {
	switch e.Tag {
	case "button", "a", "input", "select", "textarea":
		return true
	}
	return e.Role == "button" || e.Role == "link"
}

// CheckTapTargets passes iff every interactive element's rendered box is at
// least the minimum in both dimensions. Meant for the mobile breakpoint, the
// strictest one; Run skips it elsewhere.
func CheckTapTargets(capture *layout.PageCapture, t Thresholds) (Result, error) {
	t.applyDefaults()
	res := Result{
		RuleID:    RuleTapTarget,
		Viewport:  capture.Viewport.Name,
		Threshold: fmt.Sprintf("%sx%s", formatPx(t.MinTapTarget), formatPx(t.MinTapTarget)),
	}

	checked := 0
	for _, e := range capture.Elements {
		if !interactiveElement(e) || e.Box == nil || e.Box.Empty() {
			continue
		}
		checked++
		if e.Box.Width < t.MinTapTarget || e.Box.Height < t.MinTapTarget {
			res.Affected = append(res.Affected, Offender{
				Element: e.Identifier(),
				Detail:  fmt.Sprintf("%sx%s", formatPx(e.Box.Width), formatPx(e.Box.Height)),
			})
		}
	}
	res.Measured = fmt.Sprintf("%d of %d targets undersized", len(res.Affected), checked)
	res.Passed = len(res.Affected) == 0
	return res, nil
}

// CheckLineSpacing passes iff every text-bearing element's line-height to
// font-size ratio meets the minimum. A computed line-height of "normal" (or
// an absent value) resolves to 1.2x the font size, the browser default; it
// never passes by omission.
func CheckLineSpacing(capture *layout.PageCapture, t Thresholds) (Result, error) {
	t.applyDefaults()
	res := Result{
		RuleID:    RuleLineSpacing,
		Viewport:  capture.Viewport.Name,
		Threshold: strconv.FormatFloat(t.MinLineSpacing, 'f', 2, 64),
	}

	min := math.Inf(1)
	for _, e := range capture.Elements {
		if !textBearing(e) || e.Style == nil {
			continue
		}
		fs, ok := e.Style.FontSizePx()
		if !ok || fs <= 0 {
			continue
		}
		lh, ok := e.Style.LineHeightPx()
		if !ok {
			lh = 1.2 * fs
		}
		ratio := lh / fs
		if ratio < min {
			min = ratio
		}
		if ratio < t.MinLineSpacing {
			res.Affected = append(res.Affected, Offender{
				Element: e.Identifier(),
				Detail:  strconv.FormatFloat(ratio, 'f', 2, 64),
			})
		}
	}

	if math.IsInf(min, 1) {
		res.Measured = "no text elements"
	} else {
		res.Measured = strconv.FormatFloat(min, 'f', 2, 64)
	}
	res.Passed = len(res.Affected) == 0
	return res, nil
}

// CheckHorizontalOverflow passes iff the rendered document is no wider than
// the viewport. A zero scroll width means the collaborator did not measure
// it; the check passes vacuously then.
func CheckHorizontalOverflow(capture *layout.PageCapture) Result {
	res := Result{
		RuleID:    RuleHorizontalOverflow,
		Viewport:  capture.Viewport.Name,
		Threshold: strconv.Itoa(capture.Viewport.Width) + "px",
		Measured:  strconv.Itoa(capture.ScrollWidth) + "px",
	}
	res.Passed = capture.ScrollWidth == 0 || capture.ScrollWidth <= capture.Viewport.Width
	return res
}

func textBearing(e layout.ElementInfo) bool {
	return e.HasDirectText && strings.TrimSpace(e.Text) != ""
}

func isAbsolutePx(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	return strings.HasSuffix(v, "px") && len(v) > 2
}

func isRelativeUnit(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" || v == "none" || v == "auto" {
		return false
	}
	for _, suffix := range []string{"%", "vw", "vh", "vmin", "vmax", "em", "rem", "ch"} {
		if strings.HasSuffix(v, suffix) {
			return true
		}
	}
	return false
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

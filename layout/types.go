// CLAUDE:SUMMARY Core types for layout evaluation: Category, BoundingBox, VisualComponent, Snapshot, PageCapture.
// Package layout extracts classified visual components from rendered HTML
// documents and scores the geometric similarity of two layouts.
//
// The pipeline: rendered document + per-element geometry → Extract →
// Snapshot per viewport; two Snapshots (predicted, reference) → Match →
// weighted IoU similarity score.
package layout

import "strings"

// Category classifies a visual component.
type Category string

const (
	CategoryVideo     Category = "video"
	CategoryImage     Category = "image"
	CategoryTextBlock Category = "text_block"
	CategoryFormTable Category = "form_table"
	CategoryButton    Category = "button"
	CategoryNavBar    Category = "nav_bar"
	CategoryDivider   Category = "divider"
)

// Categories returns the full category enumeration in a fixed order.
func Categories() []Category {
	return []Category{
		CategoryVideo,
		CategoryImage,
		CategoryTextBlock,
		CategoryFormTable,
		CategoryButton,
		CategoryNavBar,
		CategoryDivider,
	}
}

// Valid reports whether c is a member of the category enumeration.
func (c Category) Valid() bool {
	switch c {
	case CategoryVideo, CategoryImage, CategoryTextBlock, CategoryFormTable,
		CategoryButton, CategoryNavBar, CategoryDivider:
		return true
	}
	return false
}

// Viewport is a named device breakpoint.
type Viewport struct {
	Name  string `json:"name" yaml:"name"`
	Width int    `json:"width" yaml:"width"`
}

// DefaultViewports returns the standard mobile/tablet/desktop breakpoints.
func DefaultViewports() []Viewport {
	return []Viewport{
		{Name: "mobile", Width: 375},
		{Name: "tablet", Width: 1024},
		{Name: "desktop", Width: 1280},
	}
}

// VisualComponent is one classified UI element with its rendered box in
// document pixel coordinates. Components are never mutated after extraction.
type VisualComponent struct {
	Category Category    `json:"category"`
	Box      BoundingBox `json:"box"`
	Element  string      `json:"element,omitempty"` // identifier, e.g. "img#logo"
	Text     string      `json:"text,omitempty"`    // text blocks only
}

// Snapshot is the set of visual components extracted from one document at
// one viewport. Component order carries no meaning.
type Snapshot struct {
	Viewport   Viewport          `json:"viewport"`
	Components []VisualComponent `json:"components"`
}

// ComputedStyle holds the computed style values relevant to classification
// and rule checking, as harvested from the rendering collaborator. Display,
// Visibility and Opacity carry computed values; Width, Height and MaxWidth
// carry the *declared* sizing (inline style or presentation attribute), since
// computed sizing always resolves to pixels and would hide the author's unit
// choice.
type ComputedStyle struct {
	Display    string `json:"display,omitempty"`
	Visibility string `json:"visibility,omitempty"`
	Opacity    string `json:"opacity,omitempty"`
	FontSize   string `json:"font_size,omitempty"`   // e.g. "14px"
	LineHeight string `json:"line_height,omitempty"` // e.g. "21px" or "normal"
	Width      string `json:"width,omitempty"`       // declared, e.g. "100%", "240px", "auto"
	Height     string `json:"height,omitempty"`
	MaxWidth   string `json:"max_width,omitempty"`
}

// Hidden reports whether the style makes the element invisible.
func (s ComputedStyle) Hidden() bool {
	if s.Display == "none" || s.Visibility == "hidden" {
		return true
	}
	op := strings.TrimSpace(s.Opacity)
	return op == "0" || op == "0.0" || op == ".0"
}

// FontSizePx parses the computed font size into pixels.
func (s ComputedStyle) FontSizePx() (float64, bool) {
	return parsePx(s.FontSize)
}

// LineHeightPx parses the computed line height into pixels. Returns false
// for "normal" or absent values; callers must resolve those explicitly.
func (s ComputedStyle) LineHeightPx() (float64, bool) {
	return parsePx(s.LineHeight)
}

// ElementInfo is the per-element measurement supplied by the rendering
// collaborator, aligned with the document's elements in document order.
// Box and Style are nil when the collaborator could not measure the element.
type ElementInfo struct {
	Index         int            `json:"index"` // document-order element index
	Tag           string         `json:"tag"`
	ID            string         `json:"id,omitempty"`
	Classes       string         `json:"classes,omitempty"` // raw class attribute
	Role          string         `json:"role,omitempty"`
	InputType     string         `json:"input_type,omitempty"`
	Box           *BoundingBox   `json:"box,omitempty"`
	Style         *ComputedStyle `json:"style,omitempty"`
	Text          string         `json:"text,omitempty"` // rendered text, trimmed
	HasDirectText bool           `json:"has_direct_text,omitempty"`
}

// Identifier builds a short human-readable element identifier for reports.
func (e ElementInfo) Identifier() string {
	var sb strings.Builder
	sb.WriteString(e.Tag)
	if e.ID != "" {
		sb.WriteByte('#')
		sb.WriteString(e.ID)
	} else if e.Classes != "" {
		first := strings.Fields(e.Classes)
		if len(first) > 0 {
			sb.WriteByte('.')
			sb.WriteString(first[0])
		}
	}
	return sb.String()
}

// PageCapture is everything measured for one document at one viewport:
// the serialised DOM plus per-element geometry and computed styles. The
// Elements slice must be indexed in document order so it can be re-aligned
// with a parse of HTML.
type PageCapture struct {
	Viewport     Viewport      `json:"viewport"`
	HTML         []byte        `json:"html"`
	Elements     []ElementInfo `json:"elements"`
	ScrollWidth  int           `json:"scroll_width,omitempty"`  // full document width
	ScrollHeight int           `json:"scroll_height,omitempty"` // full document height
}

// Diagnostic records a per-element extraction issue that was recovered
// locally (element skipped) rather than failing the whole extraction.
type Diagnostic struct {
	Element string `json:"element"`
	Reason  string `json:"reason"`
}

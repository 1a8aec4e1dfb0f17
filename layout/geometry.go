// CLAUDE:SUMMARY Axis-aligned bounding boxes: area, containment, adjacency, union, IoU.
package layout

import (
	"strconv"
	"strings"
)

// BoundingBox is an axis-aligned rectangle in document pixel coordinates.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the box area. Negative dimensions count as zero.
func (b BoundingBox) Area() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// Empty reports whether the box has zero area.
func (b BoundingBox) Empty() bool {
	return b.Area() == 0
}

// Contains reports whether inner lies entirely within b.
func (b BoundingBox) Contains(inner BoundingBox) bool {
	return inner.X >= b.X && inner.Y >= b.Y &&
		inner.X+inner.Width <= b.X+b.Width &&
		inner.Y+inner.Height <= b.Y+b.Height
}

// Union returns the smallest box covering both a and b.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	x1 := min(b.X, o.X)
	y1 := min(b.Y, o.Y)
	x2 := max(b.X+b.Width, o.X+o.Width)
	y2 := max(b.Y+b.Height, o.Y+o.Height)
	return BoundingBox{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Intersection returns the overlap area of two boxes, 0 when disjoint.
func Intersection(a, b BoundingBox) float64 {
	xA := max(a.X, b.X)
	yA := max(a.Y, b.Y)
	xB := min(a.X+a.Width, b.X+b.Width)
	yB := min(a.Y+a.Height, b.Y+b.Height)

	w := xB - xA
	h := yB - yA
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// IoU returns the intersection-over-union of two boxes in [0,1].
// Zero-area or disjoint boxes yield 0.
func IoU(a, b BoundingBox) float64 {
	inter := Intersection(a, b)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// parsePx parses a CSS pixel value like "14px" or "14". Returns false for
// empty, keyword, or non-pixel values.
func parsePx(v string) (float64, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" || v == "normal" || v == "auto" || v == "none" {
		return 0, false
	}
	v = strings.TrimSuffix(v, "px")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

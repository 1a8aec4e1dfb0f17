// CLAUDE:SUMMARY Merges adjacent text blocks and collapses nested ones so markup fragmentation does not skew matching.
package layout

import "sort"

// Alignment and adjacency tolerances for text-block merging, in document
// pixels. Two blocks merge when their centers line up on one axis within
// alignTolerance and they follow each other on the other axis with a gap of
// at most adjTolerance.
const (
	alignTolerance = 8
	adjTolerance   = 4
)

// boxesAdjacent reports whether two boxes form one visual run of text:
// vertically aligned and horizontally sequential, or horizontally aligned
// and vertically sequential.
func boxesAdjacent(a, b BoundingBox) bool {
	vCenterA := a.Y + a.Height/2
	vCenterB := b.Y + b.Height/2
	hCenterA := a.X + a.Width/2
	hCenterB := b.X + b.Width/2

	verticallyAligned := abs(vCenterA-vCenterB) <= alignTolerance
	horizontallyAdjacent := (a.X+a.Width+adjTolerance >= b.X && a.X < b.X) ||
		(b.X+b.Width+adjTolerance >= a.X && b.X < a.X)

	horizontallyAligned := abs(hCenterA-hCenterB) <= alignTolerance
	verticallyAdjacent := (a.Y+a.Height+adjTolerance >= b.Y && a.Y < b.Y) ||
		(b.Y+b.Height+adjTolerance >= a.Y && b.Y < a.Y)

	return (verticallyAligned && horizontallyAdjacent) ||
		(horizontallyAligned && verticallyAdjacent)
}

// mergeTextBlocks coalesces a raw text-block list: blocks nested inside
// another block are dropped, adjacent blocks are merged into one larger
// block with concatenated text. The input order is irrelevant; blocks are
// processed top-to-bottom, left-to-right for determinism.
func mergeTextBlocks(blocks []VisualComponent) []VisualComponent {
	if len(blocks) <= 1 {
		return blocks
	}

	pending := make([]VisualComponent, len(blocks))
	copy(pending, blocks)
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].Box.Y != pending[j].Box.Y {
			return pending[i].Box.Y < pending[j].Box.Y
		}
		return pending[i].Box.X < pending[j].Box.X
	})

	var merged []VisualComponent
	for len(pending) > 0 {
		current := pending[0]
		pending = pending[1:]

		keep := true
		for i := 0; i < len(pending); {
			other := pending[i]

			if current.Box.Contains(other.Box) {
				// Nested block: absorbed by the current one.
				pending = append(pending[:i], pending[i+1:]...)
				continue
			}
			if other.Box.Contains(current.Box) {
				// Current is nested inside a later block; drop it.
				keep = false
				break
			}

			if boxesAdjacent(current.Box, other.Box) {
				if current.Box.X < other.Box.X || current.Box.Y < other.Box.Y {
					current.Text = current.Text + " " + other.Text
				} else {
					current.Text = other.Text + " " + current.Text
				}
				current.Box = current.Box.Union(other.Box)
				pending = append(pending[:i], pending[i+1:]...)
				continue
			}
			i++
		}

		if keep {
			merged = append(merged, current)
		}
	}
	return merged
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

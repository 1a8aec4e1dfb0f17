// CLAUDE:SUMMARY Greedy per-category bipartite IoU matching and the weighted Layout Similarity Score.
package layout

import (
	"fmt"
	"sort"
)

// Weights maps every category to a non-negative weight. Weights need not
// sum to 1; they are normalised over the categories present in a comparison
// at aggregation time.
type Weights map[Category]float64

// DefaultWeights favours media and structural blocks over cosmetic elements.
func DefaultWeights() Weights {
	return Weights{
		CategoryVideo:     2.0,
		CategoryImage:     2.0,
		CategoryTextBlock: 1.5,
		CategoryFormTable: 1.5,
		CategoryNavBar:    1.0,
		CategoryButton:    1.0,
		CategoryDivider:   0.5,
	}
}

// Validate checks that the table covers the category enumeration exactly,
// with non-negative weights.
func (w Weights) Validate() error {
	for cat := range w {
		if !cat.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
		}
	}
	for _, cat := range Categories() {
		v, ok := w[cat]
		if !ok {
			return fmt.Errorf("%w: missing weight for %q", ErrUnknownCategory, cat)
		}
		if v < 0 {
			return fmt.Errorf("layout: negative weight for %q: %f", cat, v)
		}
	}
	return nil
}

// CategoryScore is the per-category breakdown of a similarity comparison.
type CategoryScore struct {
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"` // normalised weight used in aggregation
	Matched   int     `json:"matched"`
	Predicted int     `json:"predicted"`
	Reference int     `json:"reference"`
}

// Similarity is the result of comparing a predicted layout against a
// reference layout.
type Similarity struct {
	Score       float64                    `json:"score"` // in [0,1]
	PerCategory map[Category]CategoryScore `json:"per_category"`
}

// Match scores the predicted snapshot against the reference snapshot.
//
// Per category, predicted and reference components are paired greedily by
// descending IoU; the category score is the sum of matched IoUs divided by
// max(predicted count, reference count), so unmatched components on either
// side pull the score toward 0. Categories absent from both snapshots are
// not scored. The final score is the weight-normalised aggregate over the
// categories present. Two entirely empty snapshots score 1.0.
//
// Both snapshots must declare the same viewport.
func Match(predicted, reference *Snapshot, weights Weights) (*Similarity, error) {
	if predicted == nil || reference == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrIncompatibleSnapshot)
	}
	if predicted.Viewport != reference.Viewport {
		return nil, fmt.Errorf("%w: predicted %s/%d vs reference %s/%d",
			ErrIncompatibleSnapshot,
			predicted.Viewport.Name, predicted.Viewport.Width,
			reference.Viewport.Name, reference.Viewport.Width)
	}

	if weights == nil {
		weights = DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	pred := partition(predicted.Components)
	ref := partition(reference.Components)

	result := &Similarity{PerCategory: make(map[Category]CategoryScore)}

	if len(pred) == 0 && len(ref) == 0 {
		// Nothing to disagree on.
		result.Score = 1.0
		return result, nil
	}

	var present int
	var totalWeight float64
	for _, cat := range Categories() {
		if len(pred[cat]) == 0 && len(ref[cat]) == 0 {
			continue
		}
		present++
		totalWeight += weights[cat]
	}

	// Scores are accumulated against the raw weights and divided once, so an
	// identical pair aggregates to exactly totalWeight/totalWeight. Summing
	// pre-normalised shares instead loses the identity to rounding.
	var weightedSum, scoreSum float64
	for _, cat := range Categories() {
		p, r := pred[cat], ref[cat]
		if len(p) == 0 && len(r) == 0 {
			continue
		}

		matched, sumIoU := greedyMatch(p, r)
		score := sumIoU / float64(max(len(p), len(r)))

		// All-zero weights over the present categories degenerate to an
		// unweighted mean.
		normWeight := 1.0 / float64(present)
		if totalWeight > 0 {
			normWeight = weights[cat] / totalWeight
		}
		result.PerCategory[cat] = CategoryScore{
			Score:     score,
			Weight:    normWeight,
			Matched:   matched,
			Predicted: len(p),
			Reference: len(r),
		}
		weightedSum += score * weights[cat]
		scoreSum += score
	}

	if totalWeight > 0 {
		result.Score = weightedSum / totalWeight
	} else {
		result.Score = scoreSum / float64(present)
	}

	return result, nil
}

// partition groups non-degenerate components by category.
func partition(components []VisualComponent) map[Category][]VisualComponent {
	out := make(map[Category][]VisualComponent)
	for _, c := range components {
		if c.Box.Empty() {
			continue
		}
		out[c.Category] = append(out[c.Category], c)
	}
	return out
}

type candidatePair struct {
	pi, ri int
	iou    float64
	area   float64 // combined area, for deterministic tie-break
}

// greedyMatch pairs components by repeatedly taking the highest-IoU
// unassigned pair. Ties break on larger combined area, then smaller index
// pair, so the output is deterministic. Pairs with zero IoU are never
// assigned; they would contribute nothing and matching them is equivalent
// to leaving both sides unmatched.
func greedyMatch(pred, ref []VisualComponent) (matched int, sumIoU float64) {
	var pairs []candidatePair
	for pi, p := range pred {
		for ri, r := range ref {
			iou := IoU(p.Box, r.Box)
			if iou > 0 {
				pairs = append(pairs, candidatePair{
					pi: pi, ri: ri, iou: iou,
					area: p.Box.Area() + r.Box.Area(),
				})
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].iou != pairs[j].iou {
			return pairs[i].iou > pairs[j].iou
		}
		if pairs[i].area != pairs[j].area {
			return pairs[i].area > pairs[j].area
		}
		if pairs[i].pi != pairs[j].pi {
			return pairs[i].pi < pairs[j].pi
		}
		return pairs[i].ri < pairs[j].ri
	})

	usedP := make(map[int]bool, len(pred))
	usedR := make(map[int]bool, len(ref))
	for _, pair := range pairs {
		if usedP[pair.pi] || usedR[pair.ri] {
			continue
		}
		usedP[pair.pi] = true
		usedR[pair.ri] = true
		matched++
		sumIoU += pair.iou
	}
	return matched, sumIoU
}

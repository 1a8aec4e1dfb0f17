// CLAUDE:SUMMARY Pixel-level image comparison: MSE, RMSE, and percentage difference over equal-size rasters.
// Package pixdiff computes aggregate pixel-difference statistics between a
// captured screenshot and a ground-truth image of identical dimensions.
// Resizing or cropping mismatched captures is the screenshot layer's job;
// this package refuses mismatched inputs outright.
package pixdiff

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
)

// ErrDimensionMismatch is returned when the two images differ in width or
// height.
var ErrDimensionMismatch = errors.New("pixdiff: image dimensions differ")

// Stats are the aggregate pixel-difference metrics over all RGB channels.
type Stats struct {
	MSE         float64 `json:"mse"`
	RMSE        float64 `json:"rmse"`
	PercentDiff float64 `json:"percent_diff"` // RMSE / 255 * 100
}

// Compare computes MSE, RMSE and percentage difference between two images
// of identical pixel dimensions.
func Compare(a, b image.Image) (*Stats, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrDimensionMismatch, ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}

	w, h := ab.Dx(), ab.Dy()
	if w == 0 || h == 0 {
		return &Stats{}, nil
	}

	// Sum of squared differences in integer space; converting each channel
	// to 8-bit first keeps the metric in the conventional 0-255 domain.
	var sum uint64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ar, ag, abl, _ := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			br, bg, bbl, _ := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()

			dr := int64(ar>>8) - int64(br>>8)
			dg := int64(ag>>8) - int64(bg>>8)
			db := int64(abl>>8) - int64(bbl>>8)
			sum += uint64(dr*dr + dg*dg + db*db)
		}
	}

	mse := float64(sum) / float64(w*h*3)
	rmse := math.Sqrt(mse)
	return &Stats{
		MSE:         mse,
		RMSE:        rmse,
		PercentDiff: rmse / 255.0 * 100.0,
	}, nil
}

// CompareFiles decodes two image files (PNG or JPEG) and compares them.
func CompareFiles(pathA, pathB string) (*Stats, error) {
	a, err := loadImage(pathA)
	if err != nil {
		return nil, err
	}
	b, err := loadImage(pathB)
	if err != nil {
		return nil, err
	}
	return Compare(a, b)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pixdiff: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("pixdiff: decode %s: %w", path, err)
	}
	return img, nil
}

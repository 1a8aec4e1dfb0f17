package pixdiff

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCompare_Identical(t *testing.T) {
	// WHAT: An image compared with itself yields all-zero stats.
	img := solid(8, 8, color.RGBA{R: 120, G: 30, B: 200, A: 255})
	stats, err := Compare(img, img)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if stats.MSE != 0 || stats.RMSE != 0 || stats.PercentDiff != 0 {
		t.Errorf("stats = %+v, want zeros", stats)
	}
}

func TestCompare_MaxDifference(t *testing.T) {
	// WHAT: All-black vs all-white is the metric's upper anchor.
	// WHY: PercentDiff must read 100 at full-scale difference.
	black := solid(4, 4, color.RGBA{A: 255})
	white := solid(4, 4, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	stats, err := Compare(black, white)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if want := 255.0 * 255.0; stats.MSE != want {
		t.Errorf("MSE = %f, want %f", stats.MSE, want)
	}
	if stats.RMSE != 255.0 {
		t.Errorf("RMSE = %f, want 255", stats.RMSE)
	}
	if math.Abs(stats.PercentDiff-100.0) > 1e-9 {
		t.Errorf("PercentDiff = %f, want 100", stats.PercentDiff)
	}
}

func TestCompare_KnownValue(t *testing.T) {
	// WHAT: One channel off by 30 in one of two pixels: MSE = 900/6.
	// WHY: Pins the averaging denominator (pixels x 3 channels).
	a := solid(2, 1, color.RGBA{A: 255})
	b := solid(2, 1, color.RGBA{A: 255})
	b.Set(0, 0, color.RGBA{R: 30, A: 255})

	stats, err := Compare(a, b)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	want := 900.0 / 6.0
	if math.Abs(stats.MSE-want) > 1e-9 {
		t.Errorf("MSE = %f, want %f", stats.MSE, want)
	}
	if math.Abs(stats.RMSE-math.Sqrt(want)) > 1e-9 {
		t.Errorf("RMSE = %f, want sqrt(%f)", stats.RMSE, want)
	}
}

func TestCompare_DimensionMismatch(t *testing.T) {
	// WHAT: Differing dimensions are a typed failure, never a partial diff.
	// WHY: Silently cropping would fabricate a similarity that was not measured.
	a := solid(10, 10, color.White)
	b := solid(10, 12, color.White)

	_, err := Compare(a, b)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("error = %v, want ErrDimensionMismatch", err)
	}
}

func TestCompare_OffsetBounds(t *testing.T) {
	// WHAT: Images with non-zero bounds origins compare by size, not origin.
	// WHY: Decoders and SubImage produce rasters whose Min is not (0,0).
	a := solid(3, 3, color.RGBA{R: 9, G: 9, B: 9, A: 255})
	shifted := image.NewRGBA(image.Rect(100, 100, 103, 103))
	for y := 100; y < 103; y++ {
		for x := 100; x < 103; x++ {
			shifted.Set(x, y, color.RGBA{R: 9, G: 9, B: 9, A: 255})
		}
	}

	stats, err := Compare(a, shifted)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if stats.MSE != 0 {
		t.Errorf("MSE = %f, want 0", stats.MSE)
	}
}

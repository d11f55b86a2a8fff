package detection

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/docscan/internal/vision"
)

// Clamp limits for the adaptive Canny thresholds.
const (
	minLowThreshold  = 30
	maxHighThreshold = 200
)

// Preprocessed is the working-resolution edge map of an image together
// with the parameters that produced it.
type Preprocessed struct {
	// Edges is the binary Canny edge map at working resolution.
	Edges *image.Gray

	// Scale is source pixels per working pixel (≥ 1). Multiply working
	// coordinates by Scale to get source coordinates.
	Scale float64

	// Width and Height are the working dimensions.
	Width  int
	Height int

	// Low and High are the Canny thresholds used.
	Low  float64
	High float64

	// Mean and StdDev are the brightness statistics of the blurred image.
	Mean   float64
	StdDev float64
}

// AdaptiveThresholds derives Canny thresholds from brightness statistics:
// low = max(30, mean − stddev), high = min(200, mean + 2·stddev).
func AdaptiveThresholds(mean, stddev float64) (low, high float64) {
	low = math.Max(minLowThreshold, mean-stddev)
	high = math.Min(maxHighThreshold, mean+2*stddev)
	return low, high
}

// WorkingSize returns the working dimensions and scale for a w×h image
// limited to processingSize on its longest side. Images that already fit
// keep their size and a scale of 1.
func WorkingSize(w, h, processingSize int) (ww, wh int, scale float64) {
	longest := max(w, h)
	if longest <= processingSize {
		return w, h, 1
	}
	scale = float64(longest) / float64(processingSize)
	ww = max(1, int(math.Round(float64(w)/scale)))
	wh = max(1, int(math.Round(float64(h)/scale)))
	return ww, wh, scale
}

// Preprocess produces the working-resolution edge map of img.
//
// # Algorithm
//
//  1. Downscale with pixel-area resampling so the longest side is at most
//     processingSize
//  2. Convert to grayscale and apply a 5×5 Gaussian blur
//  3. Compute mean and standard deviation of the blurred image
//  4. Run Canny with AdaptiveThresholds(mean, stddev)
//
// When the statistics put low above high (very dark, flat images) the two
// are swapped.
func Preprocess(backend vision.Backend, img image.Image, processingSize int) (*Preprocessed, error) {
	if processingSize <= 0 {
		return nil, fmt.Errorf("invalid processing size %d", processingSize)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("cannot preprocess an empty image")
	}

	w, h, scale := WorkingSize(b.Dx(), b.Dy(), processingSize)
	working := img
	if scale != 1 {
		resized, err := backend.ResizeArea(img, w, h)
		if err != nil {
			return nil, fmt.Errorf("failed to resize: %w", err)
		}
		working = resized
	}

	gray, err := backend.Grayscale(working)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to grayscale: %w", err)
	}
	blurred, err := backend.GaussianBlur5(gray)
	if err != nil {
		return nil, fmt.Errorf("failed to blur: %w", err)
	}
	mean, stddev, err := backend.MeanStdDev(blurred)
	if err != nil {
		return nil, fmt.Errorf("failed to compute brightness statistics: %w", err)
	}

	low, high := AdaptiveThresholds(mean, stddev)
	if low > high {
		low, high = high, low
	}
	edges, err := backend.Canny(blurred, low, high)
	if err != nil {
		return nil, fmt.Errorf("failed to detect edges: %w", err)
	}

	return &Preprocessed{
		Edges:  edges,
		Scale:  scale,
		Width:  w,
		Height: h,
		Low:    low,
		High:   high,
		Mean:   mean,
		StdDev: stddev,
	}, nil
}

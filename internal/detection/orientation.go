package detection

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/ironsheep/docscan/internal/vision"
)

// Canny thresholds used for the orientation measurement. They are fixed,
// unlike the adaptive thresholds used for detection.
const (
	orientationCannyLow  = 50
	orientationCannyHigh = 150
)

// orientationBand is the half-width of the central bands, as a fraction
// of the image dimension.
const orientationBand = 0.2

// OrientationResult is the outcome of CorrectOrientation.
type OrientationResult struct {
	// Image is the oriented image: either the input or its 90° clockwise
	// rotation.
	Image image.Image

	// Rotated reports whether Image was rotated.
	Rotated bool

	// Ratio is horizontal / vertical edge density. It is 1 when no
	// vertical edge pixels were sampled or the measurement failed.
	Ratio float64
}

// EdgeDensityRatio samples every stride-th pixel of an edge map and
// returns the ratio of edge pixels in the horizontal central band to those
// in the vertical central band.
//
// A sampled edge pixel counts as horizontal when |y − h/2| ≤ 0.2·h and as
// vertical when |x − w/2| ≤ 0.2·w; a pixel near the centre counts as both.
// stride is max(1, min(w, h)/200).
func EdgeDensityRatio(edges *image.Gray) float64 {
	b := edges.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := max(1, min(w, h)/200)

	cx, cy := float64(w)/2, float64(h)/2
	bandX, bandY := orientationBand*float64(w), orientationBand*float64(h)

	var horizontal, vertical int
	for y := 0; y < h; y += stride {
		row := edges.Pix[y*edges.Stride:]
		inHorizontal := math.Abs(float64(y)-cy) <= bandY
		for x := 0; x < w; x += stride {
			if row[x] == 0 {
				continue
			}
			if inHorizontal {
				horizontal++
			}
			if math.Abs(float64(x)-cx) <= bandX {
				vertical++
			}
		}
	}

	if vertical == 0 {
		return 1
	}
	return float64(horizontal) / float64(vertical)
}

// CorrectOrientation rotates img 90° clockwise when its edge density
// ratio exceeds threshold.
//
// Orientation is best effort: if the backend fails or panics, the failure
// is logged as a warning and the unrotated image is returned with
// Rotated false and Ratio 1.
func CorrectOrientation(backend vision.Backend, img image.Image, threshold float64, logger *slog.Logger) (result OrientationResult) {
	if logger == nil {
		logger = slog.Default()
	}
	fallback := OrientationResult{Image: img, Ratio: 1}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("orientation.fallback", "backend", backend.Name(), "panic", fmt.Sprint(r))
			result = fallback
		}
	}()

	ratio, err := measureOrientation(backend, img)
	if err != nil {
		logger.Warn("orientation.fallback", "backend", backend.Name(), "error", err)
		return fallback
	}

	if ratio <= threshold {
		return OrientationResult{Image: img, Ratio: ratio}
	}

	rotated, err := backend.Rotate90CW(img)
	if err != nil {
		logger.Warn("orientation.fallback", "backend", backend.Name(), "error", err)
		return fallback
	}
	logger.Debug("orientation.rotated", "ratio", ratio, "threshold", threshold)
	return OrientationResult{Image: rotated, Rotated: true, Ratio: ratio}
}

func measureOrientation(backend vision.Backend, img image.Image) (float64, error) {
	gray, err := backend.Grayscale(img)
	if err != nil {
		return 0, fmt.Errorf("failed to convert to grayscale: %w", err)
	}
	edges, err := backend.Canny(gray, orientationCannyLow, orientationCannyHigh)
	if err != nil {
		return 0, fmt.Errorf("failed to detect edges: %w", err)
	}
	return EdgeDensityRatio(edges), nil
}

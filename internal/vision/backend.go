package vision

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/docscan/internal/geom"
)

// Interpolation selects the resampling kernel used by WarpPerspective.
type Interpolation int

const (
	// Cubic is bicubic (Catmull-Rom family) interpolation over a 4×4 neighbourhood.
	Cubic Interpolation = iota
	// Linear is bilinear interpolation over a 2×2 neighbourhood.
	Linear
)

func (i Interpolation) String() string {
	switch i {
	case Cubic:
		return "cubic"
	case Linear:
		return "linear"
	}
	return fmt.Sprintf("Interpolation(%d)", int(i))
}

// ParseInterpolation maps "cubic" or "linear" to an Interpolation.
func ParseInterpolation(name string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cubic", "bicubic":
		return Cubic, nil
	case "linear", "bilinear":
		return Linear, nil
	}
	return 0, fmt.Errorf("unknown interpolation %q (use cubic or linear)", name)
}

// ErrNotReady is returned by Ready when a backend cannot run in this process.
var ErrNotReady = errors.New("backend not ready")

// Backend is the capability set the scanner needs from an image-processing
// library. Implementations must be safe for concurrent use.
type Backend interface {
	// Name identifies the backend in logs and errors.
	Name() string

	// Ready reports whether the backend can run. It is checked once before
	// any buffer is allocated.
	Ready() error

	// Grayscale converts img to 8-bit luminance with BT.601 weights.
	Grayscale(img image.Image) (*image.Gray, error)

	// GaussianBlur5 smooths gray with a 5×5 Gaussian kernel.
	GaussianBlur5(gray *image.Gray) (*image.Gray, error)

	// MeanStdDev returns the mean and population standard deviation of
	// the pixel values of gray.
	MeanStdDev(gray *image.Gray) (mean, stddev float64, err error)

	// Canny returns a binary edge map (0 or 255) using the given
	// hysteresis thresholds.
	Canny(gray *image.Gray, low, high float64) (*image.Gray, error)

	// ExternalContours returns the outer contours of the non-zero regions
	// of a binary image. Contours inside holes of other regions are
	// not returned.
	ExternalContours(binary *image.Gray) ([][]geom.Point, error)

	// ApproxPolygon simplifies a closed contour with Douglas–Peucker at
	// tolerance epsilon.
	ApproxPolygon(contour []geom.Point, epsilon float64) ([]geom.Point, error)

	// IsConvex reports whether the closed polygon is convex.
	IsConvex(poly []geom.Point) bool

	// BoundingRect returns the axis-aligned bounding rectangle of pts.
	BoundingRect(pts []geom.Point) geom.Rect

	// ResizeArea resamples img to w×h using pixel-area averaging.
	ResizeArea(img image.Image, w, h int) (image.Image, error)

	// Rotate90CW rotates img 90 degrees clockwise.
	Rotate90CW(img image.Image) (image.Image, error)

	// WarpPerspective maps quad (in [TL, TR, BR, BL] order) of img onto a
	// w×h rectangle.
	WarpPerspective(img image.Image, quad geom.Quad, w, h int, interp Interpolation) (image.Image, error)
}

// New returns the backend registered under name. "native" is always
// available; "gocv" only in builds with the gocv tag.
func New(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "native":
		return NewNative(), nil
	case "gocv", "opencv":
		return newGoCV()
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}

package vision

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/docscan/internal/geom"
	docimaging "github.com/ironsheep/docscan/internal/imaging"
)

// Native is the pure-Go backend. The zero value is ready to use.
type Native struct{}

// NewNative returns the pure-Go backend.
func NewNative() *Native {
	return &Native{}
}

// gaussian5 is the integer 5×5 Gaussian kernel (σ ≈ 1) scaled by 1/273.
var gaussian5 = func() *convolution.Kernel {
	weights := []float64{
		1, 4, 7, 4, 1,
		4, 16, 26, 16, 4,
		7, 26, 41, 26, 7,
		4, 16, 26, 16, 4,
		1, 4, 7, 4, 1,
	}
	k := convolution.NewKernel(5, 5)
	for i, w := range weights {
		k.Matrix[i] = w / 273
	}
	return k
}()

// Name implements Backend.
func (n *Native) Name() string { return "native" }

// Ready implements Backend. The native backend is always ready.
func (n *Native) Ready() error { return nil }

// Grayscale implements Backend.
func (n *Native) Grayscale(img image.Image) (*image.Gray, error) {
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("grayscale: empty image")
	}
	return redChannel(effect.GrayscaleWithWeights(origin(img), 0.299, 0.587, 0.114)), nil
}

// GaussianBlur5 implements Backend. Borders are extended.
func (n *Native) GaussianBlur5(gray *image.Gray) (*image.Gray, error) {
	if gray.Bounds().Empty() {
		return nil, fmt.Errorf("gaussian blur: empty image")
	}
	blurred := convolution.Convolve(origin(gray), gaussian5, &convolution.Options{KeepAlpha: true})
	return redChannel(blurred), nil
}

// MeanStdDev implements Backend using the 256-bin luminance histogram.
func (n *Native) MeanStdDev(gray *image.Gray) (float64, float64, error) {
	if gray.Bounds().Empty() {
		return 0, 0, fmt.Errorf("mean/stddev: empty image")
	}
	hist := histogram.NewRGBAHistogram(gray)

	values := make([]float64, len(hist.R.Bins))
	weights := make([]float64, len(hist.R.Bins))
	for v, count := range hist.R.Bins {
		values[v] = float64(v)
		weights[v] = float64(count)
	}
	mean, std := stat.PopMeanStdDev(values, weights)
	return mean, std, nil
}

// Canny implements Backend.
func (n *Native) Canny(gray *image.Gray, low, high float64) (*image.Gray, error) {
	if low > high {
		return nil, fmt.Errorf("canny: low threshold %.1f above high threshold %.1f", low, high)
	}
	return docimaging.Canny(gray, low, high), nil
}

// ExternalContours implements Backend.
func (n *Native) ExternalContours(binary *image.Gray) ([][]geom.Point, error) {
	return traceExternalContours(binary), nil
}

// ApproxPolygon implements Backend.
func (n *Native) ApproxPolygon(contour []geom.Point, epsilon float64) ([]geom.Point, error) {
	if epsilon < 0 {
		return nil, fmt.Errorf("approx polygon: negative epsilon %.3f", epsilon)
	}
	return approxClosedPolygon(contour, epsilon), nil
}

// IsConvex implements Backend.
func (n *Native) IsConvex(poly []geom.Point) bool {
	return geom.IsConvex(poly)
}

// BoundingRect implements Backend.
func (n *Native) BoundingRect(pts []geom.Point) geom.Rect {
	return geom.BoundingBox(pts)
}

// ResizeArea implements Backend with a box filter, which averages the
// source pixels under each destination pixel when shrinking.
func (n *Native) ResizeArea(img image.Image, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("resize: invalid target size %dx%d", w, h)
	}
	return imaging.Resize(img, w, h, imaging.Box), nil
}

// Rotate90CW implements Backend.
func (n *Native) Rotate90CW(img image.Image) (image.Image, error) {
	// imaging rotates counter-clockwise.
	return imaging.Rotate270(img), nil
}

// WarpPerspective implements Backend.
func (n *Native) WarpPerspective(img image.Image, quad geom.Quad, w, h int, interp Interpolation) (image.Image, error) {
	return Warp(img, quad, w, h, interp)
}

// origin returns img with its bounds starting at (0,0). bild indexes its
// output from zero, so offset images are cloned first.
func origin(img image.Image) image.Image {
	if img.Bounds().Min == (image.Point{}) {
		return img
	}
	return imaging.Clone(img)
}

// redChannel extracts the R channel of a gray-valued RGBA image.
func redChannel(src *image.RGBA) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			out[x] = row[x*4]
		}
	}
	return dst
}

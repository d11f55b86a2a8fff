//go:build !gocv

package vision

import (
	"fmt"
	"image"

	"github.com/ironsheep/docscan/internal/geom"
)

// unavailable stands in for a backend that was not compiled in. Ready
// always fails, so it is rejected before any work is done.
type unavailable struct {
	name string
}

func newGoCV() (Backend, error) {
	return unavailable{name: "gocv"}, nil
}

func (u unavailable) err() error {
	return fmt.Errorf("%w: %s support not compiled in (rebuild with -tags gocv)", ErrNotReady, u.name)
}

func (u unavailable) Name() string { return u.name }
func (u unavailable) Ready() error { return u.err() }

func (u unavailable) Grayscale(image.Image) (*image.Gray, error) { return nil, u.err() }
func (u unavailable) GaussianBlur5(*image.Gray) (*image.Gray, error) { return nil, u.err() }
func (u unavailable) MeanStdDev(*image.Gray) (float64, float64, error) { return 0, 0, u.err() }
func (u unavailable) Canny(*image.Gray, float64, float64) (*image.Gray, error) {
	return nil, u.err()
}
func (u unavailable) ExternalContours(*image.Gray) ([][]geom.Point, error) { return nil, u.err() }
func (u unavailable) ApproxPolygon([]geom.Point, float64) ([]geom.Point, error) {
	return nil, u.err()
}
func (u unavailable) IsConvex([]geom.Point) bool { return false }
func (u unavailable) BoundingRect([]geom.Point) geom.Rect { return geom.Rect{} }
func (u unavailable) ResizeArea(image.Image, int, int) (image.Image, error) {
	return nil, u.err()
}
func (u unavailable) Rotate90CW(image.Image) (image.Image, error) { return nil, u.err() }
func (u unavailable) WarpPerspective(image.Image, geom.Quad, int, int, Interpolation) (image.Image, error) {
	return nil, u.err()
}

//go:build gocv

package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ironsheep/docscan/internal/geom"
)

// GoCV is the OpenCV backend. Every Mat and vector it creates is closed
// before the method returns.
type GoCV struct{}

func newGoCV() (Backend, error) {
	return &GoCV{}, nil
}

// Name implements Backend.
func (g *GoCV) Name() string { return "gocv" }

// Ready implements Backend by round-tripping a 1×1 Mat through OpenCV.
func (g *GoCV) Ready() error {
	m := gocv.NewMatWithSize(1, 1, gocv.MatTypeCV8U)
	defer m.Close()
	if m.Empty() {
		return fmt.Errorf("%w: gocv could not allocate a Mat", ErrNotReady)
	}
	return nil
}

// Grayscale implements Backend.
func (g *GoCV) Grayscale(img image.Image) (*image.Gray, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBToGray)
	return matToGray(gray)
}

// GaussianBlur5 implements Backend.
func (g *GoCV) GaussianBlur5(gray *image.Gray) (*image.Gray, error) {
	src, err := grayToMat(gray)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.GaussianBlur(src, &dst, image.Pt(5, 5), 0, 0, gocv.BorderDefault)
	return matToGray(dst)
}

// MeanStdDev implements Backend.
func (g *GoCV) MeanStdDev(gray *image.Gray) (float64, float64, error) {
	src, err := grayToMat(gray)
	if err != nil {
		return 0, 0, err
	}
	defer src.Close()

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(src, &mean, &stddev)
	return mean.GetDoubleAt(0, 0), stddev.GetDoubleAt(0, 0), nil
}

// Canny implements Backend.
func (g *GoCV) Canny(gray *image.Gray, low, high float64) (*image.Gray, error) {
	src, err := grayToMat(gray)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(src, &edges, float32(low), float32(high))
	return matToGray(edges)
}

// ExternalContours implements Backend.
func (g *GoCV) ExternalContours(binary *image.Gray) ([][]geom.Point, error) {
	src, err := grayToMat(binary)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	contours := gocv.FindContours(src, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	out := make([][]geom.Point, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		out = append(out, fromImagePoints(contours.At(i).ToPoints()))
	}
	return out, nil
}

// ApproxPolygon implements Backend.
func (g *GoCV) ApproxPolygon(contour []geom.Point, epsilon float64) ([]geom.Point, error) {
	pv := gocv.NewPointVectorFromPoints(toImagePoints(contour))
	defer pv.Close()

	approx := gocv.ApproxPolyDP(pv, epsilon, true)
	defer approx.Close()
	return fromImagePoints(approx.ToPoints()), nil
}

// IsConvex implements Backend.
func (g *GoCV) IsConvex(poly []geom.Point) bool {
	return geom.IsConvex(poly)
}

// BoundingRect implements Backend. OpenCV's rectangle is inclusive of the
// last pixel; it is converted to the point extent used elsewhere.
func (g *GoCV) BoundingRect(pts []geom.Point) geom.Rect {
	if len(pts) == 0 {
		return geom.Rect{}
	}
	pv := gocv.NewPointVectorFromPoints(toImagePoints(pts))
	defer pv.Close()

	r := gocv.BoundingRect(pv)
	return geom.Rect{
		MinX: float64(r.Min.X),
		MinY: float64(r.Min.Y),
		MaxX: float64(r.Max.X - 1),
		MaxY: float64(r.Max.Y - 1),
	}
}

// ResizeArea implements Backend.
func (g *GoCV) ResizeArea(img image.Image, w, h int) (image.Image, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(src, &dst, image.Pt(w, h), 0, 0, gocv.InterpolationArea)
	return dst.ToImage()
}

// Rotate90CW implements Backend.
func (g *GoCV) Rotate90CW(img image.Image) (image.Image, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Rotate(src, &dst, gocv.Rotate90Clockwise)
	return dst.ToImage()
}

// WarpPerspective implements Backend.
func (g *GoCV) WarpPerspective(img image.Image, quad geom.Quad, w, h int, interp Interpolation) (image.Image, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	from := gocv.NewPoint2fVectorFromPoints([]gocv.Point2f{
		{X: float32(quad[0].X), Y: float32(quad[0].Y)},
		{X: float32(quad[1].X), Y: float32(quad[1].Y)},
		{X: float32(quad[2].X), Y: float32(quad[2].Y)},
		{X: float32(quad[3].X), Y: float32(quad[3].Y)},
	})
	defer from.Close()
	to := gocv.NewPoint2fVectorFromPoints([]gocv.Point2f{
		{X: 0, Y: 0},
		{X: float32(w), Y: 0},
		{X: float32(w), Y: float32(h)},
		{X: 0, Y: float32(h)},
	})
	defer to.Close()

	m := gocv.GetPerspectiveTransform2f(from, to)
	defer m.Close()

	flags := gocv.InterpolationCubic
	if interp == Linear {
		flags = gocv.InterpolationLinear
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.WarpPerspectiveWithParams(src, &dst, m, image.Pt(w, h), flags, gocv.BorderConstant, color.RGBA{})
	return dst.ToImage()
}

func grayToMat(gray *image.Gray) (gocv.Mat, error) {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	buf := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(buf[y*w:(y+1)*w], gray.Pix[y*gray.Stride:y*gray.Stride+w])
	}
	m, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, buf)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to create Mat: %w", err)
	}
	return m, nil
}

func matToGray(m gocv.Mat) (*image.Gray, error) {
	data := m.ToBytes()
	w, h := m.Cols(), m.Rows()
	if len(data) < w*h {
		return nil, fmt.Errorf("unexpected Mat layout: %d bytes for %dx%d", len(data), w, h)
	}
	gray := image.NewGray(image.Rect(0, 0, w, h))
	copy(gray.Pix, data[:w*h])
	return gray, nil
}

func toImagePoints(pts []geom.Point) []image.Point {
	out := make([]image.Point, len(pts))
	for i, p := range pts {
		out[i] = image.Pt(int(p.X+0.5), int(p.Y+0.5))
	}
	return out
}

func fromImagePoints(pts []image.Point) []geom.Point {
	out := make([]geom.Point, len(pts))
	for i, p := range pts {
		out[i] = geom.Pt(float64(p.X), float64(p.Y))
	}
	return out
}

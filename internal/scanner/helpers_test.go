package scanner

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/ironsheep/docscan/internal/geom"
	"github.com/ironsheep/docscan/internal/vision"
)

const (
	background = 40
	foreground = 230
)

// createScene draws bright axis-aligned rectangles (inclusive corners) on
// a dark background.
func createScene(width, height int, rects ...image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = background
		if i%4 == 3 {
			img.Pix[i] = 255
		}
	}
	fg := color.RGBA{foreground, foreground, foreground, 255}
	for _, r := range rects {
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			for x := r.Min.X; x <= r.Max.X; x++ {
				img.SetRGBA(x, y, fg)
			}
		}
	}
	return img
}

// createSplitScene draws the rectangle (100,100)-(600,400) cut in two by a
// dark slanted gap running from x=150 at the top to x=450 at the bottom.
// The two trapezoids have heavily overlapping bounding boxes.
func createSplitScene() *image.RGBA {
	img := createScene(700, 500)
	fg := color.RGBA{foreground, foreground, foreground, 255}
	for y := 100; y <= 400; y++ {
		cut := 150 + float64(y-100)
		for x := 100; x <= 600; x++ {
			if math.Abs(float64(x)-cut) > 6 {
				img.SetRGBA(x, y, fg)
			}
		}
	}
	return img
}

// createStripes draws 20px diagonal stripes over the whole image.
func createStripes(width, height int) *image.RGBA {
	img := createScene(width, height)
	fg := color.RGBA{foreground, foreground, foreground, 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if ((x+y)/20)%2 == 0 {
				img.SetRGBA(x, y, fg)
			}
		}
	}
	return img
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bufferLogger returns a debug logger writing to the returned buffer.
func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func newTestScanner(t *testing.T, opts ...Option) *Scanner {
	t.Helper()
	base := []Option{
		WithLogger(quietLogger()),
		WithIDGenerator(NewSequentialGenerator("doc-")),
	}
	s, err := New(vision.NewNative(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

// assertCorners checks every corner of got against want within tol pixels
// on each axis.
func assertCorners(t *testing.T, got, want geom.Quad, tol float64) {
	t.Helper()
	for i := range want {
		if math.Abs(got[i].X-want[i].X) > tol || math.Abs(got[i].Y-want[i].Y) > tol {
			t.Errorf("corner %d: got %v, want %v (±%.0f)", i, got[i], want[i], tol)
		}
	}
}

func rectQuad(x0, y0, x1, y1 float64) geom.Quad {
	return geom.Quad{geom.Pt(x0, y0), geom.Pt(x1, y0), geom.Pt(x1, y1), geom.Pt(x0, y1)}
}

// notReadyBackend reports itself unavailable.
type notReadyBackend struct {
	*vision.Native
}

func (notReadyBackend) Name() string { return "broken" }

func (notReadyBackend) Ready() error {
	return vision.ErrNotReady
}

// warpPanicBackend panics while warping.
type warpPanicBackend struct {
	*vision.Native
}

func (warpPanicBackend) WarpPerspective(image.Image, geom.Quad, int, int, vision.Interpolation) (image.Image, error) {
	panic("warp exploded")
}

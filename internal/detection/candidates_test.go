package detection

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/ironsheep/docscan/internal/vision"
)

var defaultExtract = ExtractOptions{
	MinAreaFraction:     0.01,
	ApproxEpsilonFactor: 0.02,
	MinVertices:         4,
	MaxVertices:         8,
}

// drawLine plots an 8-connected line with Bresenham's algorithm.
func drawLine(img *image.Gray, x0, y0, x1, y1 int) {
	dx, dy := x1-x0, y1-y0
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx - dy
	for {
		img.Pix[y0*img.Stride+x0] = 255
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			x0 += sx
		}
		if e2 < dx {
			e += dx
			y0 += sy
		}
	}
}

// drawPolyline closes and draws the polygon through pts.
func drawPolyline(img *image.Gray, pts ...image.Point) {
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		drawLine(img, p.X, p.Y, q.X, q.Y)
	}
}

func edgeMap(width, height int) *Preprocessed {
	return &Preprocessed{
		Edges:  image.NewGray(image.Rect(0, 0, width, height)),
		Scale:  1,
		Width:  width,
		Height: height,
	}
}

func TestExtractCandidates_Rectangle(t *testing.T) {
	pre := edgeMap(300, 200)
	drawPolyline(pre.Edges, image.Pt(50, 40), image.Pt(250, 40), image.Pt(250, 160), image.Pt(50, 160))

	ext, err := ExtractCandidates(context.Background(), vision.NewNative(), pre, defaultExtract)
	if err != nil {
		t.Fatalf("ExtractCandidates failed: %v", err)
	}
	if ext.Contours != 1 || len(ext.Candidates) != 1 {
		t.Fatalf("got %d contours, %d candidates; want 1 and 1", ext.Contours, len(ext.Candidates))
	}

	c := ext.Candidates[0]
	if len(c.Polygon) != 4 {
		t.Errorf("polygon: got %d vertices (%v), want 4", len(c.Polygon), c.Polygon)
	}
	if c.Area != 200*120 {
		t.Errorf("area: got %v, want %d", c.Area, 200*120)
	}
	if c.Bounds.Width() != 200 || c.Bounds.Height() != 120 {
		t.Errorf("bounds: got %+v", c.Bounds)
	}
	if Score(c) != 100 {
		t.Errorf("a clean rectangle should score 100, got %d", Score(c))
	}
}

func TestExtractCandidates_Filters(t *testing.T) {
	pre := edgeMap(400, 300)
	// too small: 10x10 is under 1% of 120000
	drawPolyline(pre.Edges, image.Pt(5, 5), image.Pt(15, 5), image.Pt(15, 15), image.Pt(5, 15))
	// triangle: too few vertices
	drawPolyline(pre.Edges, image.Pt(30, 30), image.Pt(150, 30), image.Pt(30, 130))
	// L shape: concave
	drawPolyline(pre.Edges,
		image.Pt(200, 20), image.Pt(380, 20), image.Pt(380, 80),
		image.Pt(300, 80), image.Pt(300, 160), image.Pt(200, 160))
	// valid rectangle
	drawPolyline(pre.Edges, image.Pt(60, 180), image.Pt(340, 180), image.Pt(340, 290), image.Pt(60, 290))

	ext, err := ExtractCandidates(context.Background(), vision.NewNative(), pre, defaultExtract)
	if err != nil {
		t.Fatalf("ExtractCandidates failed: %v", err)
	}

	if ext.Contours != 4 {
		t.Errorf("Contours: got %d, want 4", ext.Contours)
	}
	if ext.TooSmall != 1 {
		t.Errorf("TooSmall: got %d, want 1", ext.TooSmall)
	}
	if ext.Rejected != 2 {
		t.Errorf("Rejected: got %d, want 2", ext.Rejected)
	}
	if len(ext.Candidates) != 1 || ext.Candidates[0].Bounds.MinY != 180 {
		t.Errorf("expected only the bottom rectangle, got %+v", ext.Candidates)
	}
}

func TestExtractCandidates_VertexLimits(t *testing.T) {
	pre := edgeMap(300, 200)
	drawPolyline(pre.Edges, image.Pt(50, 40), image.Pt(250, 40), image.Pt(250, 160), image.Pt(50, 160))

	opts := defaultExtract
	opts.MinVertices = 5
	ext, err := ExtractCandidates(context.Background(), vision.NewNative(), pre, opts)
	if err != nil {
		t.Fatalf("ExtractCandidates failed: %v", err)
	}
	if len(ext.Candidates) != 0 || ext.Rejected != 1 {
		t.Errorf("a quad should be rejected when 5 vertices are required, got %+v", ext)
	}
}

func TestExtractCandidates_Cancelled(t *testing.T) {
	pre := edgeMap(300, 200)
	drawPolyline(pre.Edges, image.Pt(50, 40), image.Pt(250, 40), image.Pt(250, 160), image.Pt(50, 160))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExtractCandidates(ctx, vision.NewNative(), pre, defaultExtract)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestExtractCandidates_Blank(t *testing.T) {
	ext, err := ExtractCandidates(context.Background(), vision.NewNative(), edgeMap(100, 100), defaultExtract)
	if err != nil {
		t.Fatalf("ExtractCandidates failed: %v", err)
	}
	if ext.Contours != 0 || len(ext.Candidates) != 0 {
		t.Errorf("blank edge map: got %+v", ext)
	}
}

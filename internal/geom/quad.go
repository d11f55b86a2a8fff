package geom

import "fmt"

// Quad is a quadrilateral. Once normalized it is ordered
// [TopLeft, TopRight, BottomRight, BottomLeft].
type Quad [4]Point

// Corner indexes into a normalized Quad.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// TopLeft returns q[0].
func (q Quad) TopLeft() Point { return q[TopLeft] }

// TopRight returns q[1].
func (q Quad) TopRight() Point { return q[TopRight] }

// BottomRight returns q[2].
func (q Quad) BottomRight() Point { return q[BottomRight] }

// BottomLeft returns q[3].
func (q Quad) BottomLeft() Point { return q[BottomLeft] }

// Points returns the corners as a slice in quad order.
func (q Quad) Points() []Point {
	return []Point{q[0], q[1], q[2], q[3]}
}

// Scale returns the quad with every corner multiplied by s.
func (q Quad) Scale(s float64) Quad {
	return Quad{q[0].Mul(s), q[1].Mul(s), q[2].Mul(s), q[3].Mul(s)}
}

// Bounds returns the axis-aligned bounding box of the quad.
func (q Quad) Bounds() Rect {
	return BoundingBox(q[:])
}

// Area returns the enclosed area of the quad.
func (q Quad) Area() float64 {
	return PolygonArea(q[:])
}

// ValidationError reports malformed geometric input.
type ValidationError struct {
	// Op is the operation that rejected the input, e.g. "normalize corners".
	Op string
	// Msg describes what was wrong.
	Msg string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input to %s: %s", e.Op, e.Msg)
}

func validationErrorf(op, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// ExtremeCorners reduces a polygon to its four extreme corners.
//
// The corners are the points minimizing x+y (top-left), maximizing x-y
// (top-right), maximizing x+y (bottom-right) and minimizing x-y
// (bottom-left). Each corner is taken from a distinct input vertex, so for
// exactly 4 points the result is a permutation of the input and for more
// points it is a 4-point subset. Ties resolve to the earliest vertex.
//
// Returns a *ValidationError when fewer than 4 points are supplied.
func ExtremeCorners(pts []Point) (Quad, error) {
	if len(pts) < 4 {
		return Quad{}, validationErrorf("extreme corners", "need at least 4 points, got %d", len(pts))
	}

	used := make([]bool, len(pts))
	pick := func(score func(Point) float64, maximize bool) int {
		best := -1
		var bestScore float64
		for i, p := range pts {
			if used[i] {
				continue
			}
			s := score(p)
			if best == -1 || (maximize && s > bestScore) || (!maximize && s < bestScore) {
				best, bestScore = i, s
			}
		}
		used[best] = true
		return best
	}

	sum := func(p Point) float64 { return p.X + p.Y }
	diff := func(p Point) float64 { return p.X - p.Y }

	tl := pick(sum, false)
	br := pick(sum, true)
	tr := pick(diff, true)
	bl := pick(diff, false)

	return Quad{pts[tl], pts[tr], pts[br], pts[bl]}, nil
}

// NormalizeCorners returns pts as a Quad in [TL, TR, BR, BL] order,
// regardless of input order. It is ExtremeCorners applied to the points;
// calling it on an already normalized quad returns the same quad.
func NormalizeCorners(pts []Point) (Quad, error) {
	if len(pts) < 4 {
		return Quad{}, validationErrorf("normalize corners", "need at least 4 points, got %d", len(pts))
	}
	return ExtremeCorners(pts)
}

// IOU returns the intersection over union of the axis-aligned bounding
// boxes of a and b, in [0, 1]. Two identical quads have IOU 1 even when
// their bounding box has no area.
func IOU(a, b Quad) float64 {
	ra, rb := a.Bounds(), b.Bounds()
	inter := ra.Intersect(rb).Area()
	union := ra.Area() + rb.Area() - inter
	if union <= 0 {
		if ra == rb {
			return 1
		}
		return 0
	}
	return inter / union
}

package vision

import (
	"math"

	"github.com/ironsheep/docscan/internal/geom"
)

// approxClosedPolygon simplifies a closed contour with Douglas–Peucker.
//
// The contour is first split at two mutually distant points, found by
// walking to the farthest point twice from the first one, so that the
// split points are near-extreme vertices rather than arbitrary ones.
// Output vertices keep their contour order.
func approxClosedPolygon(contour []geom.Point, epsilon float64) []geom.Point {
	n := len(contour)
	if n <= 3 {
		return append([]geom.Point(nil), contour...)
	}

	b := farthestFrom(contour, 0)
	a := farthestFrom(contour, b)
	if a == b {
		return []geom.Point{contour[a]}
	}
	if a > b {
		a, b = b, a
	}

	keep := make([]bool, n)
	keep[a] = true
	keep[b] = true

	// Segments are index ranges into the contour; end may exceed n-1 to
	// wrap around through index 0.
	type segment struct{ start, end int }
	stack := []segment{{a, b}, {b, a + n}}

	at := func(i int) geom.Point { return contour[i%n] }

	for len(stack) > 0 {
		seg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seg.end-seg.start < 2 {
			continue
		}

		p0, p1 := at(seg.start), at(seg.end)
		maxDist := -1.0
		maxIdx := seg.start
		for i := seg.start + 1; i < seg.end; i++ {
			d := distToLine(at(i), p0, p1)
			if d > maxDist {
				maxDist, maxIdx = d, i
			}
		}

		if maxDist > epsilon {
			keep[maxIdx%n] = true
			stack = append(stack, segment{seg.start, maxIdx}, segment{maxIdx, seg.end})
		}
	}

	out := make([]geom.Point, 0, 8)
	for i, k := range keep {
		if k {
			out = append(out, contour[i])
		}
	}
	return out
}

// farthestFrom returns the index of the contour point farthest from
// contour[from]. Ties resolve to the lowest index.
func farthestFrom(contour []geom.Point, from int) int {
	best, bestDist := from, -1.0
	origin := contour[from]
	for i, p := range contour {
		dx, dy := p.X-origin.X, p.Y-origin.Y
		if d := dx*dx + dy*dy; d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// distToLine is the perpendicular distance from p to the line through a
// and b, or the distance to a when a and b coincide.
func distToLine(p, a, b geom.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	norm := math.Hypot(dx, dy)
	if norm < 1e-12 {
		return p.Dist(a)
	}
	return math.Abs(dy*(p.X-a.X)-dx*(p.Y-a.Y)) / norm
}

package geom

import "math"

// PolygonArea returns the absolute area enclosed by a closed polygon using
// the shoelace formula. Fewer than 3 points enclose no area.
func PolygonArea(pts []Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// Perimeter returns the length of the closed polyline through pts,
// including the closing segment from the last point back to the first.
func Perimeter(pts []Point) float64 {
	n := len(pts)
	if n < 2 {
		return 0
	}
	var length float64
	for i := 0; i < n-1; i++ {
		length += pts[i].Dist(pts[i+1])
	}
	return length + pts[n-1].Dist(pts[0])
}

// cross returns the z component of (b-a) x (c-b).
// Positive values turn one way, negative the other, zero is collinear.
func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
}

// IsConvex reports whether the closed polygon turns consistently in one
// direction at every vertex. Collinear vertices are tolerated; a polygon
// with fewer than 3 points or no turn at all is not convex.
func IsConvex(pts []Point) bool {
	n := len(pts)
	if n < 3 {
		return false
	}

	sign := 0
	for i := 0; i < n; i++ {
		z := cross(pts[i], pts[(i+1)%n], pts[(i+2)%n])
		switch {
		case z > 0:
			if sign < 0 {
				return false
			}
			sign = 1
		case z < 0:
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	if sign == 0 {
		return false
	}

	// A consistent turn direction is not enough for self-intersecting
	// stars; the total turning must be a single revolution.
	var turn float64
	for i := 0; i < n; i++ {
		a := pts[(i+1)%n].Sub(pts[i])
		b := pts[(i+2)%n].Sub(pts[(i+1)%n])
		turn += math.Atan2(a.X*b.Y-a.Y*b.X, a.X*b.X+a.Y*b.Y)
	}
	return math.Abs(math.Abs(turn)-2*math.Pi) < 1e-6
}

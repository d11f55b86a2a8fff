package geom

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestNormalizeCorners_AnyOrder(t *testing.T) {
	want := Quad{Pt(10, 10), Pt(90, 12), Pt(88, 95), Pt(8, 90)}

	orders := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
		{1, 3, 0, 2},
	}
	for _, order := range orders {
		in := make([]Point, 4)
		for i, idx := range order {
			in[i] = want[idx]
		}
		got, err := NormalizeCorners(in)
		if err != nil {
			t.Fatalf("NormalizeCorners(%v) failed: %v", in, err)
		}
		if got != want {
			t.Errorf("NormalizeCorners(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizeCorners_SumInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		pts := make([]Point, 4)
		for j := range pts {
			pts[j] = Pt(rng.Float64()*1000, rng.Float64()*1000)
		}
		q, err := NormalizeCorners(pts)
		if err != nil {
			t.Fatalf("NormalizeCorners failed: %v", err)
		}
		tl := q.TopLeft().X + q.TopLeft().Y
		br := q.BottomRight().X + q.BottomRight().Y
		for _, p := range q {
			s := p.X + p.Y
			if tl > s {
				t.Fatalf("TL sum %.3f > %.3f for %v", tl, s, q)
			}
			if br < s {
				t.Fatalf("BR sum %.3f < %.3f for %v", br, s, q)
			}
		}
	}
}

func TestNormalizeCorners_TooFewPoints(t *testing.T) {
	_, err := NormalizeCorners([]Point{Pt(0, 0), Pt(1, 0), Pt(1, 1)})
	if err == nil {
		t.Fatal("expected error for 3 points")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Op != "normalize corners" {
		t.Errorf("Op: got %q, want %q", verr.Op, "normalize corners")
	}
}

func TestExtremeCorners_Permutation(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		pts := make([]Point, 4)
		for j := range pts {
			pts[j] = Pt(float64(rng.Intn(50)), float64(rng.Intn(50)))
		}
		q, err := ExtremeCorners(pts)
		if err != nil {
			t.Fatalf("ExtremeCorners failed: %v", err)
		}
		if !sameMultiset(pts, q[:]) {
			t.Fatalf("ExtremeCorners(%v) = %v, not a permutation", pts, q)
		}
	}
}

func TestExtremeCorners_Subset(t *testing.T) {
	// Octagon around a 100x60 box; corners are clipped.
	pts := []Point{
		Pt(10, 0), Pt(90, 0), Pt(100, 10), Pt(100, 50),
		Pt(90, 60), Pt(10, 60), Pt(0, 50), Pt(0, 10),
	}
	q, err := ExtremeCorners(pts)
	if err != nil {
		t.Fatalf("ExtremeCorners failed: %v", err)
	}
	for _, c := range q {
		if !contains(pts, c) {
			t.Errorf("corner %v not in input", c)
		}
	}
	seen := map[Point]bool{}
	for _, c := range q {
		if seen[c] {
			t.Errorf("corner %v picked twice", c)
		}
		seen[c] = true
	}
	if q.TopLeft().X+q.TopLeft().Y != 10 {
		t.Errorf("TopLeft: got %v", q.TopLeft())
	}
	if q.BottomRight().X+q.BottomRight().Y != 150 {
		t.Errorf("BottomRight: got %v", q.BottomRight())
	}
}

func TestIOU(t *testing.T) {
	a := Quad{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}
	b := Quad{Pt(5, 0), Pt(15, 0), Pt(15, 10), Pt(5, 10)}
	far := Quad{Pt(50, 50), Pt(60, 50), Pt(60, 60), Pt(50, 60)}

	tests := []struct {
		name string
		a, b Quad
		want float64
	}{
		{"identical", a, a, 1},
		{"disjoint", a, far, 0},
		{"half overlap", a, b, 50.0 / 150.0},
		{"degenerate identical", Quad{}, Quad{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IOU(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("IOU: got %.6f, want %.6f", got, tt.want)
			}
			if rev := IOU(tt.b, tt.a); math.Abs(rev-got) > 1e-12 {
				t.Errorf("IOU not symmetric: %.6f vs %.6f", got, rev)
			}
		})
	}
}

func TestPolygonAreaAndPerimeter(t *testing.T) {
	square := []Point{Pt(0, 0), Pt(4, 0), Pt(4, 3), Pt(0, 3)}
	if got := PolygonArea(square); got != 12 {
		t.Errorf("PolygonArea: got %v, want 12", got)
	}
	if got := Perimeter(square); got != 14 {
		t.Errorf("Perimeter: got %v, want 14", got)
	}
	if got := PolygonArea(square[:2]); got != 0 {
		t.Errorf("PolygonArea of 2 points: got %v, want 0", got)
	}
}

func TestIsConvex(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
		want bool
	}{
		{"square", []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}, true},
		{"square reversed", []Point{Pt(0, 10), Pt(10, 10), Pt(10, 0), Pt(0, 0)}, true},
		{"collinear vertex", []Point{Pt(0, 0), Pt(5, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}, true},
		{"arrow", []Point{Pt(0, 0), Pt(10, 5), Pt(0, 10), Pt(3, 5)}, false},
		{"bow tie", []Point{Pt(0, 0), Pt(10, 10), Pt(10, 0), Pt(0, 10)}, false},
		{"line", []Point{Pt(0, 0), Pt(5, 0), Pt(10, 0)}, false},
		{"too few", []Point{Pt(0, 0), Pt(5, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConvex(tt.pts); got != tt.want {
				t.Errorf("IsConvex(%v): got %v, want %v", tt.pts, got, tt.want)
			}
		})
	}
}

func TestBoundingBox(t *testing.T) {
	r := BoundingBox([]Point{Pt(3, 7), Pt(-2, 4), Pt(8, 1)})
	want := Rect{MinX: -2, MinY: 1, MaxX: 8, MaxY: 7}
	if r != want {
		t.Errorf("BoundingBox: got %+v, want %+v", r, want)
	}
	if r.Area() != 60 {
		t.Errorf("Area: got %v, want 60", r.Area())
	}
}

func sameMultiset(a, b []Point) bool {
	if len(a) != len(b) {
		return false
	}
	counts := map[Point]int{}
	for _, p := range a {
		counts[p]++
	}
	for _, p := range b {
		counts[p]--
		if counts[p] < 0 {
			return false
		}
	}
	return true
}

func contains(pts []Point, p Point) bool {
	for _, q := range pts {
		if q == p {
			return true
		}
	}
	return false
}

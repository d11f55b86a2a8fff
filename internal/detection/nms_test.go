package detection

import (
	"math/rand"
	"testing"

	"github.com/ironsheep/docscan/internal/geom"
)

func boxCandidate(index, confidence int, x0, y0, x1, y1 float64) Candidate {
	return Candidate{
		Index:      index,
		Confidence: confidence,
		Quad:       geom.Quad{geom.Pt(x0, y0), geom.Pt(x1, y0), geom.Pt(x1, y1), geom.Pt(x0, y1)},
	}
}

func indexes(cands []Candidate) []int {
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.Index
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSuppressDuplicates(t *testing.T) {
	tests := []struct {
		name      string
		cands     []Candidate
		threshold float64
		want      []int
	}{
		{
			name: "keeps most confident of an overlapping pair",
			cands: []Candidate{
				boxCandidate(0, 70, 0, 0, 100, 100),
				boxCandidate(1, 90, 2, 2, 102, 102),
				boxCandidate(2, 60, 300, 300, 400, 400),
			},
			threshold: 0.5,
			want:      []int{1, 2},
		},
		{
			name: "disjoint candidates all survive",
			cands: []Candidate{
				boxCandidate(0, 50, 0, 0, 10, 10),
				boxCandidate(1, 80, 20, 0, 30, 10),
				boxCandidate(2, 65, 40, 0, 50, 10),
			},
			threshold: 0.5,
			want:      []int{1, 2, 0},
		},
		{
			name: "ties keep input order",
			cands: []Candidate{
				boxCandidate(0, 80, 0, 0, 100, 100),
				boxCandidate(1, 80, 0, 0, 100, 100),
			},
			threshold: 0.5,
			want:      []int{0},
		},
		{
			name: "IOU equal to threshold suppresses",
			cands: []Candidate{
				boxCandidate(0, 90, 0, 0, 10, 10),
				boxCandidate(1, 80, 0, 0, 10, 5),
			},
			threshold: 0.5,
			want:      []int{0},
		},
		{
			name: "IOU below threshold keeps both",
			cands: []Candidate{
				boxCandidate(0, 90, 0, 0, 10, 10),
				boxCandidate(1, 80, 5, 0, 15, 10),
			},
			threshold: 0.5,
			want:      []int{0, 1},
		},
		{
			name: "suppressed candidates do not suppress",
			cands: []Candidate{
				boxCandidate(0, 90, 0, 0, 10, 10),
				boxCandidate(1, 80, 3, 0, 13, 10),
				boxCandidate(2, 70, 6, 0, 16, 10),
			},
			threshold: 0.5,
			want:      []int{0, 2},
		},
		{
			name: "zero threshold keeps only the best",
			cands: []Candidate{
				boxCandidate(0, 10, 0, 0, 10, 10),
				boxCandidate(1, 30, 500, 500, 510, 510),
				boxCandidate(2, 20, 900, 900, 910, 910),
			},
			threshold: 0,
			want:      []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := indexes(SuppressDuplicates(tt.cands, tt.threshold))
			if !equalInts(got, tt.want) {
				t.Errorf("kept %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSuppressDuplicates_Empty(t *testing.T) {
	if got := SuppressDuplicates(nil, 0.5); len(got) != 0 {
		t.Errorf("expected no candidates, got %v", got)
	}
}

func TestSuppressDuplicates_InputUnchanged(t *testing.T) {
	cands := []Candidate{
		boxCandidate(0, 10, 0, 0, 10, 10),
		boxCandidate(1, 90, 1, 1, 11, 11),
	}
	SuppressDuplicates(cands, 0.5)
	if cands[0].Index != 0 || cands[1].Index != 1 {
		t.Errorf("input slice was reordered: %v", indexes(cands))
	}
}

func TestSuppressDuplicates_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for round := 0; round < 100; round++ {
		n := 1 + rng.Intn(20)
		cands := make([]Candidate, n)
		best := 0
		for i := range cands {
			x, y := rng.Float64()*200, rng.Float64()*200
			w, h := 5+rng.Float64()*80, 5+rng.Float64()*80
			cands[i] = boxCandidate(i, rng.Intn(101), x, y, x+w, y+h)
			if cands[i].Confidence > cands[best].Confidence {
				best = i
			}
		}

		kept := SuppressDuplicates(cands, 0.5)
		if len(kept) == 0 || kept[0].Index != best {
			t.Fatalf("round %d: most confident candidate %d not first in %v", round, best, indexes(kept))
		}
		for i := range kept {
			if i > 0 && kept[i].Confidence > kept[i-1].Confidence {
				t.Fatalf("round %d: result not in confidence order", round)
			}
			for j := i + 1; j < len(kept); j++ {
				if geom.IOU(kept[i].Quad, kept[j].Quad) >= 0.5 {
					t.Fatalf("round %d: kept %d and %d overlap", round, kept[i].Index, kept[j].Index)
				}
			}
		}
	}
}

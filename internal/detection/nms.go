package detection

import (
	"sort"

	"github.com/tidwall/rtree"

	"github.com/ironsheep/docscan/internal/geom"
)

// SuppressDuplicates removes overlapping candidates, keeping the more
// confident one of each overlapping pair.
//
// Candidates are sorted by confidence, highest first, with ties kept in
// input order. Walking that order, each candidate not yet suppressed is
// kept and suppresses every later candidate whose quad has IOU ≥
// threshold with it. The most confident candidate always survives.
//
// Quads are indexed in an R-tree on their bounding boxes, so each kept
// candidate only tests the candidates it actually touches. A threshold of
// 0 or less suppresses everything after the first.
//
// The input slice is not modified. The result is in confidence order.
func SuppressDuplicates(cands []Candidate, threshold float64) []Candidate {
	if len(cands) == 0 {
		return nil
	}

	sorted := make([]Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	if threshold <= 0 {
		return sorted[:1]
	}

	var tr rtree.RTreeG[int]
	for i, c := range sorted {
		lo, hi := boxOf(c.Quad)
		tr.Insert(lo, hi, i)
	}

	suppressed := make([]bool, len(sorted))
	kept := make([]Candidate, 0, len(sorted))
	for i, c := range sorted {
		if suppressed[i] {
			continue
		}
		kept = append(kept, c)

		lo, hi := boxOf(c.Quad)
		tr.Search(lo, hi, func(_, _ [2]float64, j int) bool {
			if j > i && !suppressed[j] && geom.IOU(c.Quad, sorted[j].Quad) >= threshold {
				suppressed[j] = true
			}
			return true
		})
	}
	return kept
}

func boxOf(q geom.Quad) (lo, hi [2]float64) {
	r := q.Bounds()
	return [2]float64{r.MinX, r.MinY}, [2]float64{r.MaxX, r.MaxY}
}

package scanner

import (
	"math"

	"github.com/ironsheep/docscan/internal/geom"
)

// normalizeCorners turns a working-resolution polygon into a source
// resolution quad in [TL, TR, BR, BL] order.
//
// A 4-vertex polygon is used as is; larger polygons are reduced to their
// extreme corners first. The corners are scaled before the final
// ordering, so the order is decided on source coordinates.
func normalizeCorners(poly []geom.Point, scale float64) (geom.Quad, error) {
	pts := poly
	if len(poly) > 4 {
		q, err := geom.ExtremeCorners(poly)
		if err != nil {
			return geom.Quad{}, err
		}
		pts = q.Points()
	}
	return geom.NormalizeCorners(geom.Scale(pts, scale))
}

// outputSize returns the crop dimensions for a normalized quad: the longer
// of each pair of opposite edges, rounded, at least 1.
func outputSize(q geom.Quad) (w, h int) {
	width := math.Max(q.TopRight().Dist(q.TopLeft()), q.BottomRight().Dist(q.BottomLeft()))
	height := math.Max(q.BottomLeft().Dist(q.TopLeft()), q.BottomRight().Dist(q.TopRight()))
	return max(1, int(math.Round(width))), max(1, int(math.Round(height)))
}

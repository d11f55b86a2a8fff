package detection

import (
	"context"
	"fmt"

	"github.com/ironsheep/docscan/internal/geom"
	"github.com/ironsheep/docscan/internal/vision"
)

// Candidate is a contour that may be a document.
type Candidate struct {
	// Index is the position of the contour in trace order.
	Index int `json:"index"`

	// Contour is the traced contour at working resolution.
	Contour []geom.Point `json:"-"`

	// Polygon is the simplified contour (4-8 vertices) at working resolution.
	Polygon []geom.Point `json:"polygon"`

	// Area is the area enclosed by Contour.
	Area float64 `json:"area"`

	// Bounds is the axis-aligned bounding rectangle of Contour.
	Bounds geom.Rect `json:"bounds"`

	// Quad is the normalized corner quad at source resolution. It is
	// filled in after corner normalization.
	Quad geom.Quad `json:"quad"`

	// Confidence is the 0-100 score. It is filled in by Score.
	Confidence int `json:"confidence"`
}

// ExtractOptions controls candidate filtering.
type ExtractOptions struct {
	// MinAreaFraction is the smallest contour area accepted, as a fraction
	// of the working image area.
	MinAreaFraction float64

	// ApproxEpsilonFactor scales the contour perimeter into the
	// Douglas–Peucker tolerance.
	ApproxEpsilonFactor float64

	// MinVertices and MaxVertices bound the simplified polygon size.
	MinVertices int
	MaxVertices int
}

// Extraction is the result of ExtractCandidates.
type Extraction struct {
	Candidates []Candidate

	// Contours is the number of external contours found.
	Contours int

	// TooSmall counts contours below the area limit.
	TooSmall int

	// Rejected counts contours whose polygon had the wrong vertex count
	// or was not convex.
	Rejected int
}

// ExtractCandidates finds document-shaped contours in a preprocessed edge
// map.
//
// For each external contour in trace order:
//
//  1. Discard it if its area is below MinAreaFraction of the working image
//  2. Simplify it with tolerance ApproxEpsilonFactor × perimeter
//  3. Keep it if the polygon has MinVertices to MaxVertices vertices and
//     is convex
//
// ctx is checked before each contour; cancellation returns ctx.Err().
func ExtractCandidates(ctx context.Context, backend vision.Backend, pre *Preprocessed, opts ExtractOptions) (*Extraction, error) {
	contours, err := backend.ExternalContours(pre.Edges)
	if err != nil {
		return nil, fmt.Errorf("failed to find contours: %w", err)
	}

	minArea := opts.MinAreaFraction * float64(pre.Width*pre.Height)
	result := &Extraction{Contours: len(contours)}

	for i, contour := range contours {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		area := geom.PolygonArea(contour)
		if area < minArea {
			result.TooSmall++
			continue
		}

		epsilon := opts.ApproxEpsilonFactor * geom.Perimeter(contour)
		poly, err := backend.ApproxPolygon(contour, epsilon)
		if err != nil {
			return nil, fmt.Errorf("failed to approximate contour %d: %w", i, err)
		}

		n := len(poly)
		if n < opts.MinVertices || n > opts.MaxVertices || !backend.IsConvex(poly) {
			result.Rejected++
			continue
		}

		result.Candidates = append(result.Candidates, Candidate{
			Index:   i,
			Contour: contour,
			Polygon: poly,
			Area:    area,
			Bounds:  backend.BoundingRect(contour),
		})
	}
	return result, nil
}

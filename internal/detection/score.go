package detection

import "math"

// Scoring constants. They are empirical and kept stable so confidence
// values stay comparable across releases.
const (
	maxConfidence = 100

	// polygonPenalty applies when the polygon had more than 4 vertices.
	polygonPenalty = 10

	// solidityTarget is the solidity below which points are lost, one
	// per hundredth of shortfall.
	solidityTarget = 0.9

	// aspectPenalty applies when width/height is outside [minAspect, maxAspect].
	aspectPenalty = 25
	minAspect     = 0.2
	maxAspect     = 5.0
)

// Score rates a candidate from 0 to 100.
//
// # Algorithm
//
// Start at 100, then:
//   - subtract 10 if the polygon has more than 4 vertices
//   - solidity = contour area / bounding box area; if below 0.9 subtract
//     floor((0.9 − solidity) × 100)
//   - aspect = bounding box width / height; if outside [0.2, 5] subtract 25
//   - clamp to [0, 100]
//
// A zero-area bounding box has solidity 0; a zero height gives an
// unbounded aspect ratio.
func Score(c Candidate) int {
	score := maxConfidence

	if len(c.Polygon) > 4 {
		score -= polygonPenalty
	}

	var solidity float64
	if bboxArea := c.Bounds.Area(); bboxArea > 0 {
		solidity = c.Area / bboxArea
	}
	if solidity < solidityTarget {
		score -= int(math.Floor((solidityTarget - solidity) * 100))
	}

	aspect := math.Inf(1)
	if h := c.Bounds.Height(); h > 0 {
		aspect = c.Bounds.Width() / h
	}
	if aspect < minAspect || aspect > maxAspect {
		score -= aspectPenalty
	}

	return min(maxConfidence, max(0, score))
}

// Accept reports whether a confidence passes threshold. The comparison
// is strict.
func Accept(confidence, threshold int) bool {
	return confidence > threshold
}

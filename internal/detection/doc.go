// Package detection implements the document detection stages of the scanner.
//
// The stages run in this order on one source image:
//
//  1. CorrectOrientation: measure edge density in a horizontal and a
//     vertical band through the centre of the image and rotate the image
//     90° clockwise when horizontal structure dominates.
//  2. Preprocess: downscale to the working resolution, blur, and run Canny
//     with thresholds derived from the image's own brightness statistics.
//  3. ExtractCandidates: trace external contours of the edge map and keep
//     large, convex shapes that simplify to 4-8 vertices.
//  4. Score: rate each candidate 0-100 by vertex count, solidity and
//     aspect ratio.
//  5. SuppressDuplicates: greedy non-maximum suppression by bounding-box
//     IOU, indexed with an R-tree.
//
// Corner normalization and perspective warping sit between and after these
// stages and live in the scanner package.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Candidate contours and polygons are in working (downscaled) pixels.
// Candidate quads are in source pixels. The two are only converted through
// geom.Scale.
//
// # Confidence Scores
//
// Confidence is an integer from 0 to 100:
//   - 100 = clean four-sided, solid, reasonably proportioned shape
//   - 10 is lost for an imperfect polygon (more than 4 vertices)
//   - up to 90 is lost for low solidity (contour area / bounding box area)
//   - 25 is lost for extreme aspect ratios (outside 1:5 to 5:1)
//
// A candidate survives only when its confidence is strictly above the
// configured threshold.
//
// # Limitations
//
// These algorithms work best on documents that contrast with their
// background:
//   - Pages on a darker desk or table
//   - Receipts and cards photographed from above
//   - Moderate perspective distortion
//
// Documents touching each other, or nested inside another detected
// outline, are reported as one region.
package detection

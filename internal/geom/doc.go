// Package geom provides the planar geometry shared by the document scanner.
//
// All values are float64 pixel coordinates with the origin at the top-left
// corner, X increasing rightward and Y increasing downward. Callers are
// responsible for keeping processing-resolution and source-resolution points
// apart; the only sanctioned conversion between them is Scale.
//
// # Corner Ordering
//
// A normalized Quad is always ordered [TopLeft, TopRight, BottomRight,
// BottomLeft] using the sum/difference metric:
//   - TopLeft minimizes x+y
//   - BottomRight maximizes x+y
//   - TopRight maximizes x-y
//   - BottomLeft minimizes x-y
//
// # Overlap
//
// IOU compares the axis-aligned bounding boxes of two quads. For quads that
// are strongly rotated this over-estimates the true polygon overlap.
package geom

// Package vision provides the image-processing primitives the document
// scanner is built on, behind a narrow Backend interface.
//
// Two backends exist:
//
//   - Native, the default, written in Go on top of disintegration/imaging,
//     bild and gonum. It has no system dependencies.
//   - GoCV, an OpenCV adapter compiled only with the "gocv" build tag.
//
// Every Backend method takes and returns plain Go values (image.Image,
// *image.Gray, []geom.Point). Backends that work on native buffers acquire
// and release them inside the call, so nothing native outlives a method.
//
// # Coordinate System
//
// Coordinates are pixels with (0,0) at the top-left corner. Contour points
// are pixel positions; a filled W×H rectangle traces to a contour whose
// enclosed area is (W-1)·(H-1).
//
// # Algorithms
//
// Contours are traced with Moore-neighbour border following and limited to
// outer borders of components that are not nested inside a hole of another
// component. Polygon approximation is Douglas–Peucker on the closed contour.
// Perspective warps solve the 3×3 homography from four correspondences with
// gonum and resample by inverse mapping with bilinear or bicubic
// interpolation.
package vision

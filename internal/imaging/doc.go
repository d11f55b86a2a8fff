// Package imaging provides the raster I/O and drawing used around the
// document scanner.
//
// This package implements image decoding, encoding of scanned document crops,
// Canny edge detection with explicit thresholds, and overlay previews of
// detected document quads. All operations work with standard Go image.Image
// types and use a coordinate system where (0,0) is at the top-left corner,
// X increases rightward, and Y increases downward.
//
// # Decoding
//
// Decode accepts PNG, JPEG, GIF, BMP, TIFF and WebP input. JPEG images are
// rotated according to their EXIF orientation tag so that detection runs on
// the picture the way it was shot. Any decode failure is returned as a
// *DecodeError so callers can tell a bad input apart from a processing fault.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images.
//
// # Encoding
//
// Document crops are encoded as JPEG (quality 1-100) or PNG. Tool results
// carry the encoded bytes as base64 together with the MIME type.
//
// # Performance Considerations
//
// For repeated operations on the same image, use ImageCache to avoid redundant
// disk reads. Large images may consume significant memory when cached.
// The cache is bounded and evicts the oldest image first.
package imaging

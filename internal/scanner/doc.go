// Package scanner finds documents in a photo and returns them as
// perspective-corrected crops.
//
// A Scanner wires the detection stages together around an injected
// vision.Backend:
//
//	orient → preprocess → extract candidates → normalize + score (per
//	candidate) → suppress duplicates → warp + encode (per survivor) → order
//
// Orientation, preprocessing and candidate extraction run once per image.
// The per-candidate stages run on a bounded pool (WithParallelism) and a
// failure or panic in one candidate is logged and counted without affecting
// the others. An image without documents is not an error: the result is an
// empty slice.
//
// # Coordinates
//
// Detection runs on a copy of the image downscaled to ProcessingSize.
// Every quad leaving this package is in source coordinates of the oriented
// image, that is, after the optional 90° rotation.
//
// # Errors
//
//   - *LoadError: the input could not be decoded (ScanFile, ScanBytes)
//   - *BackendError (matching ErrBackendUnavailable): the backend is not ready
//   - *ValidationError: invalid configuration or input
//   - *CandidateProcessingError: a single candidate failed; logged, never returned
//
// Cancellation and the configured Timeout surface as the context error,
// wrapped.
package scanner

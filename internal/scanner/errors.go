package scanner

import (
	"errors"
	"fmt"

	"github.com/ironsheep/docscan/internal/geom"
)

// ErrBackendUnavailable matches every *BackendError via errors.Is.
var ErrBackendUnavailable = errors.New("image backend unavailable")

// LoadError reports an input that could not be read or decoded.
type LoadError struct {
	// Source is the file path, or "bytes" for in-memory input.
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load image %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// BackendError reports a backend that cannot run.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s unavailable: %v", e.Backend, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrBackendUnavailable) true for any BackendError.
func (e *BackendError) Is(target error) bool {
	return target == ErrBackendUnavailable
}

// ValidationError reports malformed configuration or geometric input.
type ValidationError = geom.ValidationError

func validationErrorf(op, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// CandidateProcessingError reports a failure while handling one candidate.
// These are recovered by the scanner, logged and counted in
// ScanStats.Failed.
type CandidateProcessingError struct {
	// Index is the contour index of the candidate.
	Index int
	// Stage is "normalize", "warp" or "encode".
	Stage string
	Err   error
}

func (e *CandidateProcessingError) Error() string {
	return fmt.Sprintf("candidate %d failed during %s: %v", e.Index, e.Stage, e.Err)
}

func (e *CandidateProcessingError) Unwrap() error {
	return e.Err
}

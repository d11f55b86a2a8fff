package scanner

import (
	"log/slog"
	"time"

	docimaging "github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/vision"
)

// ProcessingConfig holds the tunable parameters of a scan.
type ProcessingConfig struct {
	// ProcessingSize caps the longest side of the working image.
	ProcessingSize int

	// MinAreaFraction is the smallest contour area kept, as a fraction of
	// the working image area.
	MinAreaFraction float64

	// ApproxEpsilonFactor scales a contour's perimeter into the polygon
	// approximation tolerance.
	ApproxEpsilonFactor float64

	// MinVertices and MaxVertices bound the approximated polygon.
	MinVertices int
	MaxVertices int

	// ConfidenceThreshold is the score a candidate must exceed.
	ConfidenceThreshold int

	// IOUThreshold is the bounding-box overlap at which the less confident
	// of two candidates is suppressed.
	IOUThreshold float64

	// RotationRatioThreshold is the horizontal/vertical edge density ratio
	// above which the image is rotated 90° clockwise.
	RotationRatioThreshold float64

	// WarpInterpolation selects the resampling kernel for the crop.
	WarpInterpolation vision.Interpolation

	// OutputQuality is the JPEG quality in (0, 1].
	OutputQuality float64

	// OutputFormat is the encoding of the crops.
	OutputFormat docimaging.Format

	// Timeout bounds a whole scan. Zero means no limit.
	Timeout time.Duration
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() ProcessingConfig {
	return ProcessingConfig{
		ProcessingSize:         800,
		MinAreaFraction:        0.01,
		ApproxEpsilonFactor:    0.02,
		MinVertices:            4,
		MaxVertices:            8,
		ConfidenceThreshold:    40,
		IOUThreshold:           0.5,
		RotationRatioThreshold: 1.5,
		WarpInterpolation:      vision.Cubic,
		OutputQuality:          0.85,
		OutputFormat:           docimaging.JPEG,
	}
}

// Validate reports the first invalid field as a *ValidationError.
func (c ProcessingConfig) Validate() error {
	const op = "config"
	switch {
	case c.ProcessingSize <= 0:
		return validationErrorf(op, "processing size must be positive, got %d", c.ProcessingSize)
	case c.MinAreaFraction < 0 || c.MinAreaFraction > 1:
		return validationErrorf(op, "min area fraction must be in [0, 1], got %v", c.MinAreaFraction)
	case c.ApproxEpsilonFactor < 0:
		return validationErrorf(op, "approximation epsilon factor must not be negative, got %v", c.ApproxEpsilonFactor)
	case c.MinVertices < 4:
		return validationErrorf(op, "min vertices must be at least 4, got %d", c.MinVertices)
	case c.MaxVertices < c.MinVertices:
		return validationErrorf(op, "max vertices %d is below min vertices %d", c.MaxVertices, c.MinVertices)
	case c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 100:
		return validationErrorf(op, "confidence threshold must be in [0, 100], got %d", c.ConfidenceThreshold)
	case c.IOUThreshold < 0 || c.IOUThreshold > 1:
		return validationErrorf(op, "IOU threshold must be in [0, 1], got %v", c.IOUThreshold)
	case c.RotationRatioThreshold <= 0:
		return validationErrorf(op, "rotation ratio threshold must be positive, got %v", c.RotationRatioThreshold)
	case c.WarpInterpolation != vision.Cubic && c.WarpInterpolation != vision.Linear:
		return validationErrorf(op, "unknown interpolation %v", c.WarpInterpolation)
	case c.OutputQuality <= 0 || c.OutputQuality > 1:
		return validationErrorf(op, "output quality must be in (0, 1], got %v", c.OutputQuality)
	case c.OutputFormat != docimaging.JPEG && c.OutputFormat != docimaging.PNG:
		return validationErrorf(op, "unsupported output format %q", c.OutputFormat)
	case c.Timeout < 0:
		return validationErrorf(op, "timeout must not be negative, got %v", c.Timeout)
	}
	return nil
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithConfig replaces the whole processing configuration. Options that
// set single fields must come after it.
func WithConfig(cfg ProcessingConfig) Option {
	return func(s *Scanner) {
		s.cfg = cfg
	}
}

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator sets the generator for document ids.
func WithIDGenerator(ids IDGenerator) Option {
	return func(s *Scanner) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithParallelism sets how many candidates are processed at once.
func WithParallelism(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithTimeout bounds each scan.
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		s.cfg.Timeout = d
	}
}

// WithProcessingSize sets the longest side of the working image.
func WithProcessingSize(n int) Option {
	return func(s *Scanner) {
		s.cfg.ProcessingSize = n
	}
}

// WithConfidenceThreshold sets the score a candidate must exceed.
func WithConfidenceThreshold(n int) Option {
	return func(s *Scanner) {
		s.cfg.ConfidenceThreshold = n
	}
}

// WithIOUThreshold sets the duplicate suppression overlap.
func WithIOUThreshold(t float64) Option {
	return func(s *Scanner) {
		s.cfg.IOUThreshold = t
	}
}

// WithInterpolation sets the warp resampling kernel.
func WithInterpolation(i vision.Interpolation) Option {
	return func(s *Scanner) {
		s.cfg.WarpInterpolation = i
	}
}

// WithOutput sets the crop encoding and JPEG quality in (0, 1].
func WithOutput(format docimaging.Format, quality float64) Option {
	return func(s *Scanner) {
		s.cfg.OutputFormat = format
		s.cfg.OutputQuality = quality
	}
}

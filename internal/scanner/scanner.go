package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/docscan/internal/detection"
	docimaging "github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/vision"
)

// Scanner detects and extracts documents. It is safe for concurrent use;
// all per-scan state lives in the call.
type Scanner struct {
	backend     vision.Backend
	cfg         ProcessingConfig
	logger      *slog.Logger
	ids         IDGenerator
	parallelism int
}

// ScanStats describes what happened during one scan.
type ScanStats struct {
	Backend string `json:"backend"`

	// Rotated reports whether the image was turned 90° clockwise, and
	// OrientationRatio is the edge density ratio that decided it.
	Rotated          bool    `json:"rotated"`
	OrientationRatio float64 `json:"orientation_ratio"`

	// Scale is source pixels per working pixel.
	Scale         float64 `json:"scale"`
	WorkingWidth  int     `json:"working_width"`
	WorkingHeight int     `json:"working_height"`
	ThresholdLow  float64 `json:"threshold_low"`
	ThresholdHigh float64 `json:"threshold_high"`

	// Contours is the number of external contours; TooSmall and Rejected
	// count those failing the area and shape filters, Candidates those
	// passing them.
	Contours   int `json:"contours"`
	TooSmall   int `json:"too_small"`
	Rejected   int `json:"rejected"`
	Candidates int `json:"candidates"`

	// Dropped candidates scored at or below the confidence threshold;
	// Suppressed ones overlapped a more confident candidate; Failed ones
	// hit an error or panic in a per-candidate stage.
	Dropped    int `json:"dropped"`
	Suppressed int `json:"suppressed"`
	Failed     int `json:"failed"`

	Documents int           `json:"documents"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Detection is the result of Detect: the kept candidates, in output order,
// and the oriented image their quads refer to.
type Detection struct {
	Image      image.Image
	Candidates []detection.Candidate
	Stats      ScanStats
}

// New returns a Scanner using backend.
//
// The configuration is validated and backend.Ready is checked before
// anything else; a backend that is not ready yields a *BackendError.
func New(backend vision.Backend, opts ...Option) (*Scanner, error) {
	if backend == nil {
		return nil, &BackendError{Backend: "<nil>", Err: errors.New("no backend configured")}
	}

	s := &Scanner{
		backend:     backend,
		cfg:         DefaultConfig(),
		logger:      slog.Default(),
		ids:         UUIDGenerator{},
		parallelism: 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := backend.Ready(); err != nil {
		return nil, &BackendError{Backend: backend.Name(), Err: err}
	}
	return s, nil
}

// With returns a copy of s with opts applied on top of its settings. The
// copy shares the backend and ID generator.
func (s *Scanner) With(opts ...Option) (*Scanner, error) {
	c := *s
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Config returns the processing configuration.
func (s *Scanner) Config() ProcessingConfig {
	return s.cfg
}

// Backend returns the backend the scanner runs on.
func (s *Scanner) Backend() vision.Backend {
	return s.backend
}

// Scan finds the documents in img and returns them in output order.
func (s *Scanner) Scan(ctx context.Context, img image.Image) ([]ScannedDocument, error) {
	docs, _, err := s.ScanWithStats(ctx, img)
	return docs, err
}

// ScanFile decodes the image at path and scans it.
func (s *Scanner) ScanFile(ctx context.Context, path string) ([]ScannedDocument, *ScanStats, error) {
	img, err := docimaging.DecodeFile(path)
	if err != nil {
		return nil, nil, &LoadError{Source: path, Err: err}
	}
	return s.ScanWithStats(ctx, img)
}

// ScanBytes decodes an encoded image and scans it.
func (s *Scanner) ScanBytes(ctx context.Context, data []byte) ([]ScannedDocument, *ScanStats, error) {
	img, err := docimaging.DecodeBytes(data)
	if err != nil {
		return nil, nil, &LoadError{Source: "bytes", Err: err}
	}
	return s.ScanWithStats(ctx, img)
}

// ScanWithStats is Scan that also reports per-stage counts.
func (s *Scanner) ScanWithStats(ctx context.Context, img image.Image) ([]ScannedDocument, *ScanStats, error) {
	start := time.Now()
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	det, err := s.detect(ctx, img)
	if err != nil {
		return nil, nil, err
	}
	stats := det.Stats

	results := make([]*ScannedDocument, len(det.Candidates))
	err = s.forEach(ctx, len(det.Candidates), func(i int) {
		doc, err := s.extract(det.Image, det.Candidates[i])
		if err != nil {
			s.logger.Warn("scan.candidate.failed", "index", det.Candidates[i].Index, "error", err)
			return
		}
		results[i] = doc
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan cancelled: %w", err)
	}

	docs := make([]ScannedDocument, 0, len(results))
	for _, doc := range results {
		if doc == nil {
			stats.Failed++
			continue
		}
		docs = append(docs, *doc)
	}
	s.logger.Debug("scan.warped", "documents", len(docs))

	docs = Assemble(docs)
	for i := range docs {
		docs[i].ID = s.ids.NewID()
	}
	stats.Documents = len(docs)
	stats.Elapsed = time.Since(start)

	s.logger.Info("scan.done",
		"backend", stats.Backend,
		"documents", stats.Documents,
		"rotated", stats.Rotated,
		"failed", stats.Failed,
		"elapsed_ms", stats.Elapsed.Milliseconds(),
	)
	return docs, &stats, nil
}

// Detect runs the pipeline up to and including ordering, without warping
// or encoding. The returned candidates carry source-resolution quads and
// confidences.
func (s *Scanner) Detect(ctx context.Context, img image.Image) (*Detection, error) {
	start := time.Now()
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	det, err := s.detect(ctx, img)
	if err != nil {
		return nil, err
	}
	det.Stats.Documents = len(det.Candidates)
	det.Stats.Elapsed = time.Since(start)
	return det, nil
}

func (s *Scanner) detect(ctx context.Context, img image.Image) (*Detection, error) {
	if err := s.backend.Ready(); err != nil {
		return nil, &BackendError{Backend: s.backend.Name(), Err: err}
	}
	if img == nil || img.Bounds().Empty() {
		return nil, validationErrorf("scan", "image has no pixels")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}

	stats := ScanStats{Backend: s.backend.Name()}
	log := s.logger.With("backend", stats.Backend)

	oriented := detection.CorrectOrientation(s.backend, img, s.cfg.RotationRatioThreshold, s.logger)
	stats.Rotated = oriented.Rotated
	stats.OrientationRatio = oriented.Ratio
	log.Debug("scan.oriented", "rotated", oriented.Rotated, "ratio", oriented.Ratio)

	pre, err := detection.Preprocess(s.backend, oriented.Image, s.cfg.ProcessingSize)
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess image: %w", err)
	}
	stats.Scale = pre.Scale
	stats.WorkingWidth, stats.WorkingHeight = pre.Width, pre.Height
	stats.ThresholdLow, stats.ThresholdHigh = pre.Low, pre.High
	log.Debug("scan.preprocessed",
		"scale", pre.Scale, "width", pre.Width, "height", pre.Height,
		"low", pre.Low, "high", pre.High)

	ext, err := detection.ExtractCandidates(ctx, s.backend, pre, detection.ExtractOptions{
		MinAreaFraction:     s.cfg.MinAreaFraction,
		ApproxEpsilonFactor: s.cfg.ApproxEpsilonFactor,
		MinVertices:         s.cfg.MinVertices,
		MaxVertices:         s.cfg.MaxVertices,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("scan cancelled: %w", err)
		}
		return nil, fmt.Errorf("failed to extract candidates: %w", err)
	}
	stats.Contours = ext.Contours
	stats.TooSmall = ext.TooSmall
	stats.Rejected = ext.Rejected
	stats.Candidates = len(ext.Candidates)
	log.Debug("scan.candidates",
		"contours", ext.Contours, "too_small", ext.TooSmall,
		"rejected", ext.Rejected, "candidates", len(ext.Candidates))

	scored := make([]*detection.Candidate, len(ext.Candidates))
	err = s.forEach(ctx, len(ext.Candidates), func(i int) {
		c, err := s.evaluate(ext.Candidates[i], pre.Scale)
		if err != nil {
			s.logger.Warn("scan.candidate.failed", "index", ext.Candidates[i].Index, "error", err)
			return
		}
		scored[i] = &c
	})
	if err != nil {
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}

	kept := make([]detection.Candidate, 0, len(scored))
	for _, c := range scored {
		switch {
		case c == nil:
			stats.Failed++
		case !detection.Accept(c.Confidence, s.cfg.ConfidenceThreshold):
			stats.Dropped++
		default:
			kept = append(kept, *c)
		}
	}
	log.Debug("scan.scored", "kept", len(kept), "dropped", stats.Dropped, "failed", stats.Failed)

	survivors := detection.SuppressDuplicates(kept, s.cfg.IOUThreshold)
	stats.Suppressed = len(kept) - len(survivors)
	log.Debug("scan.deduplicated", "survivors", len(survivors), "suppressed", stats.Suppressed)

	orderCandidates(survivors)
	return &Detection{Image: oriented.Image, Candidates: survivors, Stats: stats}, nil
}

// evaluate normalizes and scores one candidate. Panics are returned as
// errors.
func (s *Scanner) evaluate(c detection.Candidate, scale float64) (out detection.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CandidateProcessingError{Index: c.Index, Stage: "normalize", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	quad, err := normalizeCorners(c.Polygon, scale)
	if err != nil {
		return c, &CandidateProcessingError{Index: c.Index, Stage: "normalize", Err: err}
	}
	c.Quad = quad
	c.Confidence = detection.Score(c)
	return c, nil
}

// extract warps and encodes one surviving candidate. Panics are returned
// as errors. The ID is left empty and issued in output order by the caller.
func (s *Scanner) extract(img image.Image, c detection.Candidate) (doc *ScannedDocument, err error) {
	stage := "warp"
	defer func() {
		if r := recover(); r != nil {
			err = &CandidateProcessingError{Index: c.Index, Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	w, h := outputSize(c.Quad)
	warped, err := s.backend.WarpPerspective(img, c.Quad, w, h, s.cfg.WarpInterpolation)
	if err != nil {
		return nil, &CandidateProcessingError{Index: c.Index, Stage: stage, Err: err}
	}

	stage = "encode"
	quality := int(math.Round(s.cfg.OutputQuality * 100))
	data, err := docimaging.EncodeBytes(warped, s.cfg.OutputFormat, quality)
	if err != nil {
		return nil, &CandidateProcessingError{Index: c.Index, Stage: stage, Err: err}
	}

	return &ScannedDocument{
		ImageData:  data,
		MimeType:   s.cfg.OutputFormat.MimeType(),
		Width:      w,
		Height:     h,
		Confidence: c.Confidence,
		Corners:    c.Quad,
	}, nil
}

// forEach calls fn for every index in [0, n) on at most s.parallelism
// goroutines. It stops handing out indexes once ctx is done and then
// returns ctx.Err().
func (s *Scanner) forEach(ctx context.Context, n int, fn func(i int)) error {
	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			_ = g.Wait()
			return err
		}
		i := i
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	return g.Wait()
}

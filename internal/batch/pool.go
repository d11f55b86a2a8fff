// Package batch scans many image files concurrently.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/ironsheep/docscan/internal/scanner"
)

// ErrPoolClosed is returned by Submit after Shutdown.
var ErrPoolClosed = errors.New("pool is shutting down")

// FileScanner scans one image file. *scanner.Scanner implements it.
type FileScanner interface {
	ScanFile(ctx context.Context, path string) ([]scanner.ScannedDocument, *scanner.ScanStats, error)
}

// Result is the outcome of scanning one file.
type Result struct {
	Path      string
	Documents []scanner.ScannedDocument
	Stats     *scanner.ScanStats
	Err       error
	Elapsed   time.Duration

	// Saved holds the crop files written for this result, if any.
	Saved []string
}

// Pool runs scans on a fixed number of workers fed from a bounded queue.
// Results are delivered on Results in completion order.
type Pool struct {
	scanner FileScanner
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	ch      chan string
	results chan Result
	wg      sync.WaitGroup
	once    sync.Once

	mu     sync.Mutex
	closed bool
}

// Option configures a Pool.
type Option func(*Pool)

// WithWorkers sets the number of concurrent scans.
func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithQueueSize sets how many files may wait for a worker.
func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.ch = make(chan string, n)
			p.results = make(chan Result, n)
		}
	}
}

// WithTimeout bounds each file's scan.
func WithTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewPool starts the workers. The caller must drain Results.
func NewPool(sc FileScanner, logger *slog.Logger, opts ...Option) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{
		scanner: sc,
		logger:  logger,
		workers: 4,
		timeout: 2 * time.Minute,
		ch:      make(chan string, 64),
		results: make(chan Result, 64),
	}
	for _, o := range opts {
		o(p)
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.start()
	return p
}

func (p *Pool) start() {
	p.once.Do(func() {
		p.wg.Add(p.workers)
		for i := 0; i < p.workers; i++ {
			go p.work(i + 1)
		}
		go func() {
			p.wg.Wait()
			close(p.results)
		}()
	})
}

func (p *Pool) work(workerID int) {
	defer p.wg.Done()
	p.logger.Debug("batch.worker.started", "worker_id", workerID)

	for path := range p.ch {
		start := time.Now()
		ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
		docs, stats, err := p.scanner.ScanFile(ctx, path)
		cancel()

		res := Result{Path: path, Documents: docs, Stats: stats, Err: err, Elapsed: time.Since(start)}
		if err != nil {
			p.logger.Error("batch.scan.failed", "worker_id", workerID, "path", path, "error", err)
		} else {
			p.logger.Info("batch.scan.ok", "worker_id", workerID, "path", path,
				"documents", len(docs), "elapsed_ms", res.Elapsed.Milliseconds())
		}
		p.results <- res
	}

	p.logger.Debug("batch.worker.stopped", "worker_id", workerID)
}

// Submit queues path for scanning. It blocks while the queue is full and
// returns ctx.Err() if ctx ends first, or ErrPoolClosed after Shutdown.
func (p *Pool) Submit(ctx context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.ch <- path:
		return nil
	default:
		p.logger.Debug("batch.queue.full", "path", path)
	}
	select {
	case p.ch <- path:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results delivers one Result per submitted file. It is closed once
// Shutdown has been called and every worker has stopped.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Shutdown stops accepting files and waits for queued ones to finish. If
// ctx ends first, running scans are cancelled and ctx.Err() is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); p.wg.Wait() }()

	select {
	case <-ctx.Done():
		p.cancel()
		p.logger.Warn("batch.shutdown.interrupted")
		return ctx.Err()
	case <-done:
		p.cancel()
		p.logger.Debug("batch.shutdown.done")
		return nil
	}
}

// Run scans every path on a new pool and returns the results sorted by
// path. Files that fail appear with Err set; the returned error is only
// for submission or shutdown problems.
func Run(ctx context.Context, sc FileScanner, paths []string, logger *slog.Logger, opts ...Option) ([]Result, error) {
	p := NewPool(sc, logger, opts...)

	var results []Result
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for r := range p.Results() {
			results = append(results, r)
		}
	}()

	var submitErr error
	for _, path := range paths {
		if err := p.Submit(ctx, path); err != nil {
			submitErr = err
			break
		}
	}
	if err := p.Shutdown(ctx); err != nil && submitErr == nil {
		submitErr = err
	}
	<-collected

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, submitErr
}

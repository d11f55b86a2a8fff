package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ironsheep/docscan/internal/batch"
	"github.com/ironsheep/docscan/internal/config"
	"github.com/ironsheep/docscan/internal/report"
	"github.com/ironsheep/docscan/internal/scanner"
)

// runScan implements "docscan scan". Per-file failures are reported and
// counted; only setup and report errors fail the command.
func runScan(ctx context.Context, sc *scanner.Scanner, cfg *config.Config, logger *slog.Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	outDir := fs.String("o", ".", "output directory for crops")
	reportPath := fs.String("report", "", "write an XLSX report to this file")
	workers := fs.Int("workers", cfg.Workers, "files scanned at once")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("no input files")
	}

	results, err := batch.Run(ctx, sc, fs.Args(), logger, poolOptions(cfg, *workers)...)
	if err != nil {
		return err
	}

	failed := 0
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			failed++
			fmt.Fprintf(stdout, "%s: error: %v\n", r.Path, r.Err)
			continue
		}
		saved, err := batch.SaveDocuments(*outDir, *r)
		r.Saved = saved
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s: %d document(s)\n", r.Path, len(r.Documents))
		for j, p := range saved {
			fmt.Fprintf(stdout, "  %s (confidence %d)\n", p, r.Documents[j].Confidence)
		}
	}

	if *reportPath != "" {
		data, err := report.XLSX(results, logger)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*reportPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(stdout, "report: %s\n", *reportPath)
	}

	logger.Info("scan.batch.done", "files", len(results), "failed", failed)
	return nil
}

// poolOptions sizes the batch pool. A configured scan timeout replaces the
// pool's default per-file limit.
func poolOptions(cfg *config.Config, workers int) []batch.Option {
	opts := []batch.Option{batch.WithWorkers(workers)}
	if cfg.Scan.Timeout > 0 {
		opts = append(opts, batch.WithTimeout(cfg.Scan.Timeout))
	}
	return opts
}

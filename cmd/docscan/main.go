package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/docscan/internal/config"
	"github.com/ironsheep/docscan/internal/scanner"
	"github.com/ironsheep/docscan/internal/server"
	"github.com/ironsheep/docscan/internal/vision"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("docscan %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	cfg := config.Load()

	// Logs go to stderr; stdout is for MCP protocol
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := newScanner(cfg, logger)
	if err != nil {
		logger.Error("failed to create scanner", "error", err)
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "scan" {
		if err := runScan(ctx, sc, cfg, logger, os.Args[2:], os.Stdout); err != nil {
			logger.Error("scan failed", "error", err)
			os.Exit(1)
		}
		return
	}

	logger.Debug("docscan.start", "version", Version, "build_time", BuildTime, "commit", GitCommit, "backend", sc.Backend().Name())
	srv, err := server.New(sc, logger, server.WithCacheSize(cfg.CacheSize))
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newScanner(cfg *config.Config, logger *slog.Logger) (*scanner.Scanner, error) {
	processing, err := cfg.Processing()
	if err != nil {
		return nil, err
	}
	backend, err := vision.New(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return scanner.New(backend,
		scanner.WithConfig(processing),
		scanner.WithLogger(logger),
		scanner.WithParallelism(cfg.Workers),
	)
}

func printHelp() {
	fmt.Println("docscan - find and extract documents in photos")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  docscan                     Run the MCP server on stdin/stdout")
	fmt.Println("  docscan scan [flags] FILES  Scan image files and write the crops")
	fmt.Println()
	fmt.Println("Scan flags:")
	fmt.Println("  -o DIR          Output directory for crops (default .)")
	fmt.Println("  -report FILE    Also write an XLSX report")
	fmt.Println("  -workers N      Files scanned at once (default DOCSCAN_WORKERS)")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  DOCSCAN_LOG_LEVEL=debug|info|warn|error")
	fmt.Println("  DOCSCAN_BACKEND=native|gocv")
	fmt.Println("  DOCSCAN_WORKERS, DOCSCAN_TIMEOUT, DOCSCAN_PROCESSING_SIZE,")
	fmt.Println("  DOCSCAN_MIN_AREA_FRACTION, DOCSCAN_APPROX_EPSILON,")
	fmt.Println("  DOCSCAN_CONFIDENCE_THRESHOLD, DOCSCAN_IOU_THRESHOLD,")
	fmt.Println("  DOCSCAN_ROTATION_RATIO, DOCSCAN_INTERPOLATION,")
	fmt.Println("  DOCSCAN_OUTPUT_QUALITY, DOCSCAN_OUTPUT_FORMAT")
}

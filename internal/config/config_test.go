package config

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	docimaging "github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/scanner"
	"github.com/ironsheep/docscan/internal/vision"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"DOCSCAN_LOG_LEVEL", "DOCSCAN_BACKEND", "DOCSCAN_WORKERS", "DOCSCAN_CACHE_SIZE",
		"DOCSCAN_PROCESSING_SIZE", "DOCSCAN_OUTPUT_FORMAT", "DOCSCAN_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.LogLevel != "info" || cfg.Backend != "native" || cfg.Workers != 4 || cfg.CacheSize != 8 {
		t.Errorf("got %+v", cfg)
	}

	p, err := cfg.Processing()
	if err != nil {
		t.Fatalf("Processing failed: %v", err)
	}
	if p != scanner.DefaultConfig() {
		t.Errorf("Processing: got %+v, want defaults", p)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DOCSCAN_LOG_LEVEL", "debug")
	t.Setenv("DOCSCAN_BACKEND", "gocv")
	t.Setenv("DOCSCAN_WORKERS", "8")
	t.Setenv("DOCSCAN_CACHE_SIZE", "3")
	t.Setenv("DOCSCAN_TIMEOUT", "30s")
	t.Setenv("DOCSCAN_PROCESSING_SIZE", "1024")
	t.Setenv("DOCSCAN_MIN_AREA_FRACTION", "0.05")
	t.Setenv("DOCSCAN_APPROX_EPSILON", "0.03")
	t.Setenv("DOCSCAN_CONFIDENCE_THRESHOLD", "55")
	t.Setenv("DOCSCAN_IOU_THRESHOLD", "0.3")
	t.Setenv("DOCSCAN_ROTATION_RATIO", "2")
	t.Setenv("DOCSCAN_INTERPOLATION", "linear")
	t.Setenv("DOCSCAN_OUTPUT_QUALITY", "0.9")
	t.Setenv("DOCSCAN_OUTPUT_FORMAT", "png")

	cfg := Load()
	if cfg.Backend != "gocv" || cfg.Workers != 8 || cfg.CacheSize != 3 || cfg.Level() != slog.LevelDebug {
		t.Errorf("got %+v", cfg)
	}

	p, err := cfg.Processing()
	if err != nil {
		t.Fatalf("Processing failed: %v", err)
	}

	want := scanner.DefaultConfig()
	want.ProcessingSize = 1024
	want.MinAreaFraction = 0.05
	want.ApproxEpsilonFactor = 0.03
	want.ConfidenceThreshold = 55
	want.IOUThreshold = 0.3
	want.RotationRatioThreshold = 2
	want.WarpInterpolation = vision.Linear
	want.OutputQuality = 0.9
	want.OutputFormat = docimaging.PNG
	want.Timeout = 30 * time.Second
	if p != want {
		t.Errorf("Processing:\n got  %+v\n want %+v", p, want)
	}
}

func TestLoad_UnparsableFallsBack(t *testing.T) {
	t.Setenv("DOCSCAN_WORKERS", "many")
	t.Setenv("DOCSCAN_IOU_THRESHOLD", "half")
	t.Setenv("DOCSCAN_TIMEOUT", "soon")

	cfg := Load()
	if cfg.Workers != 4 {
		t.Errorf("Workers: got %d, want 4", cfg.Workers)
	}
	if cfg.Scan.IOUThreshold != 0.5 {
		t.Errorf("IOUThreshold: got %v, want 0.5", cfg.Scan.IOUThreshold)
	}
	if cfg.Scan.Timeout != 0 {
		t.Errorf("Timeout: got %v, want 0", cfg.Scan.Timeout)
	}
}

func TestProcessing_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"format", "DOCSCAN_OUTPUT_FORMAT", "gif", "DOCSCAN_OUTPUT_FORMAT"},
		{"interpolation", "DOCSCAN_INTERPOLATION", "nearest", "DOCSCAN_INTERPOLATION"},
		{"confidence", "DOCSCAN_CONFIDENCE_THRESHOLD", "101", "confidence"},
		{"iou", "DOCSCAN_IOU_THRESHOLD", "1.5", "iou"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load().Processing()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.wantErr)) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestProcessing_ValidationErrorType(t *testing.T) {
	t.Setenv("DOCSCAN_PROCESSING_SIZE", "-1")
	_, err := Load().Processing()
	var ve *scanner.ValidationError
	if !errors.As(err, &ve) || ve.Op != "config" {
		t.Errorf("got %v, want config ValidationError", err)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		c := &Config{LogLevel: tt.in}
		if got := c.Level(); got != tt.want {
			t.Errorf("Level(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

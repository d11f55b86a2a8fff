// Package config reads the docscan binary's settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	docimaging "github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/scanner"
	"github.com/ironsheep/docscan/internal/vision"
)

// Config holds all application configuration.
type Config struct {
	LogLevel string
	Backend  string
	Workers   int
	CacheSize int
	Scan      ScanConfig
}

// ScanConfig mirrors scanner.ProcessingConfig with text-valued enums.
type ScanConfig struct {
	ProcessingSize         int
	MinAreaFraction        float64
	ApproxEpsilonFactor    float64
	ConfidenceThreshold    int
	IOUThreshold           float64
	RotationRatioThreshold float64
	Interpolation          string
	OutputQuality          float64
	OutputFormat           string
	Timeout                time.Duration
}

// Load reads DOCSCAN_* environment variables. Unset or unparsable values
// fall back to the scanner defaults.
func Load() *Config {
	d := scanner.DefaultConfig()
	return &Config{
		LogLevel:  getEnv("DOCSCAN_LOG_LEVEL", "info"),
		Backend:   getEnv("DOCSCAN_BACKEND", "native"),
		Workers:   getEnvAsInt("DOCSCAN_WORKERS", 4),
		CacheSize: getEnvAsInt("DOCSCAN_CACHE_SIZE", docimaging.DefaultCacheSize),
		Scan: ScanConfig{
			ProcessingSize:         getEnvAsInt("DOCSCAN_PROCESSING_SIZE", d.ProcessingSize),
			MinAreaFraction:        getEnvAsFloat("DOCSCAN_MIN_AREA_FRACTION", d.MinAreaFraction),
			ApproxEpsilonFactor:    getEnvAsFloat("DOCSCAN_APPROX_EPSILON", d.ApproxEpsilonFactor),
			ConfidenceThreshold:    getEnvAsInt("DOCSCAN_CONFIDENCE_THRESHOLD", d.ConfidenceThreshold),
			IOUThreshold:           getEnvAsFloat("DOCSCAN_IOU_THRESHOLD", d.IOUThreshold),
			RotationRatioThreshold: getEnvAsFloat("DOCSCAN_ROTATION_RATIO", d.RotationRatioThreshold),
			Interpolation:          getEnv("DOCSCAN_INTERPOLATION", d.WarpInterpolation.String()),
			OutputQuality:          getEnvAsFloat("DOCSCAN_OUTPUT_QUALITY", d.OutputQuality),
			OutputFormat:           getEnv("DOCSCAN_OUTPUT_FORMAT", string(d.OutputFormat)),
			Timeout:                getEnvAsDuration("DOCSCAN_TIMEOUT", d.Timeout),
		},
	}
}

// Processing converts the scan settings to a validated ProcessingConfig.
func (c *Config) Processing() (scanner.ProcessingConfig, error) {
	p := scanner.DefaultConfig()
	p.ProcessingSize = c.Scan.ProcessingSize
	p.MinAreaFraction = c.Scan.MinAreaFraction
	p.ApproxEpsilonFactor = c.Scan.ApproxEpsilonFactor
	p.ConfidenceThreshold = c.Scan.ConfidenceThreshold
	p.IOUThreshold = c.Scan.IOUThreshold
	p.RotationRatioThreshold = c.Scan.RotationRatioThreshold
	p.OutputQuality = c.Scan.OutputQuality
	p.Timeout = c.Scan.Timeout

	interp, err := vision.ParseInterpolation(c.Scan.Interpolation)
	if err != nil {
		return p, fmt.Errorf("DOCSCAN_INTERPOLATION: %w", err)
	}
	p.WarpInterpolation = interp

	format, err := docimaging.ParseFormat(c.Scan.OutputFormat)
	if err != nil {
		return p, fmt.Errorf("DOCSCAN_OUTPUT_FORMAT: %w", err)
	}
	p.OutputFormat = format

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

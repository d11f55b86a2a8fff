package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"strconv"
	"time"

	"github.com/ironsheep/docscan/internal/detection"
	"github.com/ironsheep/docscan/internal/geom"
	"github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/scanner"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "document_scan").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Arguments that do not match the tool's input schema return code -32602.
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	args := params.Arguments
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage(`{}`)
	}

	if err := s.validateArgs(params.Name, args); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid arguments", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, args)
	if err != nil {
		s.logger.Warn("mcp.tool.failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.logger.Debug("mcp.tool.ok", "tool", params.Name, "elapsed_ms", time.Since(start).Milliseconds())

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// validateArgs checks args against the tool's compiled input schema.
// Unknown tools pass through to executeTool, which rejects them.
func (s *Server) validateArgs(name string, args json.RawMessage) error {
	schema, ok := s.schemas[name]
	if !ok {
		return nil
	}
	var v any
	if err := json.Unmarshal(args, &v); err != nil {
		return fmt.Errorf("unmarshal arguments: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("arguments do not match schema: %w", err)
	}
	return nil
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the appropriate imaging/detection/scanner function
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)

	// Document Operations
	case "document_detect":
		return s.handleDocumentDetect(ctx, args)
	case "document_scan":
		return s.handleDocumentScan(ctx, args)
	case "document_preview":
		return s.handleDocumentPreview(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// loadImage returns the cached image at path, reporting failures as
// *scanner.LoadError.
func (s *Server) loadImage(path string) (image.Image, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, &scanner.LoadError{Source: path, Err: err}
	}
	return img, nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageEdgeDetectArgs struct {
	Path          string   `json:"path"`
	ThresholdLow  *float64 `json:"threshold_low"`
	ThresholdHigh *float64 `json:"threshold_high"`
}

// handleImageEdgeDetect runs the detector's grayscale, blur and Canny steps
// at full resolution. Omitted thresholds come from the brightness
// statistics the way Preprocess derives them.
func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, err
	}

	backend := s.scanner.Backend()
	gray, err := backend.Grayscale(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to grayscale: %w", err)
	}
	blurred, err := backend.GaussianBlur5(gray)
	if err != nil {
		return nil, fmt.Errorf("failed to blur: %w", err)
	}

	var low, high float64
	if a.ThresholdLow == nil || a.ThresholdHigh == nil {
		mean, stddev, err := backend.MeanStdDev(blurred)
		if err != nil {
			return nil, fmt.Errorf("failed to compute brightness statistics: %w", err)
		}
		low, high = detection.AdaptiveThresholds(mean, stddev)
		if low > high {
			low, high = high, low
		}
	}
	if a.ThresholdLow != nil {
		low = *a.ThresholdLow
	}
	if a.ThresholdHigh != nil {
		high = *a.ThresholdHigh
	}
	if low > high {
		return nil, fmt.Errorf("threshold_low %v exceeds threshold_high %v", low, high)
	}

	edges, err := backend.Canny(blurred, low, high)
	if err != nil {
		return nil, fmt.Errorf("failed to detect edges: %w", err)
	}
	return imaging.EncodeEdgeMap(edges, low, high)
}

// === Document Handlers ===

type documentArgs struct {
	Path                string   `json:"path"`
	ConfidenceThreshold *int     `json:"confidence_threshold"`
	IOUThreshold        *float64 `json:"iou_threshold"`
	ProcessingSize      *int     `json:"processing_size"`
	OutputFormat        string   `json:"output_format"`
	OutputQuality       *float64 `json:"output_quality"`
}

// scannerFor returns the server's scanner, or a copy of it with the
// call's overrides applied.
func (s *Server) scannerFor(a documentArgs) (*scanner.Scanner, error) {
	var opts []scanner.Option
	if a.ConfidenceThreshold != nil {
		opts = append(opts, scanner.WithConfidenceThreshold(*a.ConfidenceThreshold))
	}
	if a.IOUThreshold != nil {
		opts = append(opts, scanner.WithIOUThreshold(*a.IOUThreshold))
	}
	if a.ProcessingSize != nil {
		opts = append(opts, scanner.WithProcessingSize(*a.ProcessingSize))
	}
	if a.OutputFormat != "" || a.OutputQuality != nil {
		cfg := s.scanner.Config()
		format, quality := cfg.OutputFormat, cfg.OutputQuality
		if a.OutputFormat != "" {
			f, err := imaging.ParseFormat(a.OutputFormat)
			if err != nil {
				return nil, err
			}
			format = f
		}
		if a.OutputQuality != nil {
			quality = *a.OutputQuality
		}
		opts = append(opts, scanner.WithOutput(format, quality))
	}
	if len(opts) == 0 {
		return s.scanner, nil
	}
	return s.scanner.With(opts...)
}

func (s *Server) prepareDocumentCall(args json.RawMessage) (*scanner.Scanner, image.Image, error) {
	var a documentArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, nil, err
	}
	sc, err := s.scannerFor(a)
	if err != nil {
		return nil, nil, err
	}
	img, err := s.loadImage(a.Path)
	if err != nil {
		return nil, nil, err
	}
	return sc, img, nil
}

// DetectedDocument is one entry of a document_detect result.
type DetectedDocument struct {
	Corners    geom.Quad `json:"corners"`
	Confidence int       `json:"confidence"`
}

// DocumentDetectResult reports detections without extracting them.
type DocumentDetectResult struct {
	// Width and Height are the dimensions of the oriented image the
	// corners refer to.
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	Documents []DetectedDocument `json:"documents"`
	Stats     scanner.ScanStats  `json:"stats"`
}

func (s *Server) handleDocumentDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	sc, img, err := s.prepareDocumentCall(args)
	if err != nil {
		return nil, err
	}
	det, err := sc.Detect(ctx, img)
	if err != nil {
		return nil, err
	}

	docs := make([]DetectedDocument, len(det.Candidates))
	for i, c := range det.Candidates {
		docs[i] = DetectedDocument{Corners: c.Quad, Confidence: c.Confidence}
	}
	b := det.Image.Bounds()
	return &DocumentDetectResult{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Documents: docs,
		Stats:     det.Stats,
	}, nil
}

// ScannedDocumentResult is a scanned document with its crop inlined.
type ScannedDocumentResult struct {
	scanner.ScannedDocument
	ImageBase64 string `json:"image_base64"`
}

// DocumentScanResult is the document_scan tool result.
type DocumentScanResult struct {
	Documents []ScannedDocumentResult `json:"documents"`
	Stats     *scanner.ScanStats      `json:"stats"`
}

func (s *Server) handleDocumentScan(ctx context.Context, args json.RawMessage) (interface{}, error) {
	sc, img, err := s.prepareDocumentCall(args)
	if err != nil {
		return nil, err
	}
	docs, stats, err := sc.ScanWithStats(ctx, img)
	if err != nil {
		return nil, err
	}

	out := make([]ScannedDocumentResult, len(docs))
	for i, d := range docs {
		out[i] = ScannedDocumentResult{
			ScannedDocument: d,
			ImageBase64:     base64.StdEncoding.EncodeToString(d.ImageData),
		}
	}
	return &DocumentScanResult{Documents: out, Stats: stats}, nil
}

func (s *Server) handleDocumentPreview(ctx context.Context, args json.RawMessage) (interface{}, error) {
	sc, img, err := s.prepareDocumentCall(args)
	if err != nil {
		return nil, err
	}
	det, err := sc.Detect(ctx, img)
	if err != nil {
		return nil, err
	}

	quads := make([]geom.Quad, len(det.Candidates))
	labels := make([]string, len(det.Candidates))
	for i, c := range det.Candidates {
		quads[i] = c.Quad
		labels[i] = strconv.Itoa(c.Confidence)
	}
	return imaging.DrawQuads(det.Image, quads, labels)
}

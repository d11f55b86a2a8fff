package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"minLength":   1,
		"description": "Absolute path to the image file",
	}
}

// scanProperties are the per-call overrides shared by the document tools.
func scanProperties(withOutput bool) map[string]interface{} {
	props := map[string]interface{}{
		"path": pathProperty(),
		"confidence_threshold": map[string]interface{}{
			"type":        "integer",
			"minimum":     0,
			"maximum":     100,
			"description": "Keep documents scoring above this value (default 40)",
		},
		"iou_threshold": map[string]interface{}{
			"type":        "number",
			"minimum":     0,
			"maximum":     1,
			"description": "Overlap above which the weaker of two detections is dropped (default 0.5)",
		},
		"processing_size": map[string]interface{}{
			"type":        "integer",
			"minimum":     64,
			"maximum":     4096,
			"description": "Longest side of the working image used for detection (default 800)",
		},
	}
	if withOutput {
		props["output_format"] = map[string]interface{}{
			"type":        "string",
			"enum":        []string{"jpeg", "jpg", "png"},
			"description": "Encoding of the document crops (default jpeg)",
		}
		props["output_quality"] = map[string]interface{}{
			"type":             "number",
			"exclusiveMinimum": 0,
			"maximum":          1,
			"description":      "JPEG quality as a fraction (default 0.85)",
		}
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions and format. The decoded image is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Return the Canny edge map of the image as used for document detection. Thresholds default to values derived from the image brightness.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"threshold_low": map[string]interface{}{
						"type":        "number",
						"minimum":     0,
						"description": "Low hysteresis threshold (default max(30, mean - stddev))",
					},
					"threshold_high": map[string]interface{}{
						"type":        "number",
						"minimum":     0,
						"description": "High hysteresis threshold (default min(200, mean + 2*stddev))",
					},
				},
				"required": []string{"path"},
			},
		},

		// Document Operations
		{
			Name:        "document_detect",
			Description: "Find documents in a photo and return their corner points and confidence, without extracting them.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": scanProperties(false),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "document_scan",
			Description: "Find documents in a photo and return each one perspective-corrected as a base64-encoded image, most confident first.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": scanProperties(true),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "document_preview",
			Description: "Draw the detected document outlines on the photo and return it as base64-encoded PNG. Each outline is labelled with its confidence.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": scanProperties(false),
				"required":   []string{"path"},
			},
		},
	}
}

// compileSchemas compiles each tool's input schema, keyed by tool name.
func compileSchemas(tools []Tool) (map[string]*jsonschema.Schema, error) {
	schemas := make(map[string]*jsonschema.Schema, len(tools))
	for _, tool := range tools {
		b, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("marshal schema %s: %w", tool.Name, err)
		}
		url := tool.Name + ".json"
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", tool.Name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", tool.Name, err)
		}
		schemas[tool.Name] = schema
	}
	return schemas, nil
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

// Package server implements the MCP (Model Context Protocol) server for document scanning tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the document
// scanner through the MCP protocol, so that an assistant can find, inspect
// and extract the documents in a photo.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_edge_detect: Canny edge map as seen by the detector
//
// Document Operations:
//   - document_detect: Corner points and confidence of each document
//   - document_scan: Perspective-corrected crops, base64 encoded
//   - document_preview: Detected outlines drawn on the photo
//
// The document tools accept per-call overrides of the confidence threshold,
// IOU threshold and processing size; document_scan also accepts the output
// format and quality. Overrides apply to that call only.
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Arguments are validated against the tool's input schema before the tool
// runs. Errors are returned as JSON-RPC error responses with:
//   - code: -32602 (arguments do not match the schema), -32000 (tool
//     execution failure) or other standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	sc, err := scanner.New(vision.NewNative())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv, err := server.New(sc, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

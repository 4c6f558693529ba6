// Package server implements the MCP (Model Context Protocol) server for kolam analysis tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the kolam extraction pipeline
// through the MCP protocol, so MCP-compatible clients can turn a photograph of a kolam into
// dots, lines and graph statistics.
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
//
// Kolam Analysis:
//   - kolam_analyze: Full pipeline on an image or a region of it
//   - kolam_analyze_batch: Full pipeline on several images in parallel
//   - kolam_detect_dots: Dot detection with the strategy trace
//   - kolam_preprocess: Binary or edge map as PNG
//   - kolam_overlay: Detected dots and lines drawn over the image
//   - kolam_grid_fit: Grid and radial layout classification
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A kolam that cannot be recognised is not an error: the analysis comes back
// with default values and a warning.
//
// # Usage
//
//	cfg, _, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server

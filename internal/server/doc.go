// Package server implements an MCP (Model Context Protocol) server for bib
// number detection.
//
// The server exposes the detector and its debug renders so that an MCP
// client can inspect why a number was or was not read and tune the
// detection settings for a set of photos.
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
//   - image_load: Load image and get metadata
//   - bib_detect: Numbers and candidate lines
//   - bib_components: Letter candidates and chains, without OCR
//   - bib_render: PNG of one pipeline stage
//   - bib_crop: Zoomed crop of one detected line
//   - bib_grid: Coordinate grid with the border bands shaded
//
// The bib_* detection tools accept the detection settings as optional
// arguments; omitted settings keep the configured values.
//
// # Image Caching
//
// Images are cached by path for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
package server

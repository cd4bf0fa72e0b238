// Package mcp provides an MCP (Model Context Protocol) server adapter for DocuChat.
// It lets AI assistants list uploaded documents and ask questions about them.
package mcp

import "errors"

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("mcp: query service is required")

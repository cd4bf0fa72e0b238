package mcp

import (
	"github.com/custodia-labs/docuchat/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers questions against a document.
	Query driving.QueryService

	// Document lists and reads uploaded documents.
	Document driving.DocumentService

	// Ingest registers and processes new files. Optional.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}

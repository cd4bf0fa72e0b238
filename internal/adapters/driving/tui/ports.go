// Package tui provides an interactive terminal user interface for docuchat.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docuchat/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI needs.
type Ports struct {
	// Document lists and deletes documents.
	Document driving.DocumentService

	// Query answers questions about a document.
	Query driving.QueryService

	// Index warms a document's index when a chat opens. Optional.
	Index driving.IndexService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	document driving.DocumentService,
	query driving.QueryService,
	index driving.IndexService,
) *Ports {
	return &Ports{
		Document: document,
		Query:    query,
		Index:    index,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	if p.Query == nil {
		return ErrMissingQueryService
	}
	return nil
}

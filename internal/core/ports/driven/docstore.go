package driven

import (
	"context"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

// DocumentStore persists document metadata.
// Backed by SQLite for metadata storage.
type DocumentStore interface {
	// SaveDocument stores a new document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns the documents of a user, newest first.
	// An empty userID lists every document.
	ListDocuments(ctx context.Context, userID string) ([]domain.Document, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error
}

package driving

import (
	"context"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

// DocumentService manages uploaded documents.
type DocumentService interface {
	// List returns the documents of a user. An empty userID lists all documents.
	List(ctx context.Context, userID string) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// Chunks returns the chunks of a document in position order.
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// Delete removes the document, its chunks, its stored file and any cached index.
	Delete(ctx context.Context, documentID string) error
}

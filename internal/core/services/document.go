package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docuchat/internal/core/domain"
	"github.com/custodia-labs/docuchat/internal/core/ports/driven"
	"github.com/custodia-labs/docuchat/internal/core/ports/driving"
	"github.com/custodia-labs/docuchat/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages uploaded documents.
type DocumentService struct {
	docs    driven.DocumentStore
	chunks  driven.ChunkStore
	uploads driven.UploadStore
	index   invalidator
}

// NewDocumentService creates a new document service.
// uploads and index may be nil.
func NewDocumentService(
	docs driven.DocumentStore,
	chunks driven.ChunkStore,
	uploads driven.UploadStore,
	index invalidator,
) *DocumentService {
	return &DocumentService{
		docs:    docs,
		chunks:  chunks,
		uploads: uploads,
		index:   index,
	}
}

// List returns the documents of a user.
func (s *DocumentService) List(ctx context.Context, userID string) ([]domain.Document, error) {
	docs, err := s.docs.ListDocuments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docs.GetDocument(ctx, documentID)
}

// Chunks returns the chunks of a document in position order.
func (s *DocumentService) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if _, err := s.docs.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.chunks.GetChunks(ctx, documentID)
}

// Delete removes the document, its chunks, its stored file and any cached index.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	if err := s.docs.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if s.index != nil {
		s.index.Invalidate(documentID)
	}
	if s.uploads != nil {
		if err := s.uploads.Remove(doc.StoredName()); err != nil {
			logger.Warn("Failed to remove stored file for %s: %v", documentID, err)
		}
	}

	logger.Info("Deleted document %s", documentID)
	return nil
}

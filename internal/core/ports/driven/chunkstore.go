package driven

import (
	"context"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

// ChunkStore persists chunks and their embeddings.
type ChunkStore interface {
	// GetChunks returns every chunk of a document in position order.
	// Returns an empty slice when the document has no chunks.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// SaveChunks replaces the chunks of a document with new ones built from inputs.
	// Positions follow input order.
	SaveChunks(ctx context.Context, documentID string, inputs []domain.ChunkInput) ([]domain.Chunk, error)

	// UpdateEmbeddings attaches vectors to existing chunks in a single transaction.
	// Either every embedding is written or none is.
	UpdateEmbeddings(ctx context.Context, embeddings []domain.ChunkEmbedding) error

	// GetChunksByIDs returns the chunks of documentID with the given ids,
	// in the order of ids. Ids that do not exist or belong to another
	// document are skipped.
	GetChunksByIDs(ctx context.Context, documentID string, ids []string) ([]domain.Chunk, error)
}

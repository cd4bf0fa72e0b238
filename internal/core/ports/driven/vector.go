package driven

import "context"

// VectorIndex is an in-memory nearest-neighbour index over the chunks of one document.
// It is built once and then only read; there is no delete or update.
// Search may be called concurrently.
type VectorIndex interface {
	// Dimension returns the fixed vector length accepted by the index.
	Dimension() int

	// Len returns the number of stored vectors.
	Len() int

	// Add appends vectors in order. ids and vectors must have equal length
	// (domain.ErrInvalidInput otherwise) and every vector must match Dimension
	// (domain.ErrDimensionMismatch otherwise). A failing call inserts nothing.
	Add(ctx context.Context, ids []string, vectors [][]float32) error

	// Search returns up to k ids ordered by ascending distance to query.
	// Equal distances keep insertion order. k <= 0 or an empty index yield no hits.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a nearest-neighbour search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Distance is the squared Euclidean distance to the query (lower is closer).
	Distance float64
}

// VectorIndexFactory constructs an empty index for the given dimension.
// Dimension 0 is valid and produces an index that never matches.
type VectorIndexFactory func(dimension int) (VectorIndex, error)

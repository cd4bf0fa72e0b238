// Package flat provides an exact, brute-force vector index.
//
// Vectors are kept in one contiguous slice in insertion order and every
// search scans all of them, computing squared Euclidean distance. This is
// exact and deterministic, and fast enough for the few thousand chunks a
// single document produces.
package flat

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/docuchat/internal/core/domain"
	"github.com/custodia-labs/docuchat/internal/core/ports/driven"
)

// ErrClosed is returned by operations on a closed index.
var ErrClosed = errors.New("flat: index closed")

// Index is an exact L2 vector index.
type Index struct {
	mu        sync.RWMutex
	dimension int
	ids       []string
	data      []float32
	closed    bool
}

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// New creates an empty index for vectors of the given dimension.
// Dimension 0 is accepted and yields an index that never matches.
func New(dimension int) (*Index, error) {
	if dimension < 0 {
		return nil, fmt.Errorf("%w: negative dimension %d", domain.ErrInvalidConfiguration, dimension)
	}
	return &Index{dimension: dimension}, nil
}

// Factory returns a driven.VectorIndexFactory producing flat indices.
func Factory() driven.VectorIndexFactory {
	return func(dimension int) (driven.VectorIndex, error) {
		return New(dimension)
	}
}

// Dimension returns the fixed vector length.
func (i *Index) Dimension() int {
	return i.dimension
}

// Len returns the number of stored vectors.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.ids)
}

// Add appends the vectors in order. The whole call is validated before
// anything is inserted.
func (i *Index) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(ids) != len(vectors) {
		return fmt.Errorf("%w: %d ids for %d vectors", domain.ErrInvalidInput, len(ids), len(vectors))
	}
	for n, v := range vectors {
		if len(v) != i.dimension {
			return fmt.Errorf("%w: vector %d (%s) has length %d, want %d",
				domain.ErrDimensionMismatch, n, ids[n], len(v), i.dimension)
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return ErrClosed
	}

	i.ids = slices.Grow(i.ids, len(ids))
	i.data = slices.Grow(i.data, len(vectors)*i.dimension)
	i.ids = append(i.ids, ids...)
	for _, v := range vectors {
		i.data = append(i.data, v...)
	}
	return nil
}

// Search returns up to k hits ordered by ascending squared L2 distance.
// Ties keep insertion order.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(query) != i.dimension {
		return nil, fmt.Errorf("%w: query has length %d, want %d",
			domain.ErrDimensionMismatch, len(query), i.dimension)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return nil, ErrClosed
	}
	if k <= 0 || len(i.ids) == 0 || i.dimension == 0 {
		return []driven.VectorHit{}, nil
	}

	hits := make([]driven.VectorHit, len(i.ids))
	for n, id := range i.ids {
		vec := i.data[n*i.dimension : (n+1)*i.dimension]
		hits[n] = driven.VectorHit{ChunkID: id, Distance: squaredL2(query, vec)}
	}

	slices.SortStableFunc(hits, func(a, b driven.VectorHit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Close releases the stored vectors.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	i.ids = nil
	i.data = nil
	return nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for n := range a {
		d := float64(a[n]) - float64(b[n])
		sum += d * d
	}
	return sum
}

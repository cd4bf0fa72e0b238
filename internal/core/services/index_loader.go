package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/docuchat/internal/core/domain"
	"github.com/custodia-labs/docuchat/internal/core/ports/driven"
	"github.com/custodia-labs/docuchat/internal/core/ports/driving"
	"github.com/custodia-labs/docuchat/internal/logger"
)

// Ensure IndexLoader implements the interface.
var _ driving.IndexService = (*IndexLoader)(nil)

// LoadResult is the outcome of loading a document's vector index.
type LoadResult struct {
	// State reports whether the index exists.
	State domain.IndexState

	// Index is nil when State is IndexStateAbsent.
	Index driven.VectorIndex
}

// IndexLoaderConfig configures an IndexLoader.
type IndexLoaderConfig struct {
	// CacheSize bounds the number of document indices kept in memory.
	CacheSize int

	// EmbedTimeout bounds the embedding call made while building an index.
	EmbedTimeout time.Duration
}

// IndexLoader builds and caches one vector index per document.
//
// Chunks that have no persisted embedding are embedded in a single batch and
// written back before the index is built, so later loads reuse the same
// vectors. Concurrent loads of the same document share one computation.
type IndexLoader struct {
	chunks       driven.ChunkStore
	embedder     driven.EmbeddingService
	factory      driven.VectorIndexFactory
	observer     driven.Observer
	embedTimeout time.Duration

	cache *lru.Cache[string, driven.VectorIndex]
	group singleflight.Group

	// generations is bumped on every Invalidate so a build that started
	// before the invalidation does not repopulate the cache.
	genMu       sync.Mutex
	generations map[string]uint64
}

// NewIndexLoader creates a new index loader.
// The embedder may be nil, in which case only fully embedded documents can be loaded.
func NewIndexLoader(
	chunks driven.ChunkStore,
	embedder driven.EmbeddingService,
	factory driven.VectorIndexFactory,
	cfg IndexLoaderConfig,
) (*IndexLoader, error) {
	if chunks == nil || factory == nil {
		return nil, fmt.Errorf("%w: chunk store and index factory are required", domain.ErrInvalidConfiguration)
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = domain.DefaultCacheSize
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = domain.DefaultEmbedTimeout
	}

	cache, err := lru.New[string, driven.VectorIndex](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create index cache: %w", err)
	}

	return &IndexLoader{
		chunks:       chunks,
		embedder:     embedder,
		factory:      factory,
		embedTimeout: cfg.EmbedTimeout,
		cache:        cache,
		generations:  make(map[string]uint64),
	}, nil
}

// SetObserver sets the observer notified of cache hits and builds.
func (l *IndexLoader) SetObserver(o driven.Observer) {
	l.observer = o
}

// Load returns a ready index for documentID, building it on first use.
// A document without chunks yields IndexStateAbsent; that result is never cached.
//
// The build itself runs detached from ctx so that one caller giving up does
// not fail the others waiting on the same document; it is still bounded by
// the embed timeout. ctx only controls how long this caller waits.
func (l *IndexLoader) Load(ctx context.Context, documentID string) (LoadResult, error) {
	if documentID == "" {
		return LoadResult{}, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	if idx, ok := l.cache.Get(documentID); ok {
		logger.Debug("Index cache hit for document %s", documentID)
		if l.observer != nil {
			l.observer.IndexCacheHit()
		}
		return LoadResult{State: domain.IndexStateReady, Index: idx}, nil
	}

	gen := l.generation(documentID)
	buildCtx := context.WithoutCancel(ctx)

	ch := l.group.DoChan(documentID, func() (any, error) {
		return l.build(buildCtx, documentID, gen)
	})

	select {
	case <-ctx.Done():
		return LoadResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return LoadResult{}, res.Err
		}
		if res.Shared {
			logger.Debug("Index load for document %s was shared", documentID)
		}
		return res.Val.(LoadResult), nil
	}
}

// Warm loads the index for documentID and reports its shape.
func (l *IndexLoader) Warm(ctx context.Context, documentID string) (*domain.IndexInfo, error) {
	res, err := l.Load(ctx, documentID)
	if err != nil {
		return nil, err
	}

	info := &domain.IndexInfo{DocumentID: documentID, State: res.State}
	if res.Index != nil {
		info.Vectors = res.Index.Len()
		info.Dimension = res.Index.Dimension()
	}
	return info, nil
}

// Invalidate drops any cached index for documentID.
// Loads already in flight finish but their result is not cached.
func (l *IndexLoader) Invalidate(documentID string) {
	l.genMu.Lock()
	l.generations[documentID]++
	l.genMu.Unlock()

	l.group.Forget(documentID)
	l.cache.Remove(documentID)
	logger.Debug("Index for document %s invalidated", documentID)
}

// Cached returns the number of indices currently held in memory.
func (l *IndexLoader) Cached() int {
	return l.cache.Len()
}

func (l *IndexLoader) generation(documentID string) uint64 {
	l.genMu.Lock()
	defer l.genMu.Unlock()
	return l.generations[documentID]
}

func (l *IndexLoader) build(ctx context.Context, documentID string, gen uint64) (LoadResult, error) {
	logger.Section("Index Build")
	start := time.Now()

	chunks, err := l.chunks.GetChunks(ctx, documentID)
	if err != nil {
		return LoadResult{}, fmt.Errorf("load chunks for document %s: %w", documentID, err)
	}
	if len(chunks) == 0 {
		logger.Debug("Document %s has no chunks, index absent", documentID)
		return LoadResult{State: domain.IndexStateAbsent}, nil
	}
	logger.Debug("Loaded %d chunks for document %s", len(chunks), documentID)

	dim, err := persistedDimension(chunks)
	if err != nil {
		return LoadResult{}, fmt.Errorf("document %s: %w", documentID, err)
	}

	embedded, err := l.embedMissing(ctx, chunks, dim)
	if err != nil {
		return LoadResult{}, fmt.Errorf("document %s: %w", documentID, err)
	}
	if dim == 0 {
		dim = len(chunks[0].Embedding)
	}

	idx, err := l.factory(dim)
	if err != nil {
		return LoadResult{}, fmt.Errorf("create index: %w", err)
	}

	ids := make([]string, len(chunks))
	vectors := make([][]float32, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
		vectors[i] = c.Embedding
	}
	if err := idx.Add(ctx, ids, vectors); err != nil {
		_ = idx.Close()
		return LoadResult{}, fmt.Errorf("populate index: %w", err)
	}

	took := time.Since(start)
	logger.Info("Built index for document %s: %d vectors, dimension %d, %d embedded (%s)",
		documentID, idx.Len(), dim, embedded, took)
	if l.observer != nil {
		l.observer.IndexBuilt(len(chunks), embedded, took)
	}

	if l.generation(documentID) == gen {
		l.cache.Add(documentID, idx)
	} else {
		logger.Debug("Document %s was invalidated during build, not caching", documentID)
	}

	return LoadResult{State: domain.IndexStateReady, Index: idx}, nil
}

// embedMissing embeds every chunk without a vector in one batch, persists the
// vectors and attaches them to chunks. Nothing is persisted unless the whole
// batch succeeded and matches dim (when dim is non-zero).
func (l *IndexLoader) embedMissing(ctx context.Context, chunks []domain.Chunk, dim int) (int, error) {
	var missing []int
	for i, c := range chunks {
		if !c.HasEmbedding() {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}
	if l.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	texts := make([]string, len(missing))
	for n, i := range missing {
		texts[n] = chunks[i].Content
	}

	logger.Debug("Embedding %d chunks with %s", len(texts), l.embedder.ModelName())
	embedCtx, cancel := context.WithTimeout(ctx, l.embedTimeout)
	defer cancel()

	vectors, err := l.embedder.EmbedBatch(embedCtx, texts)
	if l.observer != nil {
		l.observer.EmbeddingCall(len(texts), err)
	}
	if err != nil {
		return 0, upstreamError(fmt.Sprintf("embed %d chunks", len(texts)), err)
	}
	if err := validateBatch(vectors, len(texts), dim); err != nil {
		return 0, err
	}

	updates := make([]domain.ChunkEmbedding, len(missing))
	for n, i := range missing {
		updates[n] = domain.ChunkEmbedding{ChunkID: chunks[i].ID, Embedding: vectors[n]}
	}
	if err := l.chunks.UpdateEmbeddings(ctx, updates); err != nil {
		return 0, fmt.Errorf("persist embeddings: %w", err)
	}

	for n, i := range missing {
		chunks[i].Embedding = vectors[n]
	}
	return len(missing), nil
}

// persistedDimension returns the common length of already stored embeddings,
// or 0 when none are stored.
func persistedDimension(chunks []domain.Chunk) (int, error) {
	dim := 0
	for _, c := range chunks {
		if !c.HasEmbedding() {
			continue
		}
		if dim == 0 {
			dim = len(c.Embedding)
			continue
		}
		if len(c.Embedding) != dim {
			return 0, fmt.Errorf("%w: chunk %s has %d dimensions, others have %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), dim)
		}
	}
	return dim, nil
}

// validateBatch checks an embedding response before anything is persisted.
func validateBatch(vectors [][]float32, want, dim int) error {
	if len(vectors) != want {
		return fmt.Errorf("%w: embedder returned %d vectors for %d texts",
			domain.ErrUpstreamUnavailable, len(vectors), want)
	}
	if len(vectors[0]) == 0 {
		return fmt.Errorf("%w: embedder returned empty vectors", domain.ErrUpstreamUnavailable)
	}
	batchDim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != batchDim {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d",
				domain.ErrUpstreamUnavailable, i, len(v), batchDim)
		}
	}
	if dim != 0 && batchDim != dim {
		return fmt.Errorf("%w: new embeddings have %d dimensions, persisted ones have %d",
			domain.ErrDimensionMismatch, batchDim, dim)
	}
	return nil
}

// upstreamError wraps err with domain.ErrUpstreamUnavailable unless it already is.
func upstreamError(op string, err error) error {
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUpstreamUnavailable, err)
}

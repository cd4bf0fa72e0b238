package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/docuchat/internal/core/domain"
	"github.com/custodia-labs/docuchat/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interfaces.
var (
	_ driven.DocumentStore = (*DocumentStore)(nil)
	_ driven.ChunkStore    = (*DocumentStore)(nil)
)

// DocumentStore is an in-memory implementation of driven.DocumentStore
// and driven.ChunkStore. Used by tests and the --memory flag.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// SaveDocument stores a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns the documents of a user, newest first.
func (s *DocumentStore) ListDocuments(_ context.Context, userID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		if userID == "" || doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	slices.SortFunc(docs, func(a, b domain.Document) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareStrings(a.ID, b.ID)
	})
	return docs, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// GetChunks returns every chunk of a document in position order.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneChunks(s.chunks[documentID]), nil
}

// SaveChunks replaces the chunks of a document.
func (s *DocumentStore) SaveChunks(_ context.Context, documentID string, inputs []domain.ChunkInput) ([]domain.Chunk, error) {
	chunks := make([]domain.Chunk, 0, len(inputs))
	for i, in := range inputs {
		if in.Content == "" {
			return nil, fmt.Errorf("%w: chunk %d has empty content", domain.ErrInvalidInput, i)
		}
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: documentID,
			Content:    in.Content,
			Position:   i,
			Span:       cloneSpan(in.Span),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[documentID] = chunks
	return cloneChunks(chunks), nil
}

// UpdateEmbeddings attaches vectors to existing chunks.
// Unknown chunk ids fail the whole call and nothing is written.
func (s *DocumentStore) UpdateEmbeddings(_ context.Context, embeddings []domain.ChunkEmbedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	type loc struct {
		doc string
		idx int
	}
	index := make(map[string]loc)
	for docID, chunks := range s.chunks {
		for i, c := range chunks {
			index[c.ID] = loc{doc: docID, idx: i}
		}
	}

	for _, e := range embeddings {
		if _, ok := index[e.ChunkID]; !ok {
			return fmt.Errorf("update embedding for chunk %s: %w", e.ChunkID, domain.ErrNotFound)
		}
	}
	for _, e := range embeddings {
		l := index[e.ChunkID]
		s.chunks[l.doc][l.idx].Embedding = slices.Clone(e.Embedding)
	}
	return nil
}

// GetChunksByIDs returns chunks of documentID in the order of ids.
func (s *DocumentStore) GetChunksByIDs(_ context.Context, documentID string, ids []string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := make(map[string]domain.Chunk, len(s.chunks[documentID]))
	for _, c := range s.chunks[documentID] {
		byID[c.ID] = c
	}

	result := make([]domain.Chunk, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			result = append(result, cloneChunk(c))
		}
	}
	return result, nil
}

func cloneChunks(chunks []domain.Chunk) []domain.Chunk {
	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = cloneChunk(c)
	}
	return out
}

func cloneChunk(c domain.Chunk) domain.Chunk {
	c.Span = cloneSpan(c.Span)
	c.Embedding = slices.Clone(c.Embedding)
	return c
}

func cloneSpan(span *domain.TimeSpan) *domain.TimeSpan {
	if span == nil {
		return nil
	}
	cp := *span
	return &cp
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

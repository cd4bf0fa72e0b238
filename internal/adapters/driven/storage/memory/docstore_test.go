package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

func TestNewDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.documents)
	assert.NotNil(t, store.chunks)
}

func TestDocumentStore_SaveAndGetDocument(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	now := time.Now()
	doc := &domain.Document{
		ID:        "doc-1",
		UserID:    "user-1",
		Filename:  "notes.pdf",
		MediaType: domain.MediaTypePDF,
		CreatedAt: now,
	}
	require.NoError(t, store.SaveDocument(ctx, doc))

	saved, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", saved.UserID)
	assert.Equal(t, "notes.pdf", saved.Filename)
	assert.Equal(t, domain.MediaTypePDF, saved.MediaType)

	_, err = store.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListDocuments(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "a", UserID: "u1", CreatedAt: base}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "b", UserID: "u1", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "c", UserID: "u2", CreatedAt: base}))

	docs, err := store.ListDocuments(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].ID)
	assert.Equal(t, "a", docs[1].ID)

	all, err := store.ListDocuments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDocumentStore_DeleteCascades(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc-1"}))
	_, err := store.SaveChunks(ctx, "doc-1", []domain.ChunkInput{{Content: "hello"}})
	require.NoError(t, err)

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.ErrorIs(t, store.DeleteDocument(ctx, "doc-1"), domain.ErrNotFound)
}

func TestDocumentStore_SaveChunks(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	saved, err := store.SaveChunks(ctx, "doc-1", []domain.ChunkInput{
		{Content: "first", Span: &domain.TimeSpan{Start: 0, End: 2.5}},
		{Content: "second"},
	})
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.NotEmpty(t, saved[0].ID)
	assert.NotEqual(t, saved[0].ID, saved[1].ID)
	assert.Equal(t, 0, saved[0].Position)
	assert.Equal(t, 1, saved[1].Position)
	assert.Equal(t, 2.5, saved[0].Span.End)
	assert.Nil(t, saved[1].Span)

	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, saved, chunks)
}

func TestDocumentStore_SaveChunks_RejectsEmptyContent(t *testing.T) {
	store := NewDocumentStore()
	_, err := store.SaveChunks(context.Background(), "doc-1", []domain.ChunkInput{{Content: ""}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentStore_UpdateEmbeddings(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	saved, err := store.SaveChunks(ctx, "doc-1", []domain.ChunkInput{{Content: "a"}, {Content: "b"}})
	require.NoError(t, err)

	err = store.UpdateEmbeddings(ctx, []domain.ChunkEmbedding{
		{ChunkID: saved[0].ID, Embedding: []float32{1, 2}},
		{ChunkID: saved[1].ID, Embedding: []float32{3, 4}},
	})
	require.NoError(t, err)

	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, chunks[0].Embedding)
	assert.Equal(t, []float32{3, 4}, chunks[1].Embedding)
}

func TestDocumentStore_UpdateEmbeddings_AllOrNothing(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	saved, err := store.SaveChunks(ctx, "doc-1", []domain.ChunkInput{{Content: "a"}})
	require.NoError(t, err)

	err = store.UpdateEmbeddings(ctx, []domain.ChunkEmbedding{
		{ChunkID: saved[0].ID, Embedding: []float32{1}},
		{ChunkID: "ghost", Embedding: []float32{2}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, _ := store.GetChunks(ctx, "doc-1")
	assert.Nil(t, chunks[0].Embedding)
}

func TestDocumentStore_GetChunksByIDs(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	a, _ := store.SaveChunks(ctx, "doc-a", []domain.ChunkInput{{Content: "a0"}, {Content: "a1"}})
	b, _ := store.SaveChunks(ctx, "doc-b", []domain.ChunkInput{{Content: "b0"}})

	chunks, err := store.GetChunksByIDs(ctx, "doc-a", []string{a[1].ID, b[0].ID, "missing", a[0].ID})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "a1", chunks[0].Content)
	assert.Equal(t, "a0", chunks[1].Content)
}

func TestDocumentStore_ReturnsCopies(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	saved, _ := store.SaveChunks(ctx, "doc-1", []domain.ChunkInput{{Content: "a", Span: &domain.TimeSpan{Start: 1, End: 2}}})
	saved[0].Span.Start = 99

	chunks, _ := store.GetChunks(ctx, "doc-1")
	assert.Equal(t, 1.0, chunks[0].Span.Start)
}

func TestDocumentStore_ConcurrentAccess(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.SaveChunks(ctx, "doc-1", []domain.ChunkInput{{Content: "x"}})
			_, _ = store.GetChunks(ctx, "doc-1")
		}()
	}
	wg.Wait()

	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docuchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docuchat/internal/core/domain"
)

type ingestFixture struct {
	store       *memory.DocumentStore
	uploads     *mockUploadStore
	extractor   *mockExtractor
	transcriber *mockTranscriber
	index       *mockInvalidator
	service     *IngestService
}

func setupIngest() *ingestFixture {
	f := &ingestFixture{
		store:       memory.NewDocumentStore(),
		uploads:     newMockUploadStore(),
		extractor:   &mockExtractor{},
		transcriber: &mockTranscriber{},
		index:       &mockInvalidator{},
	}
	f.service = NewIngestService(f.store, f.store, f.uploads, mockChunker{}, f.extractor, f.transcriber, f.index)
	f.service.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestIngestService_Register(t *testing.T) {
	f := setupIngest()
	ctx := context.Background()

	doc, err := f.service.Register(ctx, "user-1", "/tmp/in/Lecture Notes.pdf")
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "user-1", doc.UserID)
	assert.Equal(t, "Lecture Notes.pdf", doc.Filename)
	assert.Equal(t, domain.MediaTypePDF, doc.MediaType)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), doc.CreatedAt)
	assert.Equal(t, "/tmp/in/Lecture Notes.pdf", f.uploads.stored[doc.ID+".pdf"])

	saved, err := f.store.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Filename, saved.Filename)
}

func TestIngestService_Register_UnsupportedExtension(t *testing.T) {
	f := setupIngest()

	for _, path := range []string{"notes.txt", "slides.docx", "noext"} {
		_, err := f.service.Register(context.Background(), "user-1", path)
		assert.ErrorIs(t, err, domain.ErrUnsupportedType, path)
	}
	assert.Empty(t, f.uploads.stored)
}

func TestIngestService_Register_ContentTypeWins(t *testing.T) {
	f := setupIngest()
	f.uploads.detected = domain.MediaTypeWAV

	doc, err := f.service.Register(context.Background(), "user-1", "talk.mp3")
	require.NoError(t, err)
	assert.Equal(t, domain.MediaTypeWAV, doc.MediaType)
	assert.Contains(t, f.uploads.stored, doc.ID+".wav")
}

func TestIngestService_Register_DetectionFailure(t *testing.T) {
	f := setupIngest()
	f.uploads.detectErr = domain.ErrUnsupportedType

	_, err := f.service.Register(context.Background(), "user-1", "fake.pdf")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestIngestService_Register_StorageFailure(t *testing.T) {
	f := setupIngest()
	f.uploads.putErr = errors.New("disk full")

	_, err := f.service.Register(context.Background(), "user-1", "a.pdf")
	assert.Error(t, err)

	docs, _ := f.store.ListDocuments(context.Background(), "")
	assert.Empty(t, docs)
}

func TestIngestService_Process_PDF(t *testing.T) {
	f := setupIngest()
	ctx := context.Background()
	f.extractor.text = "first part|second part|third part"

	doc, err := f.service.Register(ctx, "user-1", "paper.pdf")
	require.NoError(t, err)

	res, err := f.service.Process(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, domain.MediaTypePDF, res.MediaType)
	assert.Equal(t, []string{"/uploads/" + doc.ID + ".pdf"}, f.extractor.paths)

	chunks, err := f.store.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "second part", chunks[1].Content)
	assert.Nil(t, chunks[1].Span)

	assert.Equal(t, []string{doc.ID}, f.index.ids)
}

func TestIngestService_Process_Audio(t *testing.T) {
	f := setupIngest()
	ctx := context.Background()
	f.transcriber.segments = []domain.Segment{
		{Text: " Hello there. ", Start: 0, End: 2.5},
		{Text: "   ", Start: 2.5, End: 3},
		{Text: "General Kenobi.", Start: 3, End: 5.25},
	}

	doc, err := f.service.Register(ctx, "user-1", "clip.mp4")
	require.NoError(t, err)

	res, err := f.service.Process(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Chunks)

	chunks, _ := f.store.GetChunks(ctx, doc.ID)
	require.Len(t, chunks, 2)
	assert.Equal(t, "Hello there.", chunks[0].Content)
	assert.Equal(t, &domain.TimeSpan{Start: 0, End: 2.5}, chunks[0].Span)
	assert.Equal(t, &domain.TimeSpan{Start: 3, End: 5.25}, chunks[1].Span)
}

func TestIngestService_Process_Reprocessing_ReplacesChunks(t *testing.T) {
	f := setupIngest()
	ctx := context.Background()
	f.extractor.text = "a|b"

	doc, _ := f.service.Register(ctx, "user-1", "paper.pdf")
	_, err := f.service.Process(ctx, doc.ID)
	require.NoError(t, err)

	f.extractor.text = "c"
	res, err := f.service.Process(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Chunks)

	chunks, _ := f.store.GetChunks(ctx, doc.ID)
	require.Len(t, chunks, 1)
	assert.Equal(t, "c", chunks[0].Content)
	assert.Len(t, f.index.ids, 2)
}

func TestIngestService_Process_NoTranscriber(t *testing.T) {
	f := setupIngest()
	ctx := context.Background()
	svc := NewIngestService(f.store, f.store, f.uploads, mockChunker{}, f.extractor, nil, f.index)

	doc, err := svc.Register(ctx, "user-1", "talk.wav")
	require.NoError(t, err)

	_, err = svc.Process(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrTranscriptionUnavailable)
	assert.Empty(t, f.index.ids)
}

func TestIngestService_Process_TranscriptionFailure(t *testing.T) {
	f := setupIngest()
	ctx := context.Background()
	f.transcriber.transcribeErr = errors.New("timeout")

	doc, _ := f.service.Register(ctx, "user-1", "talk.mp3")
	_, err := f.service.Process(ctx, doc.ID)
	assert.Error(t, err)

	chunks, _ := f.store.GetChunks(ctx, doc.ID)
	assert.Empty(t, chunks)
}

func TestIngestService_Process_UnknownDocument(t *testing.T) {
	f := setupIngest()

	_, err := f.service.Process(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestService_Process_EmptyText(t *testing.T) {
	f := setupIngest()
	ctx := context.Background()

	doc, _ := f.service.Register(ctx, "user-1", "blank.pdf")
	res, err := f.service.Process(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Chunks)
}

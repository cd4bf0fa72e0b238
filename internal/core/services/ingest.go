package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docuchat/internal/core/domain"
	"github.com/custodia-labs/docuchat/internal/core/ports/driven"
	"github.com/custodia-labs/docuchat/internal/core/ports/driving"
	"github.com/custodia-labs/docuchat/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// invalidator drops cached indices.
type invalidator interface {
	Invalidate(documentID string)
}

// IngestService registers uploads and turns them into chunks.
type IngestService struct {
	docs        driven.DocumentStore
	chunks      driven.ChunkStore
	uploads     driven.UploadStore
	chunker     driven.Chunker
	extractor   driven.TextExtractor
	transcriber driven.Transcriber
	index       invalidator
	now         func() time.Time
}

// NewIngestService creates a new ingest service.
// The extractor and transcriber are optional; documents they would handle
// fail to process without them.
func NewIngestService(
	docs driven.DocumentStore,
	chunks driven.ChunkStore,
	uploads driven.UploadStore,
	chunker driven.Chunker,
	extractor driven.TextExtractor,
	transcriber driven.Transcriber,
	index invalidator,
) *IngestService {
	return &IngestService{
		docs:        docs,
		chunks:      chunks,
		uploads:     uploads,
		chunker:     chunker,
		extractor:   extractor,
		transcriber: transcriber,
		index:       index,
		now:         time.Now,
	}
}

// Register stores the file at path for userID and creates its document.
// The extension selects the media type; the content must sniff as a
// supported type too, and wins when the two disagree.
func (s *IngestService) Register(ctx context.Context, userID, path string) (*domain.Document, error) {
	logger.Section("Register")

	mediaType := domain.MediaTypeFromFilename(path)
	if !mediaType.IsValid() {
		return nil, fmt.Errorf("%w: %q (allowed: %s)", domain.ErrUnsupportedType,
			filepath.Ext(path), allowedExtensions())
	}

	sniffed, err := s.uploads.DetectMediaType(path)
	if err != nil {
		return nil, fmt.Errorf("detect media type: %w", err)
	}
	if sniffed != mediaType {
		logger.Warn("File %s has extension %s but content looks like %s", path, mediaType, sniffed)
		mediaType = sniffed
	}

	doc := &domain.Document{
		ID:        uuid.New().String(),
		UserID:    userID,
		Filename:  filepath.Base(path),
		MediaType: mediaType,
		CreatedAt: s.now().UTC(),
	}

	stored, err := s.uploads.Put(ctx, path, doc.StoredName())
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	logger.Debug("Stored %s at %s", doc.Filename, stored)

	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		if rmErr := s.uploads.Remove(doc.StoredName()); rmErr != nil {
			logger.Warn("Failed to remove orphaned upload %s: %v", stored, rmErr)
		}
		return nil, fmt.Errorf("save document: %w", err)
	}

	logger.Info("Registered document %s (%s, %s)", doc.ID, doc.Filename, doc.MediaType)
	return doc, nil
}

// Process extracts or transcribes the document and replaces its chunks.
// The cached index of the document is invalidated afterwards.
func (s *IngestService) Process(ctx context.Context, documentID string) (*domain.ProcessResult, error) {
	logger.Section("Process")

	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	path := s.uploads.Path(doc.StoredName())

	var inputs []domain.ChunkInput
	switch {
	case doc.MediaType.IsTimeBased():
		inputs, err = s.transcribe(ctx, path)
	case doc.MediaType == domain.MediaTypePDF:
		inputs, err = s.extract(ctx, doc.MediaType, path)
	default:
		err = fmt.Errorf("%w: %s", domain.ErrUnsupportedType, doc.MediaType)
	}
	if err != nil {
		return nil, fmt.Errorf("process document %s: %w", documentID, err)
	}

	if len(inputs) == 0 {
		logger.Warn("Document %s produced no text", documentID)
	}

	saved, err := s.chunks.SaveChunks(ctx, documentID, inputs)
	if err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}
	if s.index != nil {
		s.index.Invalidate(documentID)
	}

	logger.Info("Processed document %s: %d chunks", documentID, len(saved))
	return &domain.ProcessResult{
		DocumentID: documentID,
		MediaType:  doc.MediaType,
		Chunks:     len(saved),
	}, nil
}

func (s *IngestService) extract(ctx context.Context, mediaType domain.MediaType, path string) ([]domain.ChunkInput, error) {
	if s.extractor == nil || !s.extractor.Supports(mediaType) {
		return nil, fmt.Errorf("%w: no text extractor for %s", domain.ErrUnsupportedType, mediaType)
	}

	text, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	logger.Debug("Extracted %d characters", len(text))

	pieces, err := s.chunker.Chunk(text)
	if err != nil {
		return nil, fmt.Errorf("chunk text: %w", err)
	}
	logger.Debug("Chunker %s produced %d chunks", s.chunker.Name(), len(pieces))

	inputs := make([]domain.ChunkInput, len(pieces))
	for i, p := range pieces {
		inputs[i] = domain.ChunkInput{Content: p}
	}
	return inputs, nil
}

func (s *IngestService) transcribe(ctx context.Context, path string) ([]domain.ChunkInput, error) {
	if s.transcriber == nil {
		return nil, domain.ErrTranscriptionUnavailable
	}

	segments, err := s.transcriber.Transcribe(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	logger.Debug("Transcriber %s returned %d segments", s.transcriber.ModelName(), len(segments))

	inputs := make([]domain.ChunkInput, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		inputs = append(inputs, domain.ChunkInput{
			Content: text,
			Span:    &domain.TimeSpan{Start: seg.Start, End: seg.End},
		})
	}
	return inputs, nil
}

func allowedExtensions() string {
	types := domain.AllMediaTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

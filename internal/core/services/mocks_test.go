package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/docuchat/internal/core/domain"
	"github.com/custodia-labs/docuchat/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Vectors come from the vectors map, falling back to {len(text), 0}.
type mockEmbeddingService struct {
	mu       sync.Mutex
	vectors  map[string][]float32
	embedErr error
	dims     int

	// override replaces the whole batch response when set.
	override func(texts []string) [][]float32

	// started is signalled (non-blocking) when EmbedBatch is entered.
	started chan struct{}
	// release, when set, blocks EmbedBatch until closed or ctx is done.
	release chan struct{}

	calls int
	texts [][]string
}

func (m *mockEmbeddingService) vectorFor(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	return []float32{float32(len(text)), 0}
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.texts = append(m.texts, append([]string(nil), texts...))
	m.mu.Unlock()

	if m.started != nil {
		select {
		case m.started <- struct{}{}:
		default:
		}
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.override != nil {
		return m.override(texts), nil
	}

	result := make([][]float32, len(texts))
	for i, t := range texts {
		result[i] = m.vectorFor(t)
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int { return m.dims }
func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error { return nil }

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	mu          sync.Mutex
	response    string
	generateErr error
	prompts     []string
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLMService) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return m.response, m.generateErr
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error { return nil }

func (m *mockLLMService) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
	loadErr error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// mockUploadStore implements driven.UploadStore for testing.
// Media types are detected from the extension unless detected is set.
type mockUploadStore struct {
	mu        sync.Mutex
	stored    map[string]string
	removed   []string
	detected  domain.MediaType
	detectErr error
	putErr    error
}

func newMockUploadStore() *mockUploadStore {
	return &mockUploadStore{stored: make(map[string]string)}
}

func (m *mockUploadStore) Put(_ context.Context, src, name string) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored[name] = src
	return m.Path(name), nil
}

func (m *mockUploadStore) Path(name string) string {
	return filepath.Join("/uploads", name)
}

func (m *mockUploadStore) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stored, name)
	m.removed = append(m.removed, name)
	return nil
}

func (m *mockUploadStore) DetectMediaType(path string) (domain.MediaType, error) {
	if m.detectErr != nil {
		return "", m.detectErr
	}
	if m.detected != "" {
		return m.detected, nil
	}
	return domain.MediaTypeFromFilename(path), nil
}

// mockExtractor implements driven.TextExtractor for testing.
type mockExtractor struct {
	text       string
	extractErr error
	paths      []string
}

func (m *mockExtractor) Extract(_ context.Context, path string) (string, error) {
	m.paths = append(m.paths, path)
	return m.text, m.extractErr
}

func (m *mockExtractor) Supports(mt domain.MediaType) bool {
	return mt == domain.MediaTypePDF
}

// mockTranscriber implements driven.Transcriber for testing.
type mockTranscriber struct {
	segments      []domain.Segment
	transcribeErr error
}

func (m *mockTranscriber) Transcribe(_ context.Context, _ string) ([]domain.Segment, error) {
	return m.segments, m.transcribeErr
}

func (m *mockTranscriber) ModelName() string { return "mock-whisper" }

// mockChunker implements driven.Chunker by splitting on "|".
type mockChunker struct{}

func (mockChunker) Name() string { return "mock" }

func (mockChunker) Chunk(text string) ([]string, error) {
	var out []string
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == '|' {
			if i > start {
				out = append(out, text[start:i])
			}
			start = i + 1
		}
	}
	return out, nil
}

// mockInvalidator records invalidated document ids.
type mockInvalidator struct {
	mu  sync.Mutex
	ids []string
}

func (m *mockInvalidator) Invalidate(documentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, documentID)
}

// recordingObserver implements driven.Observer for testing.
type recordingObserver struct {
	mu         sync.Mutex
	cacheHits  int
	builds     int
	embedded   int
	embedCalls int
	outcomes   []string
}

func (o *recordingObserver) IndexCacheHit() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cacheHits++
}

func (o *recordingObserver) IndexBuilt(_, embedded int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.builds++
	o.embedded += embedded
}

func (o *recordingObserver) EmbeddingCall(_ int, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.embedCalls++
}

func (o *recordingObserver) QueryAnswered(outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

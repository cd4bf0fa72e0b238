package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/custodia-labs/docuchat/internal/adapters/driving/watcher"
	"github.com/custodia-labs/docuchat/internal/core/domain"
	"github.com/custodia-labs/docuchat/internal/core/ports/driving"
	"github.com/custodia-labs/docuchat/internal/logger"
)

var testCreated = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// mockIngestService implements driving.IngestService for testing.
type mockIngestService struct {
	registerFunc func(ctx context.Context, userID, path string) (*domain.Document, error)
	processFunc  func(ctx context.Context, documentID string) (*domain.ProcessResult, error)
	registered   []string
	processed    []string
}

func (m *mockIngestService) Register(ctx context.Context, userID, path string) (*domain.Document, error) {
	m.registered = append(m.registered, path)
	if m.registerFunc != nil {
		return m.registerFunc(ctx, userID, path)
	}
	return &domain.Document{
		ID:        "doc-1",
		UserID:    userID,
		Filename:  "report.pdf",
		MediaType: domain.MediaTypePDF,
		CreatedAt: testCreated,
	}, nil
}

func (m *mockIngestService) Process(ctx context.Context, documentID string) (*domain.ProcessResult, error) {
	m.processed = append(m.processed, documentID)
	if m.processFunc != nil {
		return m.processFunc(ctx, documentID)
	}
	return &domain.ProcessResult{DocumentID: documentID, MediaType: domain.MediaTypePDF, Chunks: 4}, nil
}

// mockQueryService implements driving.QueryService for testing.
type mockQueryService struct {
	answerFunc func(ctx context.Context, documentID, question string) (*domain.Answer, error)
}

func (m *mockQueryService) Answer(ctx context.Context, documentID, question string) (*domain.Answer, error) {
	if m.answerFunc != nil {
		return m.answerFunc(ctx, documentID, question)
	}
	return &domain.Answer{
		Text:    "The speaker recommends weekly backups.",
		Sources: []domain.TimeSpan{{Start: 12, End: 30.5}, {Start: 75, End: 90}},
	}, nil
}

// mockDocumentService implements driving.DocumentService for testing.
type mockDocumentService struct {
	listFunc   func(ctx context.Context, userID string) ([]domain.Document, error)
	getFunc    func(ctx context.Context, documentID string) (*domain.Document, error)
	chunksFunc func(ctx context.Context, documentID string) ([]domain.Chunk, error)
	deleteFunc func(ctx context.Context, documentID string) error
}

func (m *mockDocumentService) List(ctx context.Context, userID string) ([]domain.Document, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID)
	}
	return []domain.Document{
		{ID: "doc-1", UserID: "alice", Filename: "report.pdf", MediaType: domain.MediaTypePDF, CreatedAt: testCreated},
		{ID: "doc-2", UserID: "bob", Filename: "standup.mp3", MediaType: domain.MediaTypeMP3, CreatedAt: testCreated},
	}, nil
}

func (m *mockDocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, documentID)
	}
	return &domain.Document{
		ID:        documentID,
		UserID:    "alice",
		Filename:  "standup.mp3",
		MediaType: domain.MediaTypeMP3,
		CreatedAt: testCreated,
	}, nil
}

func (m *mockDocumentService) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if m.chunksFunc != nil {
		return m.chunksFunc(ctx, documentID)
	}
	return []domain.Chunk{
		{ID: "c1", DocumentID: documentID, Content: "good morning", Position: 0,
			Span: &domain.TimeSpan{Start: 0, End: 4}, Embedding: []float32{0.1}},
		{ID: "c2", DocumentID: documentID, Content: "backups weekly", Position: 1,
			Span: &domain.TimeSpan{Start: 4, End: 65}},
	}, nil
}

func (m *mockDocumentService) Delete(ctx context.Context, documentID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, documentID)
	}
	return nil
}

// mockIndexService implements driving.IndexService for testing.
type mockIndexService struct {
	warmFunc func(ctx context.Context, documentID string) (*domain.IndexInfo, error)
}

func (m *mockIndexService) Warm(ctx context.Context, documentID string) (*domain.IndexInfo, error) {
	if m.warmFunc != nil {
		return m.warmFunc(ctx, documentID)
	}
	return &domain.IndexInfo{DocumentID: documentID, State: domain.IndexStateReady, Vectors: 12, Dimension: 1536}, nil
}

func (m *mockIndexService) Invalidate(string) {}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings      domain.AppSettings
	validateErr   error
	pingErr       error
	chunkingErr   error
	embeddingSets int
	llmSets       int
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embeddingSets++
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llmSets++
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetChunking(chunkSize, overlap int) error {
	if m.chunkingErr != nil {
		return m.chunkingErr
	}
	m.settings.Chunking = domain.ChunkingSettings{ChunkSize: chunkSize, Overlap: overlap}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.pingErr }

// Ensure mocks implement their ports.
var (
	_ driving.IngestService   = (*mockIngestService)(nil)
	_ driving.QueryService    = (*mockQueryService)(nil)
	_ driving.DocumentService = (*mockDocumentService)(nil)
	_ driving.IndexService    = (*mockIndexService)(nil)
	_ driving.SettingsService = (*mockSettingsService)(nil)
)

type testServices struct {
	ingest   *mockIngestService
	query    *mockQueryService
	document *mockDocumentService
	index    *mockIndexService
	settings *mockSettingsService
}

// setupTestServices installs fresh mocks and returns them with a cleanup
// that clears services and flag state shared between tests.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		ingest:   &mockIngestService{},
		query:    &mockQueryService{},
		document: &mockDocumentService{},
		index:    &mockIndexService{},
		settings: newMockSettingsService(),
	}
	SetServices(Services{
		Ingest:   ts.ingest,
		Query:    ts.query,
		Document: ts.document,
		Index:    ts.index,
		Settings: ts.settings,
	})

	return ts, func() {
		SetServices(Services{})
		resetFlags()
	}
}

func resetFlags() {
	ingestUserID = "local"
	ingestNoProcess = false
	askJSON = false
	documentUserID = ""
	chunkSizeFlag = domain.DefaultChunkSize
	chunkOverlapFlag = domain.DefaultChunkOverlap
	watchUserID = "local"
	watchSettle = watcher.DefaultSettle
	chatUserID = ""
	verbose = false
	logger.SetVerbose(false)
	rootCmd.SetArgs(nil)
	rootCmd.SetIn(nil)
}

// execute runs the root command with args and returns everything it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

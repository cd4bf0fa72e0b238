package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docuchat/internal/core/domain"
	"github.com/custodia-labs/docuchat/internal/core/ports/driven"
	"github.com/custodia-labs/docuchat/internal/core/ports/driving"
	"github.com/custodia-labs/docuchat/internal/logger"
)

// Ensure QueryService implements the interfaces.
var (
	_ driving.QueryService    = (*QueryService)(nil)
	_ driven.PromptStoreAware = (*QueryService)(nil)
)

// DefaultAnswerPrompt is used when no prompt store is set or the store has no
// "answer" prompt. The first %s receives the context, the second the question.
const DefaultAnswerPrompt = "\nUse the context below to answer the question.\n\nContext:\n%s\n\nQuestion:\n%s\n"

// Query outcome labels reported to the observer.
const (
	outcomeAnswered  = "answered"
	outcomeInvalid   = "invalid"
	outcomeNotReady  = "not_ready"
	outcomeNoContent = "no_content"
	outcomeUpstream  = "upstream_error"
	outcomeError     = "error"
)

// QueryServiceConfig configures a QueryService.
type QueryServiceConfig struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// Timeout bounds the question embedding and the completion call.
	Timeout time.Duration
}

// QueryService answers questions against one document's chunks.
type QueryService struct {
	loader   *IndexLoader
	chunks   driven.ChunkStore
	embedder driven.EmbeddingService
	llm      driven.LLMService
	prompts  driven.PromptStore
	observer driven.Observer
	topK     int
	timeout  time.Duration
}

// NewQueryService creates a new query service.
// The llm parameter is optional; without it Answer fails with domain.ErrLLMUnavailable.
func NewQueryService(
	loader *IndexLoader,
	chunks driven.ChunkStore,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	cfg QueryServiceConfig,
) *QueryService {
	if cfg.TopK <= 0 {
		cfg.TopK = domain.DefaultTopK
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultQueryTimeout
	}
	return &QueryService{
		loader:   loader,
		chunks:   chunks,
		embedder: embedder,
		llm:      llm,
		topK:     cfg.TopK,
		timeout:  cfg.Timeout,
	}
}

// SetPromptStore sets the prompt store used to override the answer template.
func (s *QueryService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// SetObserver sets the observer notified of answered questions.
func (s *QueryService) SetObserver(o driven.Observer) {
	s.observer = o
}

// Answer retrieves the chunks most relevant to question and asks the language
// model to answer from them.
func (s *QueryService) Answer(ctx context.Context, documentID, question string) (*domain.Answer, error) {
	start := time.Now()
	answer, err := s.answer(ctx, documentID, question)
	if s.observer != nil {
		s.observer.QueryAnswered(outcomeOf(err), time.Since(start))
	}
	return answer, err
}

func (s *QueryService) answer(ctx context.Context, documentID, question string) (*domain.Answer, error) {
	logger.Section("Answer")
	logger.Debug("Document: %s, question: %q", documentID, question)

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	res, err := s.loader.Load(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	if res.State == domain.IndexStateAbsent {
		logger.Debug("Document %s has no index yet", documentID)
		return nil, domain.ErrNotReady
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vectors, err := s.embedder.EmbedBatch(callCtx, []string{question})
	if s.observer != nil {
		s.observer.EmbeddingCall(1, err)
	}
	if err != nil {
		return nil, upstreamError("embed question", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed question: %w: got %d vectors", domain.ErrUpstreamUnavailable, len(vectors))
	}

	hits, err := res.Index.Search(ctx, vectors[0], s.topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("Vector search returned %d hits (k=%d)", len(hits), s.topK)

	chunks, err := s.hydrate(ctx, documentID, hits)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, domain.ErrNoRelevantContent
	}

	contents := make([]string, len(chunks))
	sources := make([]domain.TimeSpan, 0, len(chunks))
	for i, c := range chunks {
		contents[i] = c.Content
		if c.Span != nil {
			sources = append(sources, *c.Span)
		}
	}

	prompt := fmt.Sprintf(s.template(), strings.Join(contents, "\n"), question)
	logger.Debug("Prompt built from %d chunks (%d bytes)", len(chunks), len(prompt))

	text, err := s.llm.Generate(callCtx, prompt, driven.GenerateOptions{})
	if err != nil {
		return nil, upstreamError("generate answer", err)
	}
	logger.Info("Answered question for document %s using %d chunks", documentID, len(chunks))

	return &domain.Answer{Text: text, Sources: sources}, nil
}

// hydrate resolves hits to chunks of documentID, keeping rank order and
// dropping ids that no longer resolve.
func (s *QueryService) hydrate(ctx context.Context, documentID string, hits []driven.VectorHit) ([]domain.Chunk, error) {
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ChunkID
	}

	found, err := s.chunks.GetChunksByIDs(ctx, documentID, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate chunks: %w", err)
	}

	byID := make(map[string]domain.Chunk, len(found))
	for _, c := range found {
		if c.DocumentID == documentID {
			byID[c.ID] = c
		}
	}

	chunks := make([]domain.Chunk, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			logger.Debug("Skipping stale chunk %s", id)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func (s *QueryService) template() string {
	if s.prompts == nil {
		return DefaultAnswerPrompt
	}
	tmpl, err := s.prompts.Load(driven.PromptAnswer)
	if err != nil || strings.Count(tmpl, "%s") != 2 {
		if err != nil {
			logger.Warn("Failed to load answer prompt, using default: %v", err)
		} else {
			logger.Warn("Answer prompt must contain exactly two %%s placeholders, using default")
		}
		return DefaultAnswerPrompt
	}
	return tmpl
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeAnswered
	case errors.Is(err, domain.ErrInvalidInput):
		return outcomeInvalid
	case errors.Is(err, domain.ErrNotReady):
		return outcomeNotReady
	case errors.Is(err, domain.ErrNoRelevantContent):
		return outcomeNoContent
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return outcomeUpstream
	default:
		return outcomeError
	}
}

package ai

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/custodia-labs/docuchat/internal/core/domain"
	"github.com/custodia-labs/docuchat/internal/core/ports/driven"
	"github.com/custodia-labs/docuchat/internal/logger"
)

// Backoff bounds for retried upstream calls.
const (
	retryBaseDelay = 200 * time.Millisecond
	retryMaxDelay  = 5 * time.Second
	retryJitter    = 50 * time.Millisecond
)

// Ensure the retrying decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*RetryingEmbedding)(nil)
	_ driven.LLMService       = (*RetryingLLM)(nil)
)

// newBackoff returns an exponential backoff allowing maxAttempts calls in total.
func newBackoff(maxAttempts int) retry.Backoff {
	exponential := retry.NewExponential(retryBaseDelay)
	exponential = retry.WithCappedDuration(retryMaxDelay, exponential)
	retries := uint64(0)
	if maxAttempts > 1 {
		retries = uint64(maxAttempts - 1)
	}
	return retry.WithMaxRetries(retries, retry.WithJitter(retryJitter, exponential))
}

// do runs fn, retrying failures that wrap domain.ErrUpstreamUnavailable.
// Cancellation and other errors are returned immediately.
func do(ctx context.Context, op string, maxAttempts int, fn func(ctx context.Context) error) error {
	attempt := 0
	return retry.Do(ctx, newBackoff(maxAttempts), func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !errors.Is(err, domain.ErrUpstreamUnavailable) {
			return err
		}
		if attempt < maxAttempts {
			logger.Debug("%s failed (attempt %d/%d), retrying: %v", op, attempt, maxAttempts, err)
		}
		return retry.RetryableError(err)
	})
}

// RetryingEmbedding retries failed embedding calls with exponential backoff.
type RetryingEmbedding struct {
	driven.EmbeddingService
	maxAttempts int
}

// NewRetryingEmbedding wraps svc. maxAttempts below 2 disables retries.
func NewRetryingEmbedding(svc driven.EmbeddingService, maxAttempts int) *RetryingEmbedding {
	return &RetryingEmbedding{EmbeddingService: svc, maxAttempts: maxAttempts}
}

// Embed generates a vector embedding for the given text.
func (r *RetryingEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := do(ctx, "embed", r.maxAttempts, func(ctx context.Context) error {
		var err error
		out, err = r.EmbeddingService.Embed(ctx, text)
		return err
	})
	return out, err
}

// EmbedBatch embeds texts, retrying the whole batch on failure.
func (r *RetryingEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := do(ctx, "embed batch", r.maxAttempts, func(ctx context.Context) error {
		var err error
		out, err = r.EmbeddingService.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}

// RetryingLLM retries failed completions with exponential backoff.
type RetryingLLM struct {
	driven.LLMService
	maxAttempts int
}

// NewRetryingLLM wraps svc. maxAttempts below 2 disables retries.
func NewRetryingLLM(svc driven.LLMService, maxAttempts int) *RetryingLLM {
	return &RetryingLLM{LLMService: svc, maxAttempts: maxAttempts}
}

// Generate produces text completion from a prompt.
func (r *RetryingLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var out string
	err := do(ctx, "generate", r.maxAttempts, func(ctx context.Context) error {
		var err error
		out, err = r.LLMService.Generate(ctx, prompt, opts)
		return err
	})
	return out, err
}

// Chat conducts a multi-turn conversation.
func (r *RetryingLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var out string
	err := do(ctx, "chat", r.maxAttempts, func(ctx context.Context) error {
		var err error
		out, err = r.LLMService.Chat(ctx, messages, opts)
		return err
	})
	return out, err
}

// Ensure RetryingTranscriber implements the interface.
var _ driven.Transcriber = (*RetryingTranscriber)(nil)

// RetryingTranscriber retries failed transcriptions with exponential backoff.
type RetryingTranscriber struct {
	driven.Transcriber
	maxAttempts int
}

// NewRetryingTranscriber wraps t. maxAttempts below 2 disables retries.
func NewRetryingTranscriber(t driven.Transcriber, maxAttempts int) *RetryingTranscriber {
	return &RetryingTranscriber{Transcriber: t, maxAttempts: maxAttempts}
}

// Transcribe converts the media file at path into segments.
func (r *RetryingTranscriber) Transcribe(ctx context.Context, path string) ([]domain.Segment, error) {
	var out []domain.Segment
	err := do(ctx, "transcribe", r.maxAttempts, func(ctx context.Context) error {
		var err error
		out, err = r.Transcriber.Transcribe(ctx, path)
		return err
	})
	return out, err
}

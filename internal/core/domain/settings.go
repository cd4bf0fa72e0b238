package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings controls how extracted text is split into chunks.
type ChunkingSettings struct {
	// ChunkSize is the number of words per chunk window.
	ChunkSize int

	// Overlap is the number of words shared by consecutive windows.
	Overlap int
}

// Validate checks 0 <= Overlap < ChunkSize.
func (c ChunkingSettings) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfiguration, c.ChunkSize)
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap must be in [0, %d), got %d", ErrInvalidConfiguration, c.ChunkSize, c.Overlap)
	}
	return nil
}

// IndexSettings controls the per-document vector index cache.
type IndexSettings struct {
	// CacheSize is the maximum number of document indices kept in memory.
	CacheSize int

	// EmbedTimeout bounds the embedding call made while building an index.
	EmbedTimeout time.Duration
}

// QuerySettings controls retrieval and answer synthesis.
type QuerySettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int

	// Timeout bounds the question embedding and completion calls.
	Timeout time.Duration
}

// TranscriptionSettings configures the speech-to-text service.
type TranscriptionSettings struct {
	// Model is the transcription model name.
	Model string

	// APIKey is the OpenAI API key used for transcription.
	APIKey string
}

// IsConfigured returns true if transcription can be used.
func (t TranscriptionSettings) IsConfigured() bool {
	return t.APIKey != ""
}

// RetrySettings controls retries of failed upstream calls.
type RetrySettings struct {
	// MaxAttempts is the total number of attempts, including the first one.
	// Values below 2 disable retries.
	MaxAttempts int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Chunking holds text splitting settings.
	Chunking ChunkingSettings

	// Index holds vector index cache settings.
	Index IndexSettings

	// Query holds retrieval settings.
	Query QuerySettings

	// Transcription holds speech-to-text settings.
	Transcription TranscriptionSettings

	// Retry holds upstream retry settings.
	Retry RetrySettings
}

// Validate checks the settings that have hard constraints.
func (s AppSettings) Validate() error {
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if s.Index.CacheSize <= 0 {
		return fmt.Errorf("%w: index cache size must be positive, got %d", ErrInvalidConfiguration, s.Index.CacheSize)
	}
	if s.Query.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidConfiguration, s.Query.TopK)
	}
	return nil
}

// Defaults for the retrieval pipeline.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
	DefaultTopK         = 5
	DefaultCacheSize    = 64
	DefaultEmbedTimeout = 60 * time.Second
	DefaultQueryTimeout = 120 * time.Second
	DefaultMaxAttempts  = 3
	DefaultWhisperModel = "whisper-1"
)

// DefaultAppSettings returns settings with sensible defaults.
// Providers default to OpenAI; API keys are left empty and must be
// configured or supplied through OPENAI_API_KEY.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		Chunking: ChunkingSettings{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
		},
		Index: IndexSettings{
			CacheSize:    DefaultCacheSize,
			EmbedTimeout: DefaultEmbedTimeout,
		},
		Query: QuerySettings{
			TopK:    DefaultTopK,
			Timeout: DefaultQueryTimeout,
		},
		Transcription: TranscriptionSettings{
			Model: DefaultWhisperModel,
		},
		Retry: RetrySettings{
			MaxAttempts: DefaultMaxAttempts,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

package ai

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docuchat/internal/core/domain"
)

// newOllamaServer answers the /api/tags ping with status.
func newOllamaServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.EmbeddingSettings
		wantModel string
		wantErr   error
	}{
		{
			name:    "nil settings",
			wantErr: domain.ErrInvalidConfiguration,
		},
		{
			name: "ollama",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
			wantModel: "nomic-embed-text",
		},
		{
			name: "openai",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
			wantModel: "text-embedding-3-small",
		},
		{
			name: "openai without key",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				Model:    "text-embedding-3-small",
			},
			wantErr: domain.ErrInvalidConfiguration,
		},
		{
			name: "anthropic has no embeddings",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			wantErr: domain.ErrUnsupportedType,
		},
		{
			name:     "unknown provider",
			settings: &domain.EmbeddingSettings{Provider: "unknown"},
			wantErr:  domain.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings, 3)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.IsType(t, &RetryingEmbedding{}, svc)
			assert.Equal(t, tt.wantModel, svc.ModelName())
			assert.Positive(t, svc.Dimensions())
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name      string
		settings  *domain.LLMSettings
		wantModel string
		wantErr   error
	}{
		{
			name:    "nil settings",
			wantErr: domain.ErrInvalidConfiguration,
		},
		{
			name: "ollama",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				Model:    "llama3.2",
			},
			wantModel: "llama3.2",
		},
		{
			name: "openai",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-4o-mini",
			},
			wantModel: "gpt-4o-mini",
		},
		{
			name: "anthropic",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
				Model:    "claude-3-5-sonnet-latest",
			},
			wantModel: "claude-3-5-sonnet-latest",
		},
		{
			name: "anthropic without key",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
			},
			wantErr: domain.ErrInvalidConfiguration,
		},
		{
			name:     "unknown provider",
			settings: &domain.LLMSettings{Provider: "unknown"},
			wantErr:  domain.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings, 3)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			require.IsType(t, &RetryingLLM{}, svc)
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestCreateTranscriber(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		tr, err := CreateTranscriber(&domain.TranscriptionSettings{Model: "whisper-1"}, 3)
		require.NoError(t, err)
		assert.Nil(t, tr)
	})

	t.Run("nil settings", func(t *testing.T) {
		tr, err := CreateTranscriber(nil, 3)
		require.NoError(t, err)
		assert.Nil(t, tr)
	})

	t.Run("configured", func(t *testing.T) {
		tr, err := CreateTranscriber(&domain.TranscriptionSettings{Model: "whisper-1", APIKey: "key"}, 3)
		require.NoError(t, err)
		require.IsType(t, &RetryingTranscriber{}, tr)
		assert.Equal(t, "whisper-1", tr.ModelName())
	})
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	t.Run("unconfigured returns nil", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{}, 3)
		require.NoError(t, err)
		assert.Nil(t, svc)
	})

	t.Run("reachable", func(t *testing.T) {
		server := newOllamaServer(t, http.StatusOK)

		svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  server.URL,
			Model:    "nomic-embed-text",
		}, 3)

		require.NoError(t, err)
		require.NotNil(t, svc)
		assert.Equal(t, 768, svc.Dimensions())
	})

	t.Run("unreachable", func(t *testing.T) {
		server := newOllamaServer(t, http.StatusInternalServerError)

		svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  server.URL,
		}, 3)

		require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.Contains(t, err.Error(), "docuchat settings")
		assert.Nil(t, svc)
	})

	t.Run("creation failure", func(t *testing.T) {
		_, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
			Provider: domain.AIProviderAnthropic,
			APIKey:   "key",
		}, 3)

		require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})
}

func TestCreateAndValidateLLMService(t *testing.T) {
	t.Run("unconfigured returns nil", func(t *testing.T) {
		svc, err := CreateAndValidateLLMService(&domain.LLMSettings{Provider: domain.AIProviderOpenAI}, 3)
		require.NoError(t, err)
		assert.Nil(t, svc)
	})

	t.Run("reachable", func(t *testing.T) {
		server := newOllamaServer(t, http.StatusOK)

		svc, err := CreateAndValidateLLMService(&domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  server.URL,
			Model:    "llama3.2",
		}, 3)

		require.NoError(t, err)
		assert.Equal(t, "llama3.2", svc.ModelName())
	})

	t.Run("unreachable", func(t *testing.T) {
		server := newOllamaServer(t, http.StatusServiceUnavailable)

		svc, err := CreateAndValidateLLMService(&domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  server.URL,
		}, 3)

		require.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.Nil(t, svc)
	})
}

func TestInit(t *testing.T) {
	t.Run("nil settings", func(t *testing.T) {
		result := Init(nil)
		assert.Nil(t, result.EmbeddingService)
		assert.Nil(t, result.LLMService)
		assert.Nil(t, result.Transcriber)
		assert.Empty(t, result.Warnings)
	})

	t.Run("all services", func(t *testing.T) {
		server := newOllamaServer(t, http.StatusOK)
		settings := domain.DefaultAppSettings()
		settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}
		settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}
		settings.Transcription.APIKey = "key"

		result := Init(&settings)
		defer result.Close()

		assert.NotNil(t, result.EmbeddingService)
		assert.NotNil(t, result.LLMService)
		assert.NotNil(t, result.Transcriber)
		assert.Empty(t, result.Warnings)
	})

	t.Run("failures become warnings", func(t *testing.T) {
		server := newOllamaServer(t, http.StatusInternalServerError)
		settings := domain.DefaultAppSettings()
		settings.Embedding = domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}
		settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: server.URL}

		result := Init(&settings)

		assert.Nil(t, result.EmbeddingService)
		assert.Nil(t, result.LLMService)
		assert.Nil(t, result.Transcriber)
		assert.Len(t, result.Warnings, 2)
	})
}

func TestValidateConfig(t *testing.T) {
	server := newOllamaServer(t, http.StatusOK)

	assert.NoError(t, ValidateEmbeddingConfig(nil))
	assert.NoError(t, ValidateLLMConfig(nil))
	assert.NoError(t, ValidateEmbeddingConfig(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  server.URL,
	}))
	assert.NoError(t, ValidateLLMConfig(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  server.URL,
	}))

	down := newOllamaServer(t, http.StatusBadGateway)
	err := ValidateLLMConfig(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: down.URL})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

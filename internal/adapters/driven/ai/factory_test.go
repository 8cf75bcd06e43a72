package ai

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	result := &InitResult{}
	result.Close()
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantNil  bool
		wantErr  bool
		dims     int
	}{
		{name: "nil settings", settings: nil, wantNil: true},
		{name: "no provider", settings: &domain.EmbeddingSettings{}, wantNil: true},
		{
			name:     "ollama uses configured dimensions",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "all-minilm", Dimensions: 384},
			dims:     384,
		},
		{
			name:     "ollama falls back to model table",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "mxbai-embed-large"},
			dims:     1024,
		},
		{
			name:     "openai with key",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk", Model: "text-embedding-3-small"},
			dims:     1536,
		},
		{
			name:     "openai without key is unconfigured",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, Model: "text-embedding-3-small"},
			wantNil:  true,
		},
		{name: "anthropic", settings: &domain.EmbeddingSettings{Provider: domain.AIProviderAnthropic}, wantErr: true},
		{name: "unknown", settings: &domain.EmbeddingSettings{Provider: "cohere"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.dims, svc.Dimensions())
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
		wantErr  bool
		model    string
	}{
		{name: "nil settings", wantNil: true},
		{name: "no provider", settings: &domain.LLMSettings{}, wantNil: true},
		{name: "ollama", settings: &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}, model: "llama3.2"},
		{name: "openai", settings: &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk", Model: "gpt-4o"}, model: "gpt-4o"},
		{name: "anthropic default model", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "sk"}, model: "claude-3-5-sonnet-latest"},
		{name: "anthropic without key", settings: &domain.LLMSettings{Provider: domain.AIProviderAnthropic}, wantNil: true},
		{name: "unknown", settings: &domain.LLMSettings{Provider: "mystery"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.model, svc.ModelName())
		})
	}
}

func TestCreateAndValidateEmbeddingService_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  server.URL,
	})

	assert.Nil(t, svc)
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))
}

func TestInit_DegradesToWarnings(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer up.Close()

	settings := domain.DefaultAppSettings()
	settings.Embedding.BaseURL = down.URL
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: up.URL}

	result := Init(&settings)
	defer result.Close()

	assert.Nil(t, result.EmbeddingService)
	require.NotNil(t, result.LLMService)
	assert.Len(t, result.Warnings, 1)
}

func TestNewRateLimiter(t *testing.T) {
	assert.Nil(t, NewRateLimiter(domain.IngestSettings{}))

	limiter := NewRateLimiter(domain.IngestSettings{RatePerSecond: 2})
	require.NotNil(t, limiter)
	rl, ok := limiter.(*rate.Limiter)
	require.True(t, ok)
	assert.Equal(t, rate.Limit(2), rl.Limit())
	assert.Equal(t, 1, rl.Burst())
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexrag/internal/core/domain"
)

func newTestSettings(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store, nil)
	svc.lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	return svc, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	svc, _ := newTestSettings(nil)

	settings, err := svc.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding, settings.Embedding)
	assert.Equal(t, defaults.Chunking, settings.Chunking)
	assert.Equal(t, defaults.Retrieval, settings.Retrieval)
	assert.Equal(t, defaults.Ingest, settings.Ingest)
	assert.Empty(t, settings.LLM.Provider)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	svc, store := newTestSettings(map[string]string{"OPENAI_API_KEY": "sk-test"})
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.model", "text-embedding-3-large")
	_ = store.Set("chunking.min_chunk_length", 0)
	_ = store.Set("retrieval.threshold", 0.55)
	_ = store.Set("retrieval.backend", "bleve")
	_ = store.Set("ingest.rate_per_second", 0.0)

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)
	assert.Empty(t, settings.Embedding.BaseURL)
	assert.Zero(t, settings.Chunking.MinChunkLength)
	assert.InDelta(t, 0.55, settings.Retrieval.Threshold, 1e-9)
	assert.Equal(t, domain.SearchBackendBleve, settings.Retrieval.Backend)
	assert.Zero(t, settings.Ingest.RatePerSecond)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	svc, store := newTestSettings(nil)
	_ = store.Set("embedding.provider", "invalid_provider")
	_ = store.Set("retrieval.backend", "elastic")

	settings, err := svc.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Retrieval.Backend, settings.Retrieval.Backend)
}

func TestSettingsService_Save_NeverPersistsAPIKeys(t *testing.T) {
	svc, store := newTestSettings(nil)
	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderAnthropic, Model: "claude", APIKey: "secret"}

	require.NoError(t, svc.Save(&settings))

	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
	assert.Equal(t, 1000, store.GetInt("chunking.max_chunk_size"))
	for _, key := range []string{"llm.api_key", "embedding.api_key"} {
		_, ok := store.Get(key)
		assert.False(t, ok, key)
	}
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	svc, _ := newTestSettings(nil)

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOpenAI, ""))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, 1536, settings.Embedding.Dimensions)
	assert.Empty(t, settings.Embedding.BaseURL)

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOllama, "mxbai-embed-large"))
	settings, err = svc.Get()
	require.NoError(t, err)
	assert.Equal(t, 1024, settings.Embedding.Dimensions)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)
}

func TestSettingsService_SetEmbeddingProvider_Rejects(t *testing.T) {
	svc, _ := newTestSettings(nil)

	assert.ErrorIs(t, svc.SetEmbeddingProvider(domain.AIProviderAnthropic, ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.SetEmbeddingProvider("bogus", ""), domain.ErrInvalidInput)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	svc, _ := newTestSettings(map[string]string{"ANTHROPIC_API_KEY": "sk-ant"})

	require.NoError(t, svc.SetLLMProvider(domain.AIProviderAnthropic, ""))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
	assert.Equal(t, "sk-ant", settings.LLM.APIKey)
	assert.True(t, settings.LLM.IsConfigured())
}

func TestSettingsService_Validate(t *testing.T) {
	svc, store := newTestSettings(nil)
	require.NoError(t, svc.Validate())

	_ = store.Set("llm.provider", "openai")
	assert.ErrorIs(t, svc.Validate(), domain.ErrInvalidInput)

	svc.lookupEnv = func(string) (string, bool) { return "sk", true }
	require.NoError(t, svc.Validate())

	_ = store.Set("retrieval.threshold", 1.5)
	assert.ErrorIs(t, svc.Validate(), domain.ErrInvalidInput)
	_ = store.Set("retrieval.threshold", 0.3)

	_ = store.Set("chunking.max_chunk_size", 0)
	assert.ErrorIs(t, svc.Validate(), domain.ErrInvalidInput)
}

func TestSettingsService_ValidateConfigs_NoValidator(t *testing.T) {
	svc, _ := newTestSettings(nil)

	assert.NoError(t, svc.ValidateEmbeddingConfig())
	assert.NoError(t, svc.ValidateLLMConfig())
	assert.Equal(t, domain.DefaultAppSettings(), svc.GetDefaults())
}

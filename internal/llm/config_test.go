package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderOpenRouter, config.Provider)
	assert.Equal(t, "mistralai/mistral-small-3.1-24b-instruct:free", config.GetModel(TierLite))
	assert.Equal(t, "nousresearch/deephermes-3-llama-3-8b-preview:free", config.GetModel(TierStandard))
	assert.Equal(t, OpenRouterBaseURL, config.BaseURL)
	assert.Equal(t, "AdVision", config.SiteName)
	assert.Equal(t, 0.7, config.Temperature)
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultGeminiConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
	assert.Equal(t, config.Temperature, newConfig.Temperature)
}

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		provider Provider
		apiKey   string
		model    string
		wantErr  bool
	}{
		{
			name:     "defaults to openrouter",
			env:      map[string]string{"OPENROUTER_API_KEY": "or-key"},
			provider: ProviderOpenRouter,
			apiKey:   "or-key",
			model:    "nousresearch/deephermes-3-llama-3-8b-preview:free",
		},
		{
			name:     "gemini with model override",
			env:      map[string]string{"LLM_PROVIDER": "Gemini", "GEMINI_API_KEY": "g-key", "LLM_MODEL": "gemini-custom"},
			provider: ProviderGemini,
			apiKey:   "g-key",
			model:    "gemini-custom",
		},
		{
			name:     "anthropic",
			env:      map[string]string{"LLM_PROVIDER": "anthropic", "ANTHROPIC_API_KEY": "a-key"},
			provider: ProviderAnthropic,
			apiKey:   "a-key",
			model:    "claude-haiku-4-5",
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"LLM_PROVIDER": "watson"},
			wantErr: true,
		},
		{
			name:    "bad temperature",
			env:     map[string]string{"LLM_TEMPERATURE": "hot"},
			wantErr: true,
		},
		{
			name:    "temperature out of range",
			env:     map[string]string{"LLM_TEMPERATURE": "3"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"LLM_PROVIDER", "OPENROUTER_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY", "LLM_MODEL", "LLM_TEMPERATURE", "LLM_MAX_TOKENS", "SITE_URL", "SITE_NAME", "OPENROUTER_BASE_URL"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := ConfigFromEnv()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.provider, cfg.Provider)
			assert.Equal(t, tt.apiKey, cfg.APIKey)
			assert.Equal(t, tt.model, cfg.GetModel(TierStandard))
		})
	}
}

func TestNormalize_OpenRouterBaseURL(t *testing.T) {
	cfg := &Config{Provider: ProviderOpenRouter, BaseURL: "http://localhost:9999/api", MaxTokens: -1}
	require.NoError(t, cfg.normalize())

	assert.Equal(t, "http://localhost:9999/api/", cfg.BaseURL)
	assert.Equal(t, defaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, "http://localhost:3000", cfg.SiteURL)
	assert.Equal(t, "AdVision", cfg.SiteName)
}

func TestModelTierConstants(t *testing.T) {
	assert.Equal(t, ModelTier("lite"), TierLite)
	assert.Equal(t, ModelTier("standard"), TierStandard)
	assert.Equal(t, ModelTier("advanced"), TierAdvanced)
}

// Package llm provides completion API configuration and client abstractions
// over the supported providers.
package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short conversational replies and design chat
	TierLite ModelTier = "lite"
	// TierStandard is for ad copy, keyword and audience generation
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long structured output
	TierAdvanced ModelTier = "advanced"
)

// Provider represents a completion API provider
type Provider string

// Provider constants define supported completion providers
const (
	// ProviderOpenRouter is the OpenAI-compatible OpenRouter gateway
	ProviderOpenRouter Provider = "openrouter"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderAnthropic is the Anthropic/Claude provider
	ProviderAnthropic Provider = "anthropic"
)

// OpenRouterBaseURL is the default OpenRouter API root.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1/"

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1024
	defaultSiteURL     = "http://localhost:3000"
	defaultSiteName    = "AdVision"
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	APIKey   string

	// BaseURL overrides the provider endpoint. Only used by OpenRouter.
	BaseURL string
	// SiteURL and SiteName are sent to OpenRouter as attribution headers.
	SiteURL  string
	SiteName string

	Temperature float64
	MaxTokens   int
}

// DefaultConfig returns the default configuration (OpenRouter)
func DefaultConfig() *Config {
	return DefaultOpenRouterConfig()
}

// DefaultOpenRouterConfig returns the default OpenRouter configuration
func DefaultOpenRouterConfig() *Config {
	return &Config{
		Provider: ProviderOpenRouter,
		Models: map[ModelTier]string{
			TierLite:     "mistralai/mistral-small-3.1-24b-instruct:free",
			TierStandard: "nousresearch/deephermes-3-llama-3-8b-preview:free",
			TierAdvanced: "meta-llama/llama-3.3-70b-instruct:free",
		},
		BaseURL:     OpenRouterBaseURL,
		SiteURL:     defaultSiteURL,
		SiteName:    defaultSiteName,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
}

// DefaultAnthropicConfig returns the default Anthropic configuration
func DefaultAnthropicConfig() *Config {
	return &Config{
		Provider: ProviderAnthropic,
		Models: map[ModelTier]string{
			TierLite:     "claude-3-5-haiku-latest",
			TierStandard: "claude-haiku-4-5",
			TierAdvanced: "claude-sonnet-4-5",
		},
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
}

// DefaultConfigFor returns the default configuration for a provider.
func DefaultConfigFor(p Provider) (*Config, error) {
	switch p {
	case ProviderOpenRouter, "":
		return DefaultOpenRouterConfig(), nil
	case ProviderGemini:
		return DefaultGeminiConfig(), nil
	case ProviderAnthropic:
		return DefaultAnthropicConfig(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", p)
	}
}

// ConfigFromEnv builds a configuration from LLM_PROVIDER, the provider's API
// key variable, LLM_MODEL, LLM_TEMPERATURE, LLM_MAX_TOKENS, SITE_URL and
// SITE_NAME.
func ConfigFromEnv() (*Config, error) {
	provider := Provider(strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))))
	cfg, err := DefaultConfigFor(provider)
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case ProviderOpenRouter:
		cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
		if v := os.Getenv("OPENROUTER_BASE_URL"); v != "" {
			cfg.BaseURL = v
		}
	case ProviderGemini:
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	case ProviderAnthropic:
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	if model := strings.TrimSpace(os.Getenv("LLM_MODEL")); model != "" {
		for tier := range cfg.Models {
			cfg.Models[tier] = model
		}
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		cfg.SiteURL = v
	}
	if v := os.Getenv("SITE_NAME"); v != "" {
		cfg.SiteName = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM_TEMPERATURE: %w", err)
		}
		cfg.Temperature = t
	}
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LLM_MAX_TOKENS: %w", err)
		}
		cfg.MaxTokens = n
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Provider == ProviderOpenRouter {
		if c.BaseURL == "" {
			c.BaseURL = OpenRouterBaseURL
		}
		if !strings.HasSuffix(c.BaseURL, "/") {
			c.BaseURL += "/"
		}
		if c.SiteURL == "" {
			c.SiteURL = defaultSiteURL
		}
		if c.SiteName == "" {
			c.SiteName = defaultSiteName
		}
	}
	return nil
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}

// Package config provides configuration loading and validation for the
// AdVision CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the optional configuration file. All fields are optional;
// environment variables and CLI flags take precedence over it.
type Config struct {
	DatabaseURL string    `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	Port        int       `json:"port,omitempty" yaml:"port,omitempty"`
	LLM         LLMConfig `json:"llm,omitempty" yaml:"llm,omitempty"`

	RedisURL string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	CacheTTL string `json:"cache_ttl,omitempty" yaml:"cache_ttl,omitempty"` // Go duration, e.g. "12h"

	ChromePath string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	PDFTimeout string `json:"pdf_timeout,omitempty" yaml:"pdf_timeout,omitempty"`

	CORSAllowedOrigins []string `json:"cors_allowed_origins,omitempty" yaml:"cors_allowed_origins,omitempty"`
	Verbose            bool     `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// LLMConfig selects and authenticates the completion provider.
type LLMConfig struct {
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"` // openrouter, gemini or anthropic
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	SiteURL  string `json:"site_url,omitempty" yaml:"site_url,omitempty"`
	SiteName string `json:"site_name,omitempty" yaml:"site_name,omitempty"`
}

// LoadConfig loads configuration from a YAML (.yaml, .yml) or JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "", "openrouter", "gemini", "anthropic":
	default:
		return fmt.Errorf("config error: unknown llm provider %q", c.LLM.Provider)
	}
	for name, v := range map[string]string{"cache_ttl": c.CacheTTL, "pdf_timeout": c.PDFTimeout} {
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err != nil || d <= 0 {
			return fmt.Errorf("config error: '%s' must be a positive duration, got %q", name, v)
		}
	}
	if c.ChromePath != "" {
		if _, err := os.Stat(c.ChromePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: chrome binary not found: %s", c.ChromePath)
		}
	}
	return nil
}

// Env returns the environment variables this file configures, keyed by
// the names the rest of the application reads.
func (c *Config) Env() map[string]string {
	env := map[string]string{
		"DATABASE_URL":         c.DatabaseURL,
		"LLM_PROVIDER":         c.LLM.Provider,
		"LLM_MODEL":            c.LLM.Model,
		"SITE_URL":             c.LLM.SiteURL,
		"SITE_NAME":            c.LLM.SiteName,
		"REDIS_URL":            c.RedisURL,
		"LLM_CACHE_TTL":        c.CacheTTL,
		"CHROME_PATH":          c.ChromePath,
		"PDF_TIMEOUT":          c.PDFTimeout,
		"CORS_ALLOWED_ORIGINS": strings.Join(c.CORSAllowedOrigins, ","),
	}
	if c.Port > 0 {
		env["PORT"] = strconv.Itoa(c.Port)
	}
	if c.LLM.APIKey != "" {
		switch strings.ToLower(c.LLM.Provider) {
		case "gemini":
			env["GEMINI_API_KEY"] = c.LLM.APIKey
		case "anthropic":
			env["ANTHROPIC_API_KEY"] = c.LLM.APIKey
		default:
			env["OPENROUTER_API_KEY"] = c.LLM.APIKey
		}
	}
	for k, v := range env {
		if v == "" {
			delete(env, k)
		}
	}
	return env
}

// Export sets every configured variable that is not already present in the
// process environment, so explicit environment settings win over the file.
func (c *Config) Export() error {
	for k, v := range c.Env() {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", k, err)
		}
	}
	return nil
}

// DurationFromEnv parses a Go duration from key, falling back to def when
// unset.
func DurationFromEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %s", key, v)
	}
	return d, nil
}

package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Client is an abstraction over completion providers
type Client interface {
	// GenerateContent sends a single user prompt and returns the reply text
	GenerateContent(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error)
	// GenerateJSON is GenerateContent with code fences stripped from the reply
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error)
	// Chat sends a whole conversation and returns the assistant reply
	Chat(ctx context.Context, messages []Message, tier ModelTier, opts ...Option) (string, error)
	// GetModel returns the provider model name for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// Role is the author of a chat message.
type Role string

// Message roles
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage is shorthand for a user turn.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Option adjusts a single completion request.
type Option func(*request)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(r *request) { r.temperature = t }
}

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int) Option {
	return func(r *request) {
		if n > 0 {
			r.maxTokens = n
		}
	}
}

// WithCache marks the request as safe to answer from a response cache.
// Requests whose callers expect a fresh reply on every call leave it unset.
func WithCache() Option {
	return func(r *request) { r.cacheable = true }
}

// request is the provider-neutral form of a completion call.
type request struct {
	model       string
	messages    []Message
	temperature float64
	maxTokens   int
	json        bool
	cacheable   bool
}

func newRequest(cfg *Config, tier ModelTier, messages []Message, opts []Option) request {
	r := request{
		model:       cfg.GetModel(tier),
		messages:    messages,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// split returns the concatenated system turns and the remaining messages.
func (r request) split() (string, []Message) {
	var system string
	rest := make([]Message, 0, len(r.messages))
	for _, m := range r.messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}

// backend performs one completion call against a provider.
type backend interface {
	complete(ctx context.Context, req request) (string, error)
	close() error
}

// providerClient adapts a backend to the Client interface.
type providerClient struct {
	config  *Config
	backend backend
	logger  *zap.Logger
}

// NewClient creates a new completion client based on configuration
func NewClient(ctx context.Context, config *Config, logger *zap.Logger) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required for provider %s", config.Provider)
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}

	var (
		b   backend
		err error
	)
	switch config.Provider {
	case ProviderGemini:
		b, err = newGeminiBackend(ctx, config)
	case ProviderAnthropic:
		b = newAnthropicBackend(config)
	case ProviderOpenRouter, "":
		b = newOpenRouterBackend(config)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &providerClient{
		config:  config,
		backend: b,
		logger:  logger.With(zap.String("provider", string(config.Provider))),
	}, nil
}

func (c *providerClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error) {
	return c.Chat(ctx, []Message{UserMessage(prompt)}, tier, opts...)
}

func (c *providerClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error) {
	req := newRequest(c.config, tier, []Message{UserMessage(prompt)}, opts)
	req.json = true
	text, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *providerClient) Chat(ctx context.Context, messages []Message, tier ModelTier, opts ...Option) (string, error) {
	return c.do(ctx, newRequest(c.config, tier, messages, opts))
}

func (c *providerClient) do(ctx context.Context, req request) (string, error) {
	if req.model == "" {
		return "", fmt.Errorf("no model configured for provider %s", c.config.Provider)
	}
	if len(req.messages) == 0 {
		return "", fmt.Errorf("at least one message is required")
	}

	start := time.Now()
	text, err := c.backend.complete(ctx, req)
	log := c.logger.With(
		zap.String("model", req.model),
		zap.Int("messages", len(req.messages)),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		log.Warn("completion failed", zap.Error(err))
		return "", err
	}
	log.Debug("completion succeeded", zap.Int("reply_len", len(text)))
	return text, nil
}

func (c *providerClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

func (c *providerClient) Close() error {
	return c.backend.close()
}

package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openRouterBackend talks to OpenRouter through its OpenAI-compatible chat
// completions endpoint.
type openRouterBackend struct {
	client openai.Client
}

func newOpenRouterBackend(cfg *Config) *openRouterBackend {
	return &openRouterBackend{
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL),
			option.WithHeader("HTTP-Referer", cfg.SiteURL),
			option.WithHeader("X-Title", cfg.SiteName),
			option.WithMaxRetries(0),
		),
	}
}

func (b *openRouterBackend) complete(ctx context.Context, req request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.messages))
	for _, m := range req.messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.model),
		Messages:    messages,
		Temperature: openai.Float(req.temperature),
		MaxTokens:   openai.Int(int64(req.maxTokens)),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &APIError{Provider: ProviderOpenRouter, StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", fmt.Errorf("openrouter request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in openrouter response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (b *openRouterBackend) close() error {
	return nil
}

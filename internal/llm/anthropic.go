package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicBackend struct {
	client anthropic.Client
}

func newAnthropicBackend(cfg *Config) *anthropicBackend {
	return &anthropicBackend{
		client: anthropic.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithMaxRetries(0),
		),
	}
}

func (b *anthropicBackend) complete(ctx context.Context, req request) (string, error) {
	system, turns := req.split()
	if len(turns) == 0 {
		return "", fmt.Errorf("anthropic requires at least one user message")
	}

	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, m := range turns {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.model),
		MaxTokens:   int64(req.maxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(req.temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := b.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &APIError{Provider: ProviderAnthropic, StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text in anthropic response")
	}
	return sb.String(), nil
}

func (b *anthropicBackend) close() error {
	return nil
}

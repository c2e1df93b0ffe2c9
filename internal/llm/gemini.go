package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// geminiBackend implements completions for Google Gemini
type geminiBackend struct {
	client *genai.Client
}

func newGeminiBackend(ctx context.Context, cfg *Config) (*geminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiBackend{client: client}, nil
}

func (b *geminiBackend) complete(ctx context.Context, req request) (string, error) {
	system, turns := req.split()
	if len(turns) == 0 {
		return "", fmt.Errorf("gemini requires at least one user message")
	}

	model := b.client.GenerativeModel(req.model)
	model.SetTemperature(float32(req.temperature))
	model.SetMaxOutputTokens(int32(req.maxTokens))
	if req.json {
		model.ResponseMIMEType = "application/json"
	}
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}

	session := model.StartChat()
	for _, m := range turns[:len(turns)-1] {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(turns[len(turns)-1].Content))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", &APIError{Provider: ProviderGemini, StatusCode: apiErr.Code, Err: err}
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

func (b *geminiBackend) close() error {
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

package ai

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/fscarponi/characterai/internal/domain"
)

// GeminiClient talks to the Gemini API. The SDK client is created on first use.
type GeminiClient struct {
	apiKey string
	params Params

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(apiKey string, params Params) *GeminiClient {
	return &GeminiClient{apiKey: apiKey, params: params}
}

func (g *GeminiClient) sdk(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		g.client, g.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return g.client, g.initErr
}

// Complete implements Completer.
func (g *GeminiClient) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	client, err := g.sdk(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: gemini client: %w", ErrUnavailable, err)
	}

	system, rest := splitSystem(messages)
	config := &genai.GenerateContentConfig{}
	if g.params.Temperature > 0 {
		temp := float32(g.params.Temperature)
		config.Temperature = &temp
	}
	if g.params.TopP > 0 {
		topP := float32(g.params.TopP)
		config.TopP = &topP
	}
	if g.params.MaxTokens > 0 {
		//nolint:gosec // bounded by configuration
		config.MaxOutputTokens = int32(g.params.MaxTokens)
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := client.Models.GenerateContent(ctx, g.params.Model, toGeminiContents(rest), config)
	if err != nil {
		return "", fmt.Errorf("%w: gemini generate content: %w", ErrUnavailable, err)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("%w: gemini generate content: empty response", ErrUnavailable)
	}
	return text, nil
}

func toGeminiContents(messages []domain.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		var role genai.Role = genai.RoleUser
		if m.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(m.Content, role))
	}
	return out
}

package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/fscarponi/characterai/internal/domain"
)

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client anthropic.Client
	params Params
}

// NewAnthropicClient creates an Anthropic client. An empty baseURL keeps the SDK default.
func NewAnthropicClient(apiKey, baseURL string, params Params, opts ...option.RequestOption) *AnthropicClient {
	all := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		all = append(all, option.WithBaseURL(baseURL))
	}
	all = append(all, opts...)
	return &AnthropicClient{
		client: anthropic.NewClient(all...),
		params: params,
	}
}

// Complete implements Completer. System messages are sent as the system parameter.
func (c *AnthropicClient) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	system, rest := splitSystem(messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.params.Model),
		Messages:  toAnthropicMessages(rest),
		MaxTokens: int64(c.params.MaxTokens),
	}
	if params.MaxTokens <= 0 {
		params.MaxTokens = int64(DefaultParams().MaxTokens)
	}
	if c.params.Temperature > 0 {
		params.Temperature = anthropic.Float(c.params.Temperature)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic messages: %w", ErrUnavailable, err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return "", fmt.Errorf("%w: anthropic messages: empty content", ErrUnavailable)
	}

	var b strings.Builder
	for i := range resp.Content {
		if block := &resp.Content[i]; block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: anthropic messages: no text content", ErrUnavailable)
	}
	return b.String(), nil
}

func toAnthropicMessages(messages []domain.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == domain.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}

package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/fscarponi/characterai/internal/domain"
)

// HuggingFaceBaseURL returns the OpenAI-compatible endpoint of a hosted Hugging Face model.
func HuggingFaceBaseURL(model string) string {
	return "https://api-inference.huggingface.co/models/" + model + "/v1"
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client openai.Client
	params Params
}

// NewOpenAIClient creates a client for baseURL. An empty baseURL targets the
// Hugging Face endpoint of params.Model.
func NewOpenAIClient(apiKey, baseURL string, params Params, opts ...option.RequestOption) *OpenAIClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = HuggingFaceBaseURL(params.Model)
	}
	all := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	}, opts...)
	return &OpenAIClient{
		client: openai.NewClient(all...),
		params: params,
	}
}

// Complete implements Completer.
func (c *OpenAIClient) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	req := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.params.Model),
		Messages: toOpenAIMessages(messages),
	}
	if c.params.Temperature > 0 {
		req.Temperature = openai.Float(c.params.Temperature)
	}
	if c.params.MaxTokens > 0 {
		req.MaxTokens = openai.Int(int64(c.params.MaxTokens))
	}
	if c.params.TopP > 0 {
		req.TopP = openai.Float(c.params.TopP)
	}

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: openai chat completion: %w", ErrUnavailable, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai chat completion: empty choices", ErrUnavailable)
	}
	reply := resp.Choices[0].Message.Content
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("%w: openai chat completion: empty content", ErrUnavailable)
	}
	return reply, nil
}

func toOpenAIMessages(messages []domain.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case domain.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// Package ai is the language-model boundary: provider clients, prompt
// translation and the instrumentation wrapper around them.
package ai

import (
	"context"
	"errors"

	"github.com/fscarponi/characterai/internal/domain"
)

var (
	// ErrUnavailable is returned when a completion cannot be obtained: transport
	// failure, non-2xx status, timeout or a malformed response.
	ErrUnavailable = errors.New("ai service unavailable")
	// ErrTranslationUnavailable is returned when a prompt could not be translated.
	ErrTranslationUnavailable = errors.New("translation unavailable")
)

// Completer produces the assistant reply for an ordered message history.
type Completer interface {
	Complete(ctx context.Context, messages []domain.Message) (string, error)
}

// Params are the sampling parameters sent with each request.
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// DefaultParams mirrors the Hugging Face defaults the service was tuned with.
func DefaultParams() Params {
	return Params{
		Model:       "mistralai/Mistral-Nemo-Instruct-2407",
		Temperature: 0.5,
		MaxTokens:   2048,
		TopP:        0.7,
	}
}

// splitSystem separates system messages from the conversation for providers
// that take the system prompt as a dedicated parameter.
func splitSystem(messages []domain.Message) (string, []domain.Message) {
	var system string
	rest := make([]domain.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == domain.RoleSystem {
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

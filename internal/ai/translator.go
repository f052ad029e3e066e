package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/fscarponi/characterai/internal/domain"
)

// Translator localizes prompts through a Completer.
type Translator struct {
	completer Completer
}

// NewTranslator creates a Translator backed by completer.
func NewTranslator(completer Completer) *Translator {
	return &Translator{completer: completer}
}

// Translate asks the model to translate text into language. A failed call or
// an empty answer yields ErrTranslationUnavailable.
func (t *Translator) Translate(ctx context.Context, text, language string) (string, error) {
	reply, err := t.completer.Complete(ctx, []domain.Message{{
		Role:    domain.RoleUser,
		Content: "Translate in " + language + " the following text: " + text,
	}})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTranslationUnavailable, err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("%w: empty translation", ErrTranslationUnavailable)
	}
	return reply, nil
}

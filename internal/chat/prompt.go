// Package chat owns the rolling AI conversation context of one persona chat:
// the system prompt, the message history and the turn rollback rules.
package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fscarponi/characterai/internal/domain"
)

const guidelines = `Guidelines:
- Stay in character and use first person
- Express actions in *asterisks*
- Use character-specific speech patterns
- Reference your background naturally
- Show personality through responses
- Maintain consistent behavior
- For direct questions, please provide direct and concise answers
- Don't be verbose
- Don't repeat yourself`

const roleplayOpening = "Roleplay is now starting! Don't leave your character!"

// Translator localizes an assembled prompt into another language.
type Translator interface {
	Translate(ctx context.Context, text, language string) (string, error)
}

// BuildSystemPrompt renders the untranslated role-play prompt for a character.
// List attributes keep their insertion order; empty lists are left out.
func BuildSystemPrompt(c domain.Character) string {
	var b strings.Builder
	b.WriteString(guidelines)
	b.WriteString("\n\nYou are roleplaying as a character with these traits:")
	b.WriteString("\nName: " + c.Name)
	b.WriteString("\nRole: " + c.Role)
	b.WriteString("\nPersonality: " + c.Personality)
	b.WriteString("\nBackground: " + c.Background)
	writeList(&b, "Knowledge", c.Knowledge)
	writeList(&b, "Goals", c.Goals)
	writeList(&b, "Secrets", c.Secrets)
	writeList(&b, "Connections", c.Connections)
	b.WriteString("\n\n" + roleplayOpening)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + title + ":")
	for _, item := range items {
		b.WriteString("\n- " + item)
	}
}

// PromptBuilder assembles system prompts and translates them when the
// conversation language differs from the default one.
type PromptBuilder struct {
	translator      Translator
	defaultLanguage string
	logger          *slog.Logger
}

// NewPromptBuilder creates a prompt builder. A nil translator disables localization.
func NewPromptBuilder(translator Translator, defaultLanguage string, logger *slog.Logger) *PromptBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &PromptBuilder{
		translator:      translator,
		defaultLanguage: normalizeLanguage(defaultLanguage),
		logger:          logger,
	}
}

// Build returns the system prompt for the character in the requested language.
// A failed translation falls back to the untranslated prompt.
func (p *PromptBuilder) Build(ctx context.Context, c domain.Character, language string) string {
	prompt := BuildSystemPrompt(c)
	language = normalizeLanguage(language)
	if p == nil || p.translator == nil || language == "" || language == p.defaultLanguage {
		return prompt
	}

	translated, err := p.translator.Translate(ctx, prompt, language)
	if err != nil {
		p.logger.Warn("Prompt translation failed, using untranslated prompt",
			"character", c.Name,
			"language", language,
			"error", err,
		)
		return prompt
	}
	if strings.TrimSpace(translated) == "" {
		return prompt
	}
	return translated
}

func normalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}

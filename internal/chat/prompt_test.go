package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fscarponi/characterai/internal/domain"
)

func TestBuildSystemPromptRendersListsInOrder(t *testing.T) {
	c := eldric()
	c.Knowledge = []string{"shadow manipulation", "forbidden texts", "shadow manipulation"}
	c.Connections = []string{"Shadow Conclave"}

	prompt := BuildSystemPrompt(c)

	assert.Contains(t, prompt, "Knowledge:\n- shadow manipulation\n- forbidden texts\n- shadow manipulation")
	assert.Contains(t, prompt, "Connections:\n- Shadow Conclave")
	assert.NotContains(t, prompt, "Secrets:")
	assert.NotContains(t, prompt, "Goals:")
}

func TestBuildSystemPromptIncludesGuidelinesAndTraits(t *testing.T) {
	prompt := BuildSystemPrompt(eldric())

	for _, want := range []string{
		"Stay in character and use first person",
		"*asterisks*",
		"direct and concise answers",
		"Name: Eldric",
		"Role: shadow mage",
		"Personality: calculating",
		"Background: dark history",
	} {
		assert.Contains(t, prompt, want)
	}
	assert.True(t, strings.HasSuffix(prompt, roleplayOpening))
}

func TestPromptBuilderSkipsTranslationForDefaultLanguage(t *testing.T) {
	tr := &recordingTranslator{}
	b := NewPromptBuilder(tr, "English", nil)

	got := b.Build(t.Context(), domain.Character{Name: "Thorne"}, " ENGLISH ")
	assert.Equal(t, 0, tr.calls)
	assert.Contains(t, got, "Name: Thorne")
}

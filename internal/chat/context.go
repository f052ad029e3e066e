package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fscarponi/characterai/internal/domain"
)

// ErrNoPendingTurn is returned by CompleteTurn when the history does not end
// with a user message awaiting a reply.
var ErrNoPendingTurn = errors.New("no pending user turn")

// CompleteFunc is the AI boundary: it receives the ordered history and
// returns the assistant reply.
type CompleteFunc func(ctx context.Context, messages []domain.Message) (string, error)

type fingerprint struct {
	character string
	language  string
}

// Context is the rolling message history of one persona conversation.
//
// The first message, when present, is the system prompt for the current
// (character, language) fingerprint. History only ever holds complete turns
// plus, between AppendUserTurn and CompleteTurn, a single pending user message.
// Callers must not run two turns concurrently on the same Context.
type Context struct {
	mu          sync.Mutex
	messages    []domain.Message
	fingerprint fingerprint
	prompts     *PromptBuilder
	window      *Window
}

// NewContext creates an empty context. Both arguments may be nil.
func NewContext(prompts *PromptBuilder, window *Window) *Context {
	return &Context{prompts: prompts, window: window}
}

// EnsureInitialized installs a fresh system prompt and discards prior history
// when the character or language differs from the current fingerprint.
// It reports whether the context was regenerated.
func (c *Context) EnsureInitialized(ctx context.Context, character domain.Character, language string) bool {
	want := fingerprint{character: character.Name, language: normalizeLanguage(language)}

	c.mu.Lock()
	current := len(c.messages) > 0 && c.fingerprint == want
	c.mu.Unlock()
	if current {
		return false
	}

	var prompt string
	if c.prompts != nil {
		prompt = c.prompts.Build(ctx, character, want.language)
	} else {
		prompt = BuildSystemPrompt(character)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = []domain.Message{{Role: domain.RoleSystem, Content: prompt}}
	c.fingerprint = want
	return true
}

// AppendUserTurn appends a user message to the history.
func (c *Context) AppendUserTurn(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, domain.Message{Role: domain.RoleUser, Content: text})
}

// CompleteTurn sends the history to the AI boundary. On success the reply is
// appended and returned; on failure the pending user message is removed and
// the error is returned unchanged in its chain.
func (c *Context) CompleteTurn(ctx context.Context, complete CompleteFunc) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.messages)
	if n == 0 || c.messages[n-1].Role != domain.RoleUser {
		return "", ErrNoPendingTurn
	}

	request := make([]domain.Message, n)
	copy(request, c.messages)
	request = c.window.Select(request)

	reply, err := complete(ctx, request)
	if err != nil {
		c.messages = c.messages[:n-1]
		return "", fmt.Errorf("complete turn: %w", err)
	}

	c.messages = append(c.messages, domain.Message{Role: domain.RoleAssistant, Content: reply})
	c.messages = c.window.Trim(c.messages)
	return reply, nil
}

// Reset clears the history. The next EnsureInitialized regenerates the prompt.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.fingerprint = fingerprint{}
}

// Messages returns a copy of the ordered history.
func (c *Context) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the history.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

package session

import (
	"errors"
	"sync"

	"github.com/fscarponi/characterai/internal/chat"
	"github.com/fscarponi/characterai/internal/domain"
)

// ErrNoCharacter is returned when chat mode is requested without a selected character.
var ErrNoCharacter = errors.New("no character selected")

// Session is the in-memory state of one conversation.
type Session struct {
	// turn serializes whole events for this conversation.
	turn sync.Mutex

	mu       sync.RWMutex
	flow     Flow
	selected *domain.Character
	language string
	chatMode bool

	newContext func() *chat.Context
	context    *chat.Context
}

func newSession(language string, newContext func() *chat.Context) *Session {
	return &Session{
		flow:       enter(StateNone),
		language:   language,
		newContext: newContext,
	}
}

// Lock acquires the per-conversation turn lock and returns its release func.
func (s *Session) Lock() func() {
	s.turn.Lock()
	return s.turn.Unlock
}

// Flow returns a copy of the creation flow.
func (s *Session) Flow() Flow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return keep(s.flow)
}

// SetFlow replaces the creation flow. Pending fields are discarded when the
// new state is NONE or an initial creation step.
func (s *Session) SetFlow(f Flow) {
	next := keep(f)
	if next.State.clearsPending() {
		next.Pending = Fields{}
	}
	s.mu.Lock()
	s.flow = next
	s.mu.Unlock()
}

func (s *Session) CreationState() CreationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flow.State
}

// SetCreationState moves the flow to state, keeping pending fields unless the
// state requires them cleared.
func (s *Session) SetCreationState(state CreationState) {
	s.SetFlow(Flow{State: state, Pending: s.Pending()})
}

// Pending returns a copy of the fields collected so far.
func (s *Session) Pending() Fields {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flow.Pending.Clone()
}

// SelectedCharacter returns a copy of the selected character, if any.
func (s *Session) SelectedCharacter() (domain.Character, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return domain.Character{}, false
	}
	return s.selected.Clone(), true
}

// SetSelectedCharacter selects c. A nil character clears the selection and
// leaves chat mode.
func (s *Session) SetSelectedCharacter(c *domain.Character) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		s.selected = nil
		s.chatMode = false
		return
	}
	cp := c.Clone()
	s.selected = &cp
}

func (s *Session) PreferredLanguage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

// SetPreferredLanguage stores language lower-cased; blank input is ignored.
func (s *Session) SetPreferredLanguage(language string) {
	lang := normalize(language)
	if lang == "" {
		return
	}
	s.mu.Lock()
	s.language = lang
	s.mu.Unlock()
}

func (s *Session) ChatModeActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chatMode
}

// SetChatMode toggles chat mode. Enabling it requires a selected character.
func (s *Session) SetChatMode(active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if active && s.selected == nil {
		return ErrNoCharacter
	}
	s.chatMode = active
	return nil
}

// Context returns the conversation context, creating it on first use.
func (s *Session) Context() *chat.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.context == nil {
		if s.newContext != nil {
			s.context = s.newContext()
		} else {
			s.context = chat.NewContext(nil, nil)
		}
	}
	return s.context
}

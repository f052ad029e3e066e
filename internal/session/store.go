package session

import (
	"sync"

	"github.com/fscarponi/characterai/internal/chat"
	"github.com/fscarponi/characterai/internal/domain"
)

// Store is the registry of sessions keyed by conversation identifier.
// Sessions are created on first contact and live for the process lifetime.
type Store struct {
	mu              sync.Mutex
	sessions        map[string]*Session
	defaultLanguage string
	newContext      func() *chat.Context
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultLanguage sets the language new sessions start with.
func WithDefaultLanguage(language string) Option {
	return func(s *Store) {
		if lang := normalize(language); lang != "" {
			s.defaultLanguage = lang
		}
	}
}

// WithContextFactory sets how sessions build their conversation context.
func WithContextFactory(fn func() *chat.Context) Option {
	return func(s *Store) {
		s.newContext = fn
	}
}

// NewStore creates an empty session registry.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions:        make(map[string]*Session),
		defaultLanguage: DefaultLanguage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the session for id, creating a default one if absent.
func (s *Store) GetOrCreate(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = newSession(s.defaultLanguage, s.newContext)
		s.sessions[id] = sess
	}
	return sess
}

// Get returns the session for id without creating it.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Len returns the number of known sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Lock serializes event handling for one conversation.
func (s *Store) Lock(id string) func() {
	return s.GetOrCreate(id).Lock()
}

func (s *Store) CreationState(id string) CreationState {
	return s.GetOrCreate(id).CreationState()
}

func (s *Store) SetCreationState(id string, state CreationState) {
	s.GetOrCreate(id).SetCreationState(state)
}

func (s *Store) Pending(id string) Fields {
	return s.GetOrCreate(id).Pending()
}

func (s *Store) SelectedCharacter(id string) (domain.Character, bool) {
	return s.GetOrCreate(id).SelectedCharacter()
}

func (s *Store) SetSelectedCharacter(id string, c *domain.Character) {
	s.GetOrCreate(id).SetSelectedCharacter(c)
}

func (s *Store) PreferredLanguage(id string) string {
	return s.GetOrCreate(id).PreferredLanguage()
}

func (s *Store) SetPreferredLanguage(id, language string) {
	s.GetOrCreate(id).SetPreferredLanguage(language)
}

func (s *Store) ChatModeActive(id string) bool {
	return s.GetOrCreate(id).ChatModeActive()
}

func (s *Store) SetChatMode(id string, active bool) error {
	return s.GetOrCreate(id).SetChatMode(active)
}

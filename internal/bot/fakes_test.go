package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fscarponi/characterai/internal/domain"
	"github.com/fscarponi/characterai/internal/store"
)

type fakeRepo struct {
	mu         sync.Mutex
	characters []domain.Character
	added      []domain.Character
	addErr     error
	listErr    error
}

func (r *fakeRepo) GetAll(context.Context) ([]domain.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.Character, len(r.characters))
	copy(out, r.characters)
	return out, nil
}

func (r *fakeRepo) GetByName(_ context.Context, name string) (*domain.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.characters {
		if c.Name == name {
			cp := c.Clone()
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) Add(_ context.Context, c domain.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addErr != nil {
		return r.addErr
	}
	for _, existing := range r.characters {
		if existing.Name == c.Name {
			return fmt.Errorf("%w: %q", store.ErrDuplicateName, c.Name)
		}
	}
	r.characters = append(r.characters, c)
	r.added = append(r.added, c)
	return nil
}

func (r *fakeRepo) DeleteByName(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.characters {
		if c.Name == name {
			r.characters = append(r.characters[:i], r.characters[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *fakeRepo) DeleteAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.characters))
	r.characters = nil
	return n, nil
}

func (r *fakeRepo) Seed(_ context.Context, cs []domain.Character) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.characters) > 0 {
		return 0, nil
	}
	r.characters = append(r.characters, cs...)
	return len(cs), nil
}

func (r *fakeRepo) Ping(context.Context) error { return nil }
func (r *fakeRepo) Close() error               { return nil }

var errAIDown = errors.New("ai down")

type fakeCompleter struct {
	mu    sync.Mutex
	fail  bool
	calls [][]domain.Message
}

func (f *fakeCompleter) Complete(_ context.Context, messages []domain.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)
	if f.fail {
		return "", errAIDown
	}
	return "reply to " + messages[len(messages)-1].Content, nil
}

func (f *fakeCompleter) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func seededRepo() *fakeRepo {
	return &fakeRepo{characters: []domain.Character{
		{Name: "Eldric Shadowweaver", Role: "shadow mage", Background: "A former court mage."},
		{Name: "Luna Starweaver", Role: "celestial oracle", Background: "Born under a convergence."},
	}}
}

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fscarponi/characterai/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "characters.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func eldric() domain.Character {
	return domain.Character{
		Name:        "Eldric",
		Role:        "shadow mage",
		Personality: "calculating",
		Background:  "dark history",
		Knowledge:   []string{},
		Secrets:     []string{},
		Goals:       []string{},
		Connections: []string{},
	}
}

func TestAddAndGetByName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	c := eldric()
	c.Knowledge = []string{"shadows", "illusions"}
	require.NoError(t, s.Add(ctx, c))

	got, err := s.GetByName(ctx, "Eldric")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c, *got)
}

func TestGetByNameMissingReturnsNil(t *testing.T) {
	got, err := newTestStore(t).GetByName(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAddDuplicateName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Add(ctx, eldric()))

	err := s.Add(ctx, eldric())
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestNilListsAreStoredEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Add(ctx, domain.Character{Name: "Bare"}))

	got, err := s.GetByName(ctx, "Bare")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Knowledge)
	assert.Equal(t, []string{}, got.Connections)
}

func TestGetAllKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, name := range []string{"Zed", "Amy", "Max"} {
		require.NoError(t, s.Add(ctx, domain.Character{Name: name}))
	}

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, c := range all {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Zed", "Amy", "Max"}, names)
}

func TestDeleteByName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Add(ctx, eldric()))

	require.NoError(t, s.DeleteByName(ctx, "Eldric"))
	got, err := s.GetByName(ctx, "Eldric")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, s.DeleteByName(ctx, "Eldric"), ErrNotFound)
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Add(ctx, eldric()))
	require.NoError(t, s.Add(ctx, domain.Character{Name: "Luna"}))

	n, err := s.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSeedOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	n, err := s.Seed(ctx, DefaultCharacters())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.Seed(ctx, []domain.Character{{Name: "Another"}})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Eldric Shadowweaver", all[0].Name)
	assert.Equal(t, "Luna Starweaver", all[1].Name)
	assert.Equal(t, "Thorne Ironheart", all[2].Name)
}

func TestDataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "characters.db")

	s, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, eldric()))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetByName(ctx, "Eldric")
	require.NoError(t, err)
	assert.NotNil(t, got)
	require.NoError(t, s.Ping(ctx))
}

func TestSeedFromCatalogueFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: Custom
  role: bard
  personality: cheerful
  background: wandering
  goals: [sing]
`), 0o600))

	s := newTestStore(t)
	n, err := SeedFromCatalogue(ctx, s, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.GetByName(ctx, "Custom")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"sing"}, got.Goals)
	assert.Equal(t, []string{}, got.Secrets)
}

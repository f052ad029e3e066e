package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCharacters(t *testing.T) {
	characters := DefaultCharacters()
	require.Len(t, characters, 3)

	thorne := characters[2]
	assert.Equal(t, "Thorne Ironheart", thorne.Name)
	assert.Equal(t, "dwarven runesmith", thorne.Role)
	assert.Len(t, thorne.Knowledge, 5)
	assert.Len(t, thorne.Secrets, 4)
	assert.Len(t, thorne.Goals, 4)
	assert.Len(t, thorne.Connections, 4)
	assert.Equal(t, "Head of the Runesmith's Guild", thorne.Connections[0])
}

func TestParseCatalogueRejectsBadEntries(t *testing.T) {
	_, err := ParseCatalogue([]byte("- role: nameless\n"))
	assert.Error(t, err)

	_, err = ParseCatalogue([]byte("- name: A\n- name: A\n"))
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = ParseCatalogue([]byte("not: [a list"))
	assert.Error(t, err)
}

func TestLoadCatalogueMissingFile(t *testing.T) {
	_, err := LoadCatalogue("/nonexistent/characters.yaml")
	assert.Error(t, err)
}

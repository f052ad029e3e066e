package store

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fscarponi/characterai/internal/domain"
)

//go:embed characters.yaml
var defaultCatalogue []byte

// ParseCatalogue decodes a YAML list of characters. Every entry needs a name.
func ParseCatalogue(data []byte) ([]domain.Character, error) {
	var characters []domain.Character
	if err := yaml.Unmarshal(data, &characters); err != nil {
		return nil, fmt.Errorf("parse character catalogue: %w", err)
	}
	seen := make(map[string]bool, len(characters))
	for i, c := range characters {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("character catalogue entry %d has no name", i+1)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: %q appears twice in catalogue", ErrDuplicateName, c.Name)
		}
		seen[c.Name] = true
		characters[i] = c.Clone()
	}
	return characters, nil
}

// DefaultCharacters returns the built-in catalogue.
func DefaultCharacters() []domain.Character {
	characters, err := ParseCatalogue(defaultCatalogue)
	if err != nil {
		panic(err)
	}
	return characters
}

// LoadCatalogue reads the catalogue at path, or the built-in one when path is empty.
func LoadCatalogue(path string) ([]domain.Character, error) {
	if path == "" {
		return DefaultCharacters(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read character catalogue: %w", err)
	}
	return ParseCatalogue(data)
}

// SeedFromCatalogue seeds repo from the catalogue at path when repo is empty.
func SeedFromCatalogue(ctx context.Context, repo CharacterRepository, path string) (int, error) {
	characters, err := LoadCatalogue(path)
	if err != nil {
		return 0, err
	}
	n, err := repo.Seed(ctx, characters)
	if err != nil {
		return 0, fmt.Errorf("seed characters: %w", err)
	}
	if n > 0 {
		slog.Info("Seeded character store", "count", n, "source", catalogueSource(path))
	}
	return n, nil
}

func catalogueSource(path string) string {
	if path == "" {
		return "builtin"
	}
	return path
}

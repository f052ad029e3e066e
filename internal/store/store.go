// Package store provides persistence for character records.
package store

import (
	"context"
	"errors"

	"github.com/fscarponi/characterai/internal/domain"
)

var (
	// ErrDuplicateName is returned by Add when a character with the same name exists.
	ErrDuplicateName = errors.New("character name already exists")
	// ErrNotFound is returned when deleting a character that does not exist.
	ErrNotFound = errors.New("character not found")
)

// CharacterRepository defines the interface for persisting characters.
type CharacterRepository interface {
	// GetAll returns every character in insertion order.
	GetAll(ctx context.Context) ([]domain.Character, error)

	// GetByName returns the character with the given name, or nil when absent.
	GetByName(ctx context.Context, name string) (*domain.Character, error)

	// Add stores a new character. It fails with ErrDuplicateName if the name is taken.
	Add(ctx context.Context, c domain.Character) error

	// DeleteByName removes a character. It fails with ErrNotFound if none matched.
	DeleteByName(ctx context.Context, name string) error

	// DeleteAll removes every character and returns how many were deleted.
	DeleteAll(ctx context.Context) (int64, error)

	// Seed inserts characters only when the store is empty and reports how many were added.
	Seed(ctx context.Context, characters []domain.Character) (int, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fscarponi/characterai/internal/domain"
	"github.com/fscarponi/characterai/internal/store"
)

// ListCharacters returns every stored character in insertion order.
func (h *Handler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := h.repo.GetAll(r.Context())
	if err != nil {
		slog.Error("Failed to list characters", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list characters")
		return
	}
	if characters == nil {
		characters = []domain.Character{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"characters": characters,
		"count":      len(characters),
	})
}

// GetCharacter returns one character by exact name.
func (h *Handler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	c, err := h.repo.GetByName(r.Context(), name)
	if err != nil {
		slog.Error("Failed to load character", "name", name, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load character")
		return
	}
	if c == nil {
		Error(w, http.StatusNotFound, "character not found")
		return
	}
	JSON(w, http.StatusOK, c)
}

// CreateCharacter stores a new character. Names are unique.
func (h *Handler) CreateCharacter(w http.ResponseWriter, r *http.Request) {
	var c domain.Character
	if err := decodeJSON(w, r, &c); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		Error(w, http.StatusBadRequest, "name is required")
		return
	}
	c = c.Clone()

	if err := h.repo.Add(r.Context(), c); err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			Error(w, http.StatusConflict, "a character with this name already exists")
			return
		}
		slog.Error("Failed to create character", "name", c.Name, "error", err)
		Error(w, http.StatusInternalServerError, "failed to create character")
		return
	}
	slog.Info("Character created", "name", c.Name)
	JSON(w, http.StatusCreated, c)
}

// DeleteCharacter removes one character by exact name.
func (h *Handler) DeleteCharacter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.repo.DeleteByName(r.Context(), name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Error(w, http.StatusNotFound, "character not found")
			return
		}
		slog.Error("Failed to delete character", "name", name, "error", err)
		Error(w, http.StatusInternalServerError, "failed to delete character")
		return
	}
	slog.Info("Character deleted", "name", name)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAllCharacters empties the catalogue.
func (h *Handler) DeleteAllCharacters(w http.ResponseWriter, r *http.Request) {
	n, err := h.repo.DeleteAll(r.Context())
	if err != nil {
		slog.Error("Failed to delete characters", "error", err)
		Error(w, http.StatusInternalServerError, "failed to delete characters")
		return
	}
	slog.Info("Characters purged", "deleted", n)
	JSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

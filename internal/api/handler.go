// Package api provides HTTP handlers for the character chat API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fscarponi/characterai/internal/bot"
	"github.com/fscarponi/characterai/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Dispatcher runs an event through the conversation pipeline and waits for its replies.
type Dispatcher interface {
	Do(ctx context.Context, ev bot.Event) ([]string, error)
}

// Handler serves the REST surface.
type Handler struct {
	repo               store.CharacterRepository
	dispatcher         Dispatcher
	chatTimeout        time.Duration
	healthCheckTimeout time.Duration
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(repo store.CharacterRepository, dispatcher Dispatcher, chatTimeout time.Duration) *Handler {
	if chatTimeout <= 0 {
		chatTimeout = 2 * time.Minute
	}
	return &Handler{
		repo:               repo,
		dispatcher:         dispatcher,
		chatTimeout:        chatTimeout,
		healthCheckTimeout: 5 * time.Second,
	}
}

// RegisterRoutes registers the health, character and chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Route("/characters", func(r chi.Router) {
			r.Get("/", h.ListCharacters)
			r.Post("/", h.CreateCharacter)
			r.Delete("/", h.DeleteAllCharacters)
			r.Get("/{name}", h.GetCharacter)
			r.Delete("/{name}", h.DeleteCharacter)
		})
		r.Post("/chat", h.Chat)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

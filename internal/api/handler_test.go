//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fscarponi/characterai/internal/bot"
	"github.com/fscarponi/characterai/internal/domain"
	"github.com/fscarponi/characterai/internal/identity"
	"github.com/fscarponi/characterai/internal/store"
)

type fakeDispatcher struct {
	events  []bot.Event
	replies []string
	err     error
}

func (d *fakeDispatcher) Do(_ context.Context, ev bot.Event) ([]string, error) {
	d.events = append(d.events, ev)
	return d.replies, d.err
}

func newTestRouter(t *testing.T, d Dispatcher) (http.Handler, *store.SQLiteStore) {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "characters.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	r := chi.NewRouter()
	r.Use(identity.Middleware(true))
	NewHandler(repo, d, time.Second).RegisterRoutes(r)
	return r, repo
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(identity.SessionHeaderName, "tab-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t, &fakeDispatcher{})

	w := doRequest(t, h, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var got struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "healthy" || got.Checks["database"] != "ok" {
		t.Errorf("unexpected health payload: %+v", got)
	}
}

func TestCharacterLifecycle(t *testing.T) {
	h, _ := newTestRouter(t, &fakeDispatcher{})
	c := domain.Character{Name: "Ada", Role: "Engineer", Personality: "Precise", Background: "Analytical engine"}

	if w := doRequest(t, h, http.MethodPost, "/api/characters", c); w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	if w := doRequest(t, h, http.MethodPost, "/api/characters", c); w.Code != http.StatusConflict {
		t.Errorf("duplicate create: expected 409, got %d", w.Code)
	}

	w := doRequest(t, h, http.MethodGet, "/api/characters/Ada", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	var got domain.Character
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Role != "Engineer" || got.Knowledge == nil {
		t.Errorf("unexpected character: %+v", got)
	}

	w = doRequest(t, h, http.MethodGet, "/api/characters", nil)
	var list struct {
		Characters []domain.Character `json:"characters"`
		Count      int                `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Count != 1 || list.Characters[0].Name != "Ada" {
		t.Errorf("unexpected list: %+v", list)
	}

	if w := doRequest(t, h, http.MethodDelete, "/api/characters/Ada", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", w.Code)
	}
	if w := doRequest(t, h, http.MethodDelete, "/api/characters/Ada", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", w.Code)
	}
	if w := doRequest(t, h, http.MethodGet, "/api/characters/Ada", nil); w.Code != http.StatusNotFound {
		t.Errorf("get deleted: expected 404, got %d", w.Code)
	}
}

func TestCreateCharacterValidation(t *testing.T) {
	h, _ := newTestRouter(t, &fakeDispatcher{})

	if w := doRequest(t, h, http.MethodPost, "/api/characters", map[string]string{"role": "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("missing name: expected 400, got %d", w.Code)
	}
	if w := doRequest(t, h, http.MethodPost, "/api/characters", map[string]string{"nickname": "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown field: expected 400, got %d", w.Code)
	}
}

func TestDeleteAllCharacters(t *testing.T) {
	h, repo := newTestRouter(t, &fakeDispatcher{})
	if _, err := repo.Seed(context.Background(), store.DefaultCharacters()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := doRequest(t, h, http.MethodDelete, "/api/characters", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got map[string]int64
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["deleted"] != 3 {
		t.Errorf("expected 3 deleted, got %d", got["deleted"])
	}
}

func TestChat(t *testing.T) {
	d := &fakeDispatcher{replies: []string{"hello", "there"}}
	h, _ := newTestRouter(t, d)

	w := doRequest(t, h, http.MethodPost, "/api/chat", map[string]string{"message": "/help"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got chatResponse
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Replies) != 2 || got.Replies[0] != "hello" {
		t.Errorf("unexpected replies: %v", got.Replies)
	}
	if len(d.events) != 1 {
		t.Fatalf("expected 1 dispatched event, got %d", len(d.events))
	}
	ev := d.events[0]
	if ev.Text != "/help" || ev.Channel != Channel {
		t.Errorf("unexpected event: %+v", ev)
	}
	if len(ev.ConversationID) < len("web:") || ev.ConversationID[:4] != "web:" {
		t.Errorf("unexpected conversation id %q", ev.ConversationID)
	}
}

func TestChatRejections(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"backlog full", bot.ErrBacklogFull, http.StatusTooManyRequests},
		{"closed", bot.ErrDispatcherClosed, http.StatusServiceUnavailable},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestRouter(t, &fakeDispatcher{err: tt.err})
			w := doRequest(t, h, http.MethodPost, "/api/chat", map[string]string{"message": "hi"})
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

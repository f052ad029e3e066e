package webchat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/fscarponi/characterai/internal/bot"
	"github.com/fscarponi/characterai/internal/identity"
)

// Channel is the conversation log channel name for WebSocket traffic.
const Channel = "web"

const writeTimeout = 10 * time.Second

// Submitter queues events for processing.
type Submitter interface {
	Submit(ev bot.Event, deliver bot.DeliverFunc) error
}

// Handler upgrades requests to WebSocket chat sessions.
type Handler struct {
	submitter     Submitter
	conns         *ConnManager
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a new WebSocket chat handler.
func NewHandler(submitter Submitter, conns *ConnManager, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		submitter:     submitter,
		conns:         conns,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// Frame is the JSON message exchanged with the browser.
type Frame struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	conversationID := identity.ConversationID(r.Context())
	slog.Info("WebSocket connection request", "user_id", userID, "session_id", sessionID, "ip", identity.IPFromRequest(r))

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	h.conns.Register(userID, sessionID, ws)
	defer h.conns.Unregister(userID, sessionID, ws)

	h.readLoop(r.Context(), ws, conversationID)
	slog.Info("Chat session ended", "conversation_id", conversationID)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *Handler) readLoop(ctx context.Context, ws *websocket.Conn, conversationID string) {
	deliver := func(_ context.Context, _ bot.Event, replies []string) {
		for _, reply := range replies {
			if err := writeFrame(ws, Frame{Type: "reply", Content: reply}); err != nil {
				slog.Debug("Failed to deliver reply", "conversation_id", conversationID, "error", err)
				return
			}
		}
	}

	for {
		_, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "conversation_id", conversationID)
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "error", err, "conversation_id", conversationID)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(message, &frame); err != nil {
			// Plain text frames are treated as chat messages.
			frame = Frame{Type: "message", Content: string(message)}
		}

		switch frame.Type {
		case "message":
			ev := bot.Event{ConversationID: conversationID, Channel: Channel, Text: frame.Content}
			if err := h.submitter.Submit(ev, deliver); err != nil {
				slog.Warn("Failed to queue chat message", "conversation_id", conversationID, "error", err)
				_ = writeFrame(ws, Frame{Type: "error", Error: bot.RejectionReply(err)})
			}
		case "ping":
			if err := writeFrame(ws, Frame{Type: "pong"}); err != nil {
				slog.Debug("Failed to send pong", "error", err)
			}
		default:
			_ = writeFrame(ws, Frame{Type: "error", Error: "unsupported frame type"})
		}
	}
}

func writeFrame(ws *websocket.Conn, f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}

package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fscarponi/characterai/internal/bot"
	"github.com/fscarponi/characterai/internal/identity"
)

// Channel is the conversation log channel for REST chat requests.
const Channel = "rest"

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Replies []string `json:"replies"`
}

// Chat handles one user message synchronously and returns the replies it produced.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.chatTimeout)
	defer cancel()

	ev := bot.Event{
		ConversationID: identity.ConversationID(r.Context()),
		Channel:        Channel,
		Text:           req.Message,
	}
	replies, err := h.dispatcher.Do(ctx, ev)
	if err != nil {
		switch {
		case errors.Is(err, bot.ErrBacklogFull):
			Error(w, http.StatusTooManyRequests, bot.RejectionReply(err))
		case errors.Is(err, bot.ErrDispatcherClosed):
			Error(w, http.StatusServiceUnavailable, bot.RejectionReply(err))
		case errors.Is(err, context.DeadlineExceeded):
			Error(w, http.StatusGatewayTimeout, "chat request timed out")
		default:
			slog.Error("Chat request failed", "conversation_id", ev.ConversationID, "error", err)
			Error(w, http.StatusInternalServerError, bot.RejectionReply(err))
		}
		return
	}
	if replies == nil {
		replies = []string{}
	}
	JSON(w, http.StatusOK, chatResponse{Replies: replies})
}

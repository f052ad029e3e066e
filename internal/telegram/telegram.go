// Package telegram connects the bot to Telegram through long polling.
package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/fscarponi/characterai/internal/bot"
)

// Channel is the conversation log channel name for Telegram traffic.
const Channel = "telegram"

// maxMessageLen is Telegram's limit for one text message, in characters.
const maxMessageLen = 4096

// API is the subset of *tgbotapi.BotAPI the adapter uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Submitter queues events for processing.
type Submitter interface {
	Submit(ev bot.Event, deliver bot.DeliverFunc) error
}

// Adapter turns Telegram updates into bot events and sends the replies back.
type Adapter struct {
	api         API
	submitter   Submitter
	pollTimeout int
	logger      *slog.Logger
}

// New creates an Adapter. pollTimeout is the long-poll timeout in seconds.
func New(api API, submitter Submitter, pollTimeout int, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	if pollTimeout <= 0 {
		pollTimeout = 60
	}
	return &Adapter{api: api, submitter: submitter, pollTimeout: pollTimeout, logger: logger}
}

// Connect authenticates with Telegram using token.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

// ConversationID maps a Telegram chat to a conversation identifier.
func ConversationID(chatID int64) string {
	return Channel + ":" + strconv.FormatInt(chatID, 10)
}

// Run polls for updates until ctx is done.
func (a *Adapter) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = a.pollTimeout
	updates := a.api.GetUpdatesChan(cfg)
	a.logger.Info("Telegram adapter started", "poll_timeout", a.pollTimeout)

	for {
		select {
		case <-ctx.Done():
			a.api.StopReceivingUpdates()
			a.logger.Info("Telegram adapter stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			a.handleUpdate(ctx, update)
		}
	}
}

func (a *Adapter) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	ev := bot.Event{
		ConversationID: ConversationID(chatID),
		Channel:        Channel,
		Text:           msg.Text,
	}
	err := a.submitter.Submit(ev, func(_ context.Context, _ bot.Event, replies []string) {
		a.send(chatID, replies)
	})
	if err != nil {
		a.logger.Warn("Failed to queue Telegram message", "chat_id", chatID, "error", err)
		if ctx.Err() == nil {
			a.send(chatID, []string{bot.RejectionReply(err)})
		}
	}
}

// send delivers replies in order, each preceded by a typing action.
func (a *Adapter) send(chatID int64, replies []string) {
	for _, reply := range replies {
		for _, part := range splitMessage(reply, maxMessageLen) {
			if _, err := a.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
				a.logger.Debug("Failed to send typing action", "chat_id", chatID, "error", err)
			}
			if _, err := a.api.Send(tgbotapi.NewMessage(chatID, part)); err != nil {
				a.logger.Error("Failed to send Telegram message", "chat_id", chatID, "error", err)
				return
			}
		}
	}
}

// splitMessage cuts text into pieces of at most limit characters, preferring
// line breaks as cut points.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	runes := []rune(text)
	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

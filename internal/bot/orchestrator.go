// Package bot routes inbound chat events to the creation flow, the persona
// conversation or the character store, and serializes events per conversation.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/fscarponi/characterai/internal/ai"
	"github.com/fscarponi/characterai/internal/convlog"
	"github.com/fscarponi/characterai/internal/domain"
	"github.com/fscarponi/characterai/internal/metrics"
	"github.com/fscarponi/characterai/internal/session"
	"github.com/fscarponi/characterai/internal/store"
)

// Event is one inbound text for a conversation.
type Event struct {
	ConversationID string
	Channel        string
	Text           string
}

// Handler turns an event into replies.
type Handler interface {
	Handle(ctx context.Context, ev Event) []string
}

// Orchestrator implements Handler on top of the session store, the character
// repository and the AI boundary.
type Orchestrator struct {
	sessions   *session.Store
	characters store.CharacterRepository
	completer  ai.Completer
	recorder   metrics.Recorder
	convlog    *convlog.Logger
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithConversationLog sets the conversation logger.
func WithConversationLog(l *convlog.Logger) Option {
	return func(o *Orchestrator) { o.convlog = l }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(sessions *session.Store, characters store.CharacterRepository, completer ai.Completer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sessions:   sessions,
		characters: characters,
		completer:  completer,
		recorder:   metrics.Nop{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Handle processes one event and returns the replies to send, in order.
// Events for the same conversation are serialized; a panic while handling an
// event is recovered and reported as a generic reply.
func (o *Orchestrator) Handle(ctx context.Context, ev Event) (replies []string) {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return nil
	}

	sess := o.sessions.GetOrCreate(ev.ConversationID)
	unlock := sess.Lock()
	defer unlock()

	o.logEvent(ev, convlog.Inbound, "user_message", ev.Text, "")
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Panic while handling chat event",
				"conversation_id", ev.ConversationID,
				"panic", r,
				"stack", string(debug.Stack()))
			replies = []string{msgInternal}
		}
		character := ""
		if c, ok := sess.SelectedCharacter(); ok {
			character = c.Name
		}
		for _, reply := range replies {
			o.logEvent(ev, convlog.Outbound, "bot_reply", reply, character)
		}
	}()

	if cmd, ok := ParseCommand(text); ok {
		o.recorder.ObserveEvent(commandLabel(cmd))
		return o.runCommand(ctx, ev, sess, cmd)
	}
	o.recorder.ObserveEvent("text")

	switch {
	case sess.CreationState() != session.StateNone:
		return o.advance(ctx, sess, session.TextInput(text))
	case sess.ChatModeActive():
		return o.chat(ctx, sess, ev.ConversationID, text)
	default:
		return []string{msgUseCommands}
	}
}

func commandLabel(cmd Command) string {
	if !cmd.Known {
		return "unknown"
	}
	return cmd.Name
}

func (o *Orchestrator) runCommand(ctx context.Context, ev Event, sess *session.Session, cmd Command) []string {
	switch cmd.Name {
	case CmdStart:
		return o.advance(ctx, sess, session.Input{Kind: session.InputStart})
	case CmdCreate:
		return o.advance(ctx, sess, session.Input{Kind: session.InputCreate})
	case CmdCancel:
		return o.advance(ctx, sess, session.Input{Kind: session.InputCancel})
	}

	if !cmd.Known {
		return []string{unknownCommandText(cmd.Name)}
	}

	// Every other recognized command leaves a creation flow in progress.
	if sess.CreationState() != session.StateNone {
		o.advance(ctx, sess, session.Input{Kind: session.InputInterrupt})
	}

	switch cmd.Name {
	case CmdHelp:
		return []string{msgHelp}
	case CmdSelect:
		return o.selectCharacter(ctx, sess, cmd.Args)
	case CmdChat:
		if cmd.Args == "" {
			return []string{msgEmptyChat}
		}
		return o.chat(ctx, sess, ev.ConversationID, cmd.Args)
	case CmdStopChat:
		_ = sess.SetChatMode(false)
		return []string{msgStopChat}
	case CmdClear:
		sess.Context().Reset()
		return []string{msgCleared}
	case CmdStatus:
		var selected *domain.Character
		if c, ok := sess.SelectedCharacter(); ok {
			selected = &c
		}
		return []string{statusText(selected, sess.PreferredLanguage(), sess.ChatModeActive())}
	default:
		return []string{unknownCommandText(cmd.Name)}
	}
}

// advance feeds in to the creation state machine and carries out its effects.
func (o *Orchestrator) advance(ctx context.Context, sess *session.Session, in session.Input) []string {
	current := sess.Flow()
	next, effects := session.Transition(current, in)

	var replies []string
	for _, effect := range effects {
		switch e := effect.(type) {
		case session.Notice:
			replies = append(replies, noticeText(e.Kind))
		case session.Summary:
			replies = append(replies, summaryText(e.Fields))
		case session.SetLanguage:
			sess.SetPreferredLanguage(e.Language)
			replies = append(replies, languageSetText(e.Language))
		case session.Commit:
			if err := o.characters.Add(ctx, e.Character); err != nil {
				if errors.Is(err, store.ErrDuplicateName) {
					o.logger.Info("Character name already taken", "name", e.Character.Name)
					return o.advance(ctx, sess, session.Input{Kind: session.InputCommitRejected})
				}
				o.logger.Error("Failed to save character", "name", e.Character.Name, "error", err)
				return []string{msgSaveFailed}
			}
			character := e.Character
			sess.SetSelectedCharacter(&character)
			replies = append(replies, createdText(character.Name))
		}
	}

	sess.SetFlow(next)
	if next.State != current.State {
		o.recorder.ObserveTransition(next.State.String())
	}
	return replies
}

func (o *Orchestrator) selectCharacter(ctx context.Context, sess *session.Session, args string) []string {
	characters, err := o.characters.GetAll(ctx)
	if err != nil {
		o.logger.Error("Failed to list characters", "error", err)
		return []string{msgStoreFailed}
	}
	if len(characters) == 0 {
		return []string{msgNoCharacters}
	}
	if args == "" {
		return []string{characterListText(characters)}
	}

	index, err := strconv.Atoi(args)
	if err != nil || index < 1 || index > len(characters) {
		return []string{msgCharacterMissing}
	}
	character := characters[index-1]
	sess.SetSelectedCharacter(&character)
	if err := sess.SetChatMode(true); err != nil {
		return []string{msgNoCharacter}
	}
	return []string{selectedText(index), chatReadyText(character.Name)}
}

func (o *Orchestrator) chat(ctx context.Context, sess *session.Session, conversationID, text string) []string {
	character, ok := sess.SelectedCharacter()
	if !ok {
		return []string{msgNoCharacter}
	}

	conv := sess.Context()
	if conv.EnsureInitialized(ctx, character, sess.PreferredLanguage()) {
		o.logger.Debug("Conversation context initialized",
			"conversation_id", conversationID,
			"character", character.Name,
			"language", sess.PreferredLanguage())
	}
	conv.AppendUserTurn(text)
	reply, err := conv.CompleteTurn(ctx, o.completer.Complete)
	o.recorder.ObserveTurn(metrics.Outcome(err))
	if err != nil {
		o.logger.Warn("Chat turn failed",
			"conversation_id", conversationID,
			"character", character.Name,
			"error", err)
		return []string{msgChatFailed}
	}
	return []string{reply}
}

func (o *Orchestrator) logEvent(ev Event, direction, eventType, content, character string) {
	o.convlog.Log(convlog.Event{
		ConversationID: ev.ConversationID,
		Channel:        ev.Channel,
		Direction:      direction,
		EventType:      eventType,
		Character:      character,
		Content:        content,
	})
}


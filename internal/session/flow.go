package session

import (
	"strings"

	"github.com/fscarponi/characterai/internal/domain"
)

// Flow is the value the creation state machine operates on.
type Flow struct {
	State   CreationState
	Pending Fields
}

// InputKind classifies what reached the state machine.
type InputKind int

const (
	// InputText is free text typed by the user.
	InputText InputKind = iota
	// InputCreate starts (or restarts) character creation.
	InputCreate
	// InputStart starts language selection.
	InputStart
	// InputCancel aborts any flow in progress, with a confirmation reply.
	InputCancel
	// InputInterrupt aborts any flow in progress silently, because another command takes over.
	InputInterrupt
	// InputCommitRejected reports that the character store refused the name on confirmation.
	InputCommitRejected
)

// Input is one event fed to Transition.
type Input struct {
	Kind InputKind
	Text string
}

// TextInput wraps free text as an Input.
func TextInput(text string) Input {
	return Input{Kind: InputText, Text: text}
}

// Effect is a side effect Transition asks its caller to perform.
type Effect interface {
	effect()
}

// NoticeKind names a reply the caller should render for the user.
type NoticeKind int

const (
	NoticeLanguageMenu NoticeKind = iota
	NoticeAskName
	NoticeAskRole
	NoticeAskBackground
	NoticeAskPersonality
	NoticeRetypeConfirm
	NoticeCancelled
	NoticeNothingToCancel
	NoticeDuplicateName
	NoticeNoFlow
)

// Notice asks the caller to send a fixed reply.
type Notice struct{ Kind NoticeKind }

// Summary asks the caller to show the collected fields for review.
type Summary struct{ Fields Fields }

// SetLanguage asks the caller to store the preferred language.
type SetLanguage struct{ Language string }

// Commit asks the caller to persist the character and select it. The flow
// returned with a Commit must only be applied once persistence succeeded.
type Commit struct{ Character domain.Character }

func (Notice) effect()      {}
func (Summary) effect()     {}
func (SetLanguage) effect() {}
func (Commit) effect()      {}

// Transition is the creation state machine. It is pure: the returned Flow
// never shares its Pending map with the input Flow.
//
//nolint:gocyclo // The transition table reads best as one switch.
func Transition(f Flow, in Input) (Flow, []Effect) {
	switch in.Kind {
	case InputCreate:
		return enter(StateAwaitingName), []Effect{Notice{NoticeAskName}}
	case InputStart:
		return enter(StateAwaitingLanguageSelection), []Effect{Notice{NoticeLanguageMenu}}
	case InputCancel:
		if f.State == StateNone {
			return enter(StateNone), []Effect{Notice{NoticeNothingToCancel}}
		}
		return enter(StateNone), []Effect{Notice{NoticeCancelled}}
	case InputInterrupt:
		return enter(StateNone), nil
	case InputCommitRejected:
		if f.State != StateAwaitingConfirmation {
			return keep(f), nil
		}
		return enter(StateAwaitingName), []Effect{Notice{NoticeDuplicateName}}
	}

	switch f.State {
	case StateAwaitingLanguageSelection:
		return enter(StateNone), []Effect{SetLanguage{Language: ResolveLanguage(in.Text)}}
	case StateAwaitingName:
		return collect(f, FieldName, in.Text, StateAwaitingRole), []Effect{Notice{NoticeAskRole}}
	case StateAwaitingRole:
		return collect(f, FieldRole, in.Text, StateAwaitingBackground), []Effect{Notice{NoticeAskBackground}}
	case StateAwaitingBackground:
		return collect(f, FieldBackground, in.Text, StateAwaitingPersonality), []Effect{Notice{NoticeAskPersonality}}
	case StateAwaitingPersonality:
		next := collect(f, FieldPersonality, in.Text, StateAwaitingConfirmation)
		return next, []Effect{Summary{Fields: next.Pending.Clone()}}
	case StateAwaitingConfirmation:
		if !strings.EqualFold(strings.TrimSpace(in.Text), "confirm") {
			return keep(f), []Effect{Notice{NoticeRetypeConfirm}}
		}
		return enter(StateNone), []Effect{Commit{Character: characterFrom(f.Pending)}}
	default:
		return keep(f), []Effect{Notice{NoticeNoFlow}}
	}
}

func enter(state CreationState) Flow {
	return Flow{State: state, Pending: Fields{}}
}

func keep(f Flow) Flow {
	return Flow{State: f.State, Pending: f.Pending.Clone()}
}

func collect(f Flow, field Field, value string, next CreationState) Flow {
	pending := f.Pending.Clone()
	pending[field] = value
	return Flow{State: next, Pending: pending}
}

func characterFrom(p Fields) domain.Character {
	return domain.Character{
		Name:        p[FieldName],
		Role:        p[FieldRole],
		Background:  p[FieldBackground],
		Personality: p[FieldPersonality],
		Knowledge:   []string{},
		Secrets:     []string{},
		Goals:       []string{},
		Connections: []string{},
	}
}

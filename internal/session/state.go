// Package session tracks per-conversation interaction state: the character
// creation flow, the selected character, the preferred language and chat mode.
package session

// CreationState is the step of the character creation flow a session is in.
type CreationState int

const (
	// StateNone is both the initial state and the idle state outside any flow.
	StateNone CreationState = iota
	StateAwaitingLanguageSelection
	StateAwaitingName
	StateAwaitingRole
	StateAwaitingBackground
	StateAwaitingPersonality
	StateAwaitingConfirmation
)

var stateNames = map[CreationState]string{
	StateNone:                      "NONE",
	StateAwaitingLanguageSelection: "AWAITING_LANGUAGE_SELECTION",
	StateAwaitingName:              "AWAITING_NAME",
	StateAwaitingRole:              "AWAITING_ROLE",
	StateAwaitingBackground:        "AWAITING_BACKGROUND",
	StateAwaitingPersonality:       "AWAITING_PERSONALITY",
	StateAwaitingConfirmation:      "AWAITING_CONFIRMATION",
}

func (s CreationState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// clearsPending reports whether entering s must discard collected fields.
func (s CreationState) clearsPending() bool {
	return s == StateNone || s == StateAwaitingLanguageSelection || s == StateAwaitingName
}

// Field names a value collected during character creation.
type Field string

const (
	FieldName        Field = "name"
	FieldRole        Field = "role"
	FieldBackground  Field = "background"
	FieldPersonality Field = "personality"
)

// Fields maps collected creation fields to the text the user typed.
type Fields map[Field]string

// Clone returns an independent copy; a nil receiver yields an empty map.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

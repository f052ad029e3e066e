package domain

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem carries the persona prompt. It is always the first message of a context.
	RoleSystem Role = "system"
	// RoleUser is a message typed by the end user.
	RoleUser Role = "user"
	// RoleAssistant is a reply produced by the language model.
	RoleAssistant Role = "assistant"
)

// Message is one entry of an AI conversation context.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// String returns the role name
func (r Role) String() string {
	return string(r)
}

// Message is a single entry in the chat transcript.
// Messages are immutable once appended to a session.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Source    string // citation; empty when the answer carries none
	CreatedAt time.Time
}

// NewUserMessage creates a user-authored message
func NewUserMessage(content string) Message {
	return newMessage(RoleUser, content, "")
}

// NewBotMessage creates a bot-authored message with an optional source
func NewBotMessage(content, source string) Message {
	return newMessage(RoleBot, content, source)
}

func newMessage(role Role, content, source string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Source:    source,
		CreatedAt: time.Now(),
	}
}

// HasSource reports whether the message carries a citation
func (m Message) HasSource() bool {
	return m.Source != ""
}

// IsUser reports whether the message was authored by the user
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

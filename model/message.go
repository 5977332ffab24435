package model

import (
	"time"

	"github.com/google/uuid"

	"jarvis/api"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Mode is the input channel a message was sent from.
type Mode = api.Mode

const (
	ModeText  = api.ModeText
	ModeVoice = api.ModeVoice
)

// MaxMessages is how many trailing messages are persisted.
const MaxMessages = 50

// Message is one entry of the conversation, stored in insertion order
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func newMessage(role Role, content string, now time.Time) Message {
	return Message{
		ID:        newID(),
		Role:      role,
		Content:   content,
		Timestamp: now,
	}
}

// newID returns a time-ordered id, falling back to a random one if the
// clock sequence cannot be read.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Tail returns a copy of the last n messages.
func Tail(messages []Message, n int) []Message {
	if len(messages) > n {
		messages = messages[len(messages)-n:]
	}
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}

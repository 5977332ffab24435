package model

import (
	"context"
	"errors"

	"jarvis/api"
)

// ErrBusy is returned when a send or clear is already in flight.
var ErrBusy = errors.New("a request is already in progress")

// FallbackReply replaces the assistant placeholder when a send fails.
const FallbackReply = "Sorry, I encountered an error processing your message. Please try again."

// ChatAPI is the part of api.Client the store drives.
type ChatAPI interface {
	SendChat(ctx context.Context, req api.ChatRequest, onChunk api.ChunkCallback) (string, error)
	NewChat(ctx context.Context) (*api.NewChatResponse, error)
}

// Persister keeps the conversation snapshot across runs.
// Load returns an empty slice when nothing has been saved yet.
type Persister interface {
	Load() ([]Message, error)
	Save(messages []Message) error
	Clear() error
}

type Variant int

const (
	VariantDefault Variant = iota
	VariantDestructive
)

// Notification is a short user-facing message such as a toast.
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

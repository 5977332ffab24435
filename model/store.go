package model

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"jarvis/api"
)

// Store owns the conversation. All methods are safe for concurrent use;
// blocking ones (SendMessage, ClearChat) are meant to run off the UI loop.
type Store struct {
	mu        sync.Mutex
	messages  []Message
	loading   bool
	streaming bool
	// pendingID is the assistant placeholder being streamed into, if any
	pendingID string

	chat      ChatAPI
	persister Persister
	notifier  Notifier
	logger    *zap.Logger

	changes chan struct{}
	now     func() time.Time
}

// NewStore restores the persisted snapshot, if any. A snapshot that cannot be
// read is logged and the store starts empty.
func NewStore(chat ChatAPI, persister Persister, notifier Notifier, logger *zap.Logger) *Store {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		chat:      chat,
		persister: persister,
		notifier:  notifier,
		logger:    logger,
		changes:   make(chan struct{}, 1),
		now:       time.Now,
	}

	if persister != nil {
		saved, err := persister.Load()
		if err != nil {
			logger.Warn("ignoring saved history", zap.Error(err))
		} else {
			s.messages = saved
			logger.Debug("restored history", zap.Int("messages", len(saved)))
		}
	}

	return s
}

// Changes delivers a value after any state change. Multiple changes between
// receives collapse into one.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

// LastAssistant returns the most recent assistant message.
func (s *Store) LastAssistant() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleAssistant {
			return s.messages[i], true
		}
	}
	return Message{}, false
}

// SendMessage appends the user message and an assistant placeholder, then
// streams the reply into the placeholder. Blank content is ignored and a
// concurrent call returns ErrBusy. On failure the placeholder holds
// FallbackReply and the error is returned.
func (s *Store) SendMessage(ctx context.Context, content string, mode Mode) (string, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return "", nil
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return "", ErrBusy
	}
	s.loading = true
	s.streaming = true
	now := s.now()
	placeholder := newMessage(RoleAssistant, "", now)
	s.pendingID = placeholder.ID
	s.messages = append(s.messages, newMessage(RoleUser, text, now), placeholder)
	s.persistLocked()
	s.mu.Unlock()
	s.emit()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.streaming = false
		s.pendingID = ""
		s.mu.Unlock()
		s.emit()
	}()

	s.logger.Debug("sending message", zap.String("mode", string(mode)), zap.Int("length", len(text)))

	received := false
	reply, err := s.chat.SendChat(ctx, api.ChatRequest{Message: text, Mode: mode}, func(chunk string) {
		received = true
		s.updateLast(func(current string) string {
			return current + chunk
		})
	})
	if err != nil {
		s.logger.Error("chat request failed", zap.Error(err))
		s.updateLast(func(string) string {
			return FallbackReply
		})
		s.notifier.Notify(Notification{
			Title:       "Error",
			Description: "Failed to send message. Please try again.",
			Variant:     VariantDestructive,
		})
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	if !received {
		s.updateLast(func(string) string {
			return reply
		})
	}

	return reply, nil
}

// ClearChat resets the backend memory and, only if that succeeds, empties
// the local conversation and its snapshot.
func (s *Store) ClearChat(ctx context.Context) error {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return ErrBusy
	}
	s.loading = true
	s.mu.Unlock()
	s.emit()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.emit()
	}()

	if _, err := s.chat.NewChat(ctx); err != nil {
		s.logger.Error("new chat request failed", zap.Error(err))
		s.notifier.Notify(Notification{
			Title:       "Error",
			Description: "Failed to clear chat. Please try again.",
			Variant:     VariantDestructive,
		})
		return fmt.Errorf("failed to clear chat: %w", err)
	}

	s.mu.Lock()
	s.messages = nil
	if s.persister != nil {
		if err := s.persister.Clear(); err != nil {
			s.logger.Warn("failed to clear saved history", zap.Error(err))
		}
	}
	s.mu.Unlock()

	s.notifier.Notify(Notification{
		Title:       "Chat cleared",
		Description: "Your conversation has been reset.",
	})
	return nil
}

// AddSystemMessage appends a system note such as "Voice chat ended". While a
// reply is streaming the note goes just before its placeholder, which stays last.
func (s *Store) AddSystemMessage(text string) {
	s.mu.Lock()
	note := newMessage(RoleSystem, text, s.now())
	n := len(s.messages)
	if s.pendingID != "" && n > 0 && s.messages[n-1].ID == s.pendingID {
		placeholder := s.messages[n-1]
		s.messages = append(s.messages[:n-1], note, placeholder)
	} else {
		s.messages = append(s.messages, note)
	}
	s.persistLocked()
	s.mu.Unlock()
	s.emit()
}

// updateLast rewrites the in-flight placeholder, which is always the last message.
func (s *Store) updateLast(fn func(current string) string) {
	s.mu.Lock()
	n := len(s.messages)
	if n == 0 || s.pendingID == "" || s.messages[n-1].ID != s.pendingID {
		s.mu.Unlock()
		return
	}
	s.messages[n-1].Content = fn(s.messages[n-1].Content)
	s.persistLocked()
	s.mu.Unlock()
	s.emit()
}

func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(Tail(s.messages, MaxMessages)); err != nil {
		s.logger.Warn("failed to save history", zap.Error(err))
	}
}

func (s *Store) emit() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

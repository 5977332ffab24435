package model

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// WaitForChange blocks until the store reports a change, then yields
// StoreChangedMsg. Re-issue it after each delivery to keep listening.
func (s *Store) WaitForChange(ctx context.Context) tea.Cmd {
	changes := s.changes
	return func() tea.Msg {
		select {
		case <-changes:
			return StoreChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

// SendMessageCmd runs SendMessage off the update loop.
func (s *Store) SendMessageCmd(ctx context.Context, content string, mode Mode) tea.Cmd {
	return func() tea.Msg {
		reply, err := s.SendMessage(ctx, content, mode)
		return MessageSentMsg{Reply: reply, Mode: mode, Err: err}
	}
}

func (s *Store) ClearChatCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		return ChatClearedMsg{Err: s.ClearChat(ctx)}
	}
}

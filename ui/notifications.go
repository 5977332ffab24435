package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	appmodel "jarvis/model"
)

const notificationBuffer = 16

// Notifications carries notifications raised by the store and the voice
// session, from whatever goroutine raised them, into the update loop.
type Notifications struct {
	ch chan appmodel.Notification
}

func NewNotifications() *Notifications {
	return &Notifications{ch: make(chan appmodel.Notification, notificationBuffer)}
}

// Notify never blocks. Notifications beyond the buffer are dropped.
func (n *Notifications) Notify(note appmodel.Notification) {
	select {
	case n.ch <- note:
	default:
	}
}

// Wait yields the next notification as a NotificationMsg.
func (n *Notifications) Wait(ctx context.Context) tea.Cmd {
	ch := n.ch
	return func() tea.Msg {
		select {
		case note := <-ch:
			return appmodel.NotificationMsg{Notification: note}
		case <-ctx.Done():
			return nil
		}
	}
}

package ui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmodel "jarvis/model"
)

func TestToastsKeepNewest(t *testing.T) {
	h := newHarness(t, nil)

	for _, title := range []string{"one", "two", "three", "four"} {
		require.NotNil(t, h.view.pushToast(appmodel.Notification{Title: title}))
	}

	require.Len(t, h.view.toasts, maxToasts)
	assert.Equal(t, "two", h.view.toasts[0].note.Title)

	line := stripANSI(h.view.renderToastLine())
	assert.Contains(t, line, "✓ four")
	assert.Contains(t, line, "(+2)")
}

func TestToastExpires(t *testing.T) {
	h := newHarness(t, nil)

	h.view.pushToast(appmodel.Notification{Title: "Copied"})
	id := h.view.toasts[0].id

	h.send(toastExpiredMsg{ID: id + 100})
	assert.Len(t, h.view.toasts, 1)

	h.send(toastExpiredMsg{ID: id})
	assert.Empty(t, h.view.toasts)
	assert.Empty(t, h.view.renderToastLine())
}

func TestDestructiveToastStyle(t *testing.T) {
	h := newHarness(t, nil)

	h.view.pushToast(appmodel.Notification{
		Title:       "Error",
		Description: "Failed to clear chat. Please try again.",
		Variant:     appmodel.VariantDestructive,
	})

	assert.Equal(t, "✗ Error: Failed to clear chat. Please try again.", stripANSI(h.view.renderToastLine()))
}

func TestNotificationsFlowIntoToasts(t *testing.T) {
	h := newHarness(t, nil)

	h.notes.Notify(appmodel.Notification{Title: "Voice Error"})
	msgs := collect(t, h.notes.Wait(context.Background()))
	note, ok := findMsg[appmodel.NotificationMsg](msgs)
	require.True(t, ok)

	h.send(note)
	require.Len(t, h.view.toasts, 1)
	assert.Equal(t, "Voice Error", h.view.toasts[0].note.Title)
}

func TestNotifyDropsWhenFull(t *testing.T) {
	n := NewNotifications()
	for i := 0; i < notificationBuffer+5; i++ {
		n.Notify(appmodel.Notification{Title: "x"})
	}
	assert.Len(t, n.ch, notificationBuffer)
}

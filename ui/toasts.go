package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	appmodel "jarvis/model"
)

const (
	toastDuration = 4 * time.Second
	maxToasts     = 3
)

type toast struct {
	id   int
	note appmodel.Notification
}

// pushToast shows note and schedules its dismissal. Only the newest
// maxToasts are kept.
func (a *AppView) pushToast(note appmodel.Notification) tea.Cmd {
	a.nextToastID++
	id := a.nextToastID
	a.toasts = append(a.toasts, toast{id: id, note: note})
	if len(a.toasts) > maxToasts {
		a.toasts = a.toasts[len(a.toasts)-maxToasts:]
	}

	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{ID: id}
	})
}

func (a *AppView) dismissToast(id int) {
	for i, t := range a.toasts {
		if t.id == id {
			a.toasts = append(a.toasts[:i], a.toasts[i+1:]...)
			return
		}
	}
}

// renderToastLine shows the newest toast on a single line
func (a AppView) renderToastLine() string {
	if len(a.toasts) == 0 {
		return ""
	}

	latest := a.toasts[len(a.toasts)-1]
	text := latest.note.Title
	if latest.note.Description != "" {
		text += ": " + latest.note.Description
	}
	if more := len(a.toasts) - 1; more > 0 {
		text += fmt.Sprintf(" (+%d)", more)
	}

	if a.width > 4 {
		text = runewidth.Truncate(text, a.width-4, "…")
	}

	if latest.note.Variant == appmodel.VariantDestructive {
		return ErrorStyle.Render("✗ " + text)
	}
	return SuccessStyle.Render("✓ " + text)
}

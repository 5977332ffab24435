package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"jarvis/api"
	appmodel "jarvis/model"
	"jarvis/storage"
)

const healthCheckTimeout = 5 * time.Second

// HealthChecker reports whether the backend is reachable.
type HealthChecker interface {
	CheckHealth(ctx context.Context) (*api.HealthResponse, error)
}

type connectionState int

const (
	connectionUnknown connectionState = iota
	connectionOnline
	connectionOffline
)

func (a AppView) checkHealthCmd() tea.Cmd {
	if a.health == nil {
		return nil
	}
	checker, ctx := a.health, a.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()
		resp, err := checker.CheckHealth(ctx)
		if err != nil {
			return healthCheckedMsg{Err: err}
		}
		return healthCheckedMsg{Status: resp.Status}
	}
}

func (a AppView) scheduleHealthCheck() tea.Cmd {
	interval := a.cfg.HealthInterval
	if interval <= 0 || a.health == nil {
		return nil
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return healthTickMsg{}
	})
}

func (a AppView) exportCmd(messages []appmodel.Message) tea.Cmd {
	return func() tea.Msg {
		path := storage.GenerateExportPath(time.Now())
		if err := storage.ExportToJSON(messages, path); err != nil {
			return exportDoneMsg{Err: err}
		}
		return exportDoneMsg{Path: path}
	}
}

// yankLastResponse copies the newest assistant reply
func (a AppView) yankLastResponse() appmodel.Notification {
	reply, ok := a.store.LastAssistant()
	if !ok || reply.Content == "" {
		return appmodel.Notification{Title: "Nothing to copy", Description: "There is no reply yet."}
	}
	return copyToClipboard(reply.Content, "Copied last reply")
}

// yankConversation copies the whole conversation as plain text
func (a AppView) yankConversation() appmodel.Notification {
	if len(a.messages) == 0 {
		return appmodel.Notification{Title: "Nothing to copy", Description: "The conversation is empty."}
	}
	return copyToClipboard(formatTranscript(a.messages), "Copied conversation")
}

func copyToClipboard(text, title string) appmodel.Notification {
	if err := clipboard.WriteAll(text); err != nil {
		return appmodel.Notification{
			Title:       "Copy failed",
			Description: err.Error(),
			Variant:     appmodel.VariantDestructive,
		}
	}
	return appmodel.Notification{Title: title}
}

func formatTranscript(messages []appmodel.Message) string {
	var allText strings.Builder
	for _, msg := range messages {
		role := "System"
		switch msg.Role {
		case appmodel.RoleUser:
			role = "You"
		case appmodel.RoleAssistant:
			role = assistantName
		}
		allText.WriteString(fmt.Sprintf("[%s] %s:\n%s\n\n",
			msg.Timestamp.Local().Format("15:04"),
			role,
			msg.Content))
	}
	return allText.String()
}

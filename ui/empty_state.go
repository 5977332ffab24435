package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SuggestedPrompts are offered while the conversation is empty. The n-th
// prompt is bound to the prompt_n action.
var SuggestedPrompts = []string{
	"Who is Ankit and what does he do?",
	"What projects has Ankit built?",
	"Summarize Ankit's experience.",
	"How can I contact Ankit?",
}

func (a AppView) renderEmptyState(width int) string {
	kb := a.cfg.Keybindings

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor).
		Render("Hi, I'm " + assistantName + ".")

	subtitle := DimStyle.Render("Ask me anything about Ankit, or pick one of these:")

	var lines []string
	for i, prompt := range SuggestedPrompts {
		keyLabel := kb.DisplayActionKey(fmt.Sprintf("prompt_%d", i+1))
		lines = append(lines, fmt.Sprintf("%-7s %s", keyLabel, AssistantStyle.Render(prompt)))
	}

	list := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))

	hint := DimStyle.Render(fmt.Sprintf("Press %s for voice chat, %s for help", kb.DisplayActionKey("voice_mode"), kb.DisplayActionKey("help")))

	content := lipgloss.JoinVertical(lipgloss.Center, "", title, subtitle, "", list, "", hint)

	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// promptForKey returns the suggested prompt bound to key, if any
func (a AppView) promptForKey(key string) (string, bool) {
	kb := a.cfg.Keybindings
	for i, prompt := range SuggestedPrompts {
		if key == kb.GetActionKey(fmt.Sprintf("prompt_%d", i+1)) {
			return prompt, true
		}
	}
	return "", false
}

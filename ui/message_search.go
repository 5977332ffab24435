package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appmodel "jarvis/model"
	"jarvis/storage"
)

const flashInterval = 300 * time.Millisecond

func (a *AppView) openMessageSearch() tea.Cmd {
	a.showMessageSearch = true
	a.messageSearchInput.SetValue("")
	a.messageSearchResults = []storage.MessageMatch{}
	a.selectedSearchIdx = 0
	a.messageSearchScrollIdx = 0
	a.textarea.Blur()
	return a.messageSearchInput.Focus()
}

func (a *AppView) closeMessageSearch() {
	a.showMessageSearch = false
	a.messageSearchInput.Blur()
	if !a.loading && !a.voiceMode {
		a.textarea.Focus()
	}
}

func (a AppView) handleMessageSearchUpdate(msg tea.KeyMsg) (AppView, tea.Cmd) {
	kb := a.cfg.Keybindings

	switch msg.String() {
	case "esc":
		a.closeMessageSearch()
		return a, nil
	case "up", kb.GetActionKey("search_up"):
		if a.selectedSearchIdx > 0 {
			a.selectedSearchIdx--
		}
		if a.selectedSearchIdx < a.messageSearchScrollIdx {
			a.messageSearchScrollIdx = a.selectedSearchIdx
		}
		return a, nil
	case "down", kb.GetActionKey("search_down"):
		if a.selectedSearchIdx < len(a.messageSearchResults)-1 {
			a.selectedSearchIdx++
		}
		if visible := a.visibleSearchResults(); a.selectedSearchIdx >= a.messageSearchScrollIdx+visible {
			a.messageSearchScrollIdx = a.selectedSearchIdx - visible + 1
		}
		return a, nil
	case "enter":
		if a.selectedSearchIdx < 0 || a.selectedSearchIdx >= len(a.messageSearchResults) {
			return a, nil
		}
		match := a.messageSearchResults[a.selectedSearchIdx]
		a.closeMessageSearch()
		return a, a.jumpToMessage(match.MessageIndex)
	case kb.GetActionKey("clear_input"):
		a.messageSearchInput.SetValue("")
		a.messageSearchResults = []storage.MessageMatch{}
		return a, nil
	}

	var cmd tea.Cmd
	a.messageSearchInput, cmd = a.messageSearchInput.Update(msg)
	a.messageSearchResults = storage.SearchMessages(a.messages, a.messageSearchInput.Value())
	a.selectedSearchIdx = 0
	a.messageSearchScrollIdx = 0
	return a, cmd
}

// jumpToMessage centers message idx in the viewport and flashes a marker on it
func (a *AppView) jumpToMessage(idx int) tea.Cmd {
	a.highlightedMessageIdx = idx
	a.highlightFlashCount = 1
	a.updateViewportContent(false)

	if idx < len(a.messageOffsets) {
		offset := a.messageOffsets[idx] - a.viewport.Height/2
		maxOffset := a.viewport.TotalLineCount() - a.viewport.Height
		if offset > maxOffset {
			offset = maxOffset
		}
		if offset < 0 {
			offset = 0
		}
		a.viewport.SetYOffset(offset)
	}

	return tea.Tick(flashInterval, func(time.Time) tea.Msg {
		return flashTickMsg{}
	})
}

func (a AppView) handleFlashTick() (AppView, tea.Cmd) {
	if a.highlightFlashCount > 0 && a.highlightFlashCount < 6 {
		a.highlightFlashCount++
		a.updateViewportContent(false)
		return a, tea.Tick(flashInterval, func(time.Time) tea.Msg {
			return flashTickMsg{}
		})
	}
	a.highlightedMessageIdx = -1
	a.highlightFlashCount = 0
	a.updateViewportContent(false)
	return a, nil
}

// visibleSearchResults estimates how many results fit in the modal
func (a AppView) visibleSearchResults() int {
	// Border(2) + Padding(2) + Title(1) + Blank(1) + Input(1) + Blank(1) +
	// "Found X matches:"(1) + Blank(1) + Footer(1) + Blank(1) = 12 lines
	fixedOverhead := 12
	scrollIndicatorSpace := 4

	availableLines := a.height - fixedOverhead - scrollIndicatorSpace
	if availableLines < 3 {
		availableLines = 3
	}

	linesPerResult := 4
	visible := availableLines / linesPerResult
	if visible < 1 {
		visible = 1
	}
	return visible
}

func (a AppView) renderMessageSearch() string {
	modalWidth := a.width - 4
	if modalWidth > 100 {
		modalWidth = 100
	}

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 2)

	title := TitleStyle.Render("🔍 Search Conversation")
	searchView := a.messageSearchInput.View()

	results := a.messageSearchResults
	var resultsView strings.Builder
	if len(results) == 0 {
		if a.messageSearchInput.Value() == "" {
			resultsView.WriteString(DimStyle.Render("Type to search messages..."))
		} else {
			resultsView.WriteString(DimStyle.Render("No matches found"))
		}
	} else {
		startIdx := a.messageSearchScrollIdx
		endIdx := startIdx + a.visibleSearchResults()
		if endIdx > len(results) {
			endIdx = len(results)
		}

		resultsView.WriteString(fmt.Sprintf("Found %d matches:\n\n", len(results)))

		if startIdx > 0 {
			resultsView.WriteString(DimStyle.Render(fmt.Sprintf("↑ %d more above", startIdx)) + "\n\n")
		}

		for i := startIdx; i < endIdx; i++ {
			match := results[i]

			roleStyle := UserStyle
			roleName := "You"
			if match.Role == appmodel.RoleAssistant {
				roleStyle = AssistantStyle
				roleName = assistantName
			}

			matchText := fmt.Sprintf("%s [%s]\n  %s",
				roleStyle.Render(roleName),
				match.Timestamp.Local().Format("Jan 2, 3:04 PM"),
				match.Preview,
			)

			if i == a.selectedSearchIdx {
				matchText = SelectedStyle.Render("> " + matchText)
			} else {
				matchText = "  " + matchText
			}

			resultsView.WriteString(matchText + "\n\n")
		}

		if endIdx < len(results) {
			resultsView.WriteString(DimStyle.Render(fmt.Sprintf("↓ %d more below", len(results)-endIdx)))
		}
	}

	kb := a.cfg.Keybindings
	footer := FormatFooter("Type", "to search", kb.DisplayActionKey("search_down")+"/"+kb.DisplayActionKey("search_up"), "Navigate", "Enter", "Jump", "Esc", "Close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		searchView,
		"",
		resultsView.String(),
		"",
		footer,
	)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		modalStyle.Width(modalWidth).Render(content))
}

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ModalType determines the color and styling of a modal
type ModalType int

const (
	ModalTypeInfo ModalType = iota
	ModalTypeWarning
	ModalTypeError
)

func (t ModalType) color() lipgloss.Color {
	switch t {
	case ModalTypeWarning:
		return warningColor
	case ModalTypeError:
		return dangerColor
	default:
		return accentColor
	}
}

// RenderThreeSectionModal renders a borderless modal with title, message, and footer sections
// Title (no border) → Message (BorderTop) → Footer (BorderTop)
// messageLines are pre-formatted content lines; padding is added automatically
// desiredWidth: preferred modal width (0 = default 60)
func RenderThreeSectionModal(title string, messageLines []string, footer string, modalType ModalType, desiredWidth, width, height int) string {
	modalWidth := desiredWidth
	if modalWidth == 0 {
		modalWidth = 60
	}
	if width < modalWidth+10 {
		modalWidth = width - 10
	}
	if modalWidth < 10 {
		modalWidth = 10
	}

	// Manually centered using runewidth for accurate emoji handling
	titleVisualWidth := runewidth.StringWidth(stripANSI(title))
	leftPad := (modalWidth - titleVisualWidth) / 2
	if leftPad < 0 {
		leftPad = 0
	}
	rightPad := modalWidth - titleVisualWidth - leftPad
	if rightPad < 0 {
		rightPad = 0
	}
	centeredTitle := strings.Repeat(" ", leftPad) + title + strings.Repeat(" ", rightPad)

	titleSection := lipgloss.NewStyle().
		Bold(true).
		Foreground(modalType.color()).
		Render(centeredTitle)

	contentLines := []string{strings.Repeat(" ", modalWidth)}
	contentLines = append(contentLines, messageLines...)
	contentLines = append(contentLines, strings.Repeat(" ", modalWidth))

	messageSection := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Width(modalWidth).
		Render(strings.Join(contentLines, "\n"))

	footerSection := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(dimColor).
		Render(footer)

	content := strings.Join([]string{titleSection, messageSection, footerSection}, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// centeredLines wraps message to modalWidth and centers every line
func centeredLines(message string, modalWidth int) []string {
	style := lipgloss.NewStyle().
		Width(modalWidth).
		Align(lipgloss.Center)

	var lines []string
	for _, line := range strings.Split(wordWrap(message, modalWidth-4), "\n") {
		lines = append(lines, style.Render(line))
	}
	return lines
}

package ui

import (
	"fmt"
	"regexp"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/charmbracelet/lipgloss"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"

	appmodel "jarvis/model"
)

const (
	assistantName  = "Jarvis"
	streamCursor   = "▋"
	barGlyph       = "┃"
	minRenderWidth = 20
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
	ansiRegex       = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

// renderEntry caches rendered markdown per message id. An entry is stale
// once the content or the width it was rendered at changes.
type renderEntry struct {
	content string
	width   int
	output  string
}

type renderCache map[string]renderEntry

func (c renderCache) get(msg Message, width int) string {
	if e, ok := c[msg.ID]; ok && e.content == msg.Content && e.width == width {
		return e.output
	}
	out := renderMarkdown(msg.Content, width)
	c[msg.ID] = renderEntry{content: msg.Content, width: width, output: out}
	return out
}

func (a *AppView) updateViewportContent(gotoBottom bool) {
	width := a.viewport.Width
	if width < minRenderWidth {
		width = minRenderWidth
	}

	a.messageOffsets = a.messageOffsets[:0]

	if len(a.messages) == 0 {
		a.viewport.SetContent(a.renderEmptyState(width))
		a.viewport.GotoTop()
		return
	}

	var content strings.Builder
	last := len(a.messages) - 1

	for i, msg := range a.messages {
		a.messageOffsets = append(a.messageOffsets, strings.Count(content.String(), "\n"))

		highlightPrefix := ""
		if i == a.highlightedMessageIdx && a.highlightFlashCount%2 == 1 {
			highlightPrefix = HighlightStyle.Render(">>> ")
		}

		timestamp := DimStyle.Render(msg.Timestamp.Local().Format("[15:04]"))

		switch msg.Role {
		case appmodel.RoleUser:
			role := UserStyle.Render("You")
			body := wordWrap(msg.Content, width-4)
			content.WriteString(formatUserMessage(highlightPrefix, timestamp, role, body))

		case appmodel.RoleAssistant:
			role := AssistantStyle.Render(assistantName)
			var body string
			switch {
			case i == last && a.loading && msg.Content == "":
				// Typing indicator until the first chunk lands
				body = fmt.Sprintf("%s %s", a.loadingSpinner.View(), DimStyle.Render(assistantName+" is typing..."))
			case i == last && a.streaming:
				// Partial markdown renders badly, show raw text while streaming
				body = wordWrap(msg.Content, width-4) + streamCursor
			default:
				body = a.renderCache.get(msg, width)
			}
			content.WriteString(fmt.Sprintf("%s%s %s\n%s\n\n", highlightPrefix, timestamp, role, body))

		default:
			content.WriteString(formatSystemMessage(highlightPrefix+msg.Content, width))
		}
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func formatUserMessage(highlightPrefix, timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + barGlyph + reset

	lines := strings.Split(content, "\n")

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s%s %s %s\n", highlightPrefix, bar, timestamp, role))

	for _, line := range lines {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

// formatSystemMessage centers short notes such as "Voice chat ended"
func formatSystemMessage(text string, width int) string {
	line := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(dimColor).
		Italic(true).
		Render(text)
	return line + "\n\n"
}

// renderMarkdown renders assistant markdown for the terminal
func renderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	// Strip [text](url) down to the url so every link shows as a plain red URL
	content = preprocessLinks(content)

	// Autolink stays off so terminals handle URL detection themselves
	ext := markdown.Extensions() &^ parser.Autolink
	p := parser.NewWithExtensions(ext)
	r := markdown.NewRenderer(width-4, 0)
	rendered := gomarkdown.Render(p.Parse([]byte(content)), r)

	return strings.TrimRight(postProcessMarkdown(string(rendered), width), "\n")
}

func postProcessMarkdown(rendered string, width int) string {
	rendered = fixInlineCode(rendered)
	rendered = colorURLs(rendered)
	return frameCodeBlocks(rendered, width)
}

func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

// fixInlineCode swaps the blue background of inline code for red text
func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func colorURLs(s string) string {
	red := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		// Code block lines carry the bar prefix and stay untouched
		if !strings.Contains(line, barGlyph) {
			lines[i] = urlRegex.ReplaceAllString(line, red+"$1"+reset)
		}
	}
	return strings.Join(lines, "\n")
}

// frameCodeBlocks replaces the renderer's bar prefix on code lines with a
// top and bottom rule labelled [code]
func frameCodeBlocks(s string, width int) string {
	darkGray := "\x1b[90m"
	reset := "\x1b[0m"
	ruleLen := width - 4
	if ruleLen < 8 {
		ruleLen = 8
	}

	topRule := func() string {
		label := "[code]"
		left := (ruleLen - len(label)) / 2
		right := ruleLen - len(label) - left
		return darkGray + strings.Repeat("━", left) + reset + label + darkGray + strings.Repeat("━", right) + reset
	}
	bottomRule := darkGray + strings.Repeat("━", ruleLen) + reset

	var result []string
	inCode := false
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, barGlyph) {
			if !inCode {
				inCode = true
				result = append(result, "", topRule(), "")
			}
			result = append(result, stripCodeBlockPrefix(line))
			continue
		}
		if inCode {
			result = append(result, "", bottomRule, "")
			inCode = false
		}
		result = append(result, line)
	}
	if inCode {
		result = append(result, "", bottomRule, "")
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, barGlyph)
	if idx < 0 {
		return line
	}
	after := idx + len(barGlyph)
	if after < len(line) && line[after] == ' ' {
		after++
	}
	return line[after:]
}

// stripANSI removes ANSI escape codes for accurate length calculation
func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// wordWrap wraps text to fit within the specified width while preserving newlines
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	paragraphs := strings.Split(text, "\n")

	for i, paragraph := range paragraphs {
		words := strings.Fields(paragraph)
		if len(words) > 0 {
			currentLine := words[0]
			for _, word := range words[1:] {
				if lipgloss.Width(currentLine)+1+lipgloss.Width(word) <= width {
					currentLine += " " + word
				} else {
					result.WriteString(currentLine + "\n")
					currentLine = word
				}
			}
			result.WriteString(currentLine)
		}

		if i < len(paragraphs)-1 {
			result.WriteString("\n")
		}
	}

	return result.String()
}

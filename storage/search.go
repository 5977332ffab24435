package storage

import (
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"jarvis/model"
)

const previewRunes = 100

type MessageMatch struct {
	MessageIndex int
	Role         model.Role
	Content      string
	Preview      string
	Timestamp    time.Time
	Score        int
}

// messageSource exposes searchable messages to fuzzy, skipping system notes
type messageSource struct {
	messages []model.Message
	index    []int
}

func newMessageSource(messages []model.Message) messageSource {
	src := messageSource{messages: messages}
	for i, msg := range messages {
		if msg.Role == model.RoleSystem || msg.Content == "" {
			continue
		}
		src.index = append(src.index, i)
	}
	return src
}

func (s messageSource) String(i int) string {
	return strings.ToLower(s.messages[s.index[i]].Content)
}

func (s messageSource) Len() int {
	return len(s.index)
}

// SearchMessages ranks user and assistant messages against query.
// Messages containing query verbatim (case-insensitive) come first in
// conversation order, followed by fuzzy matches ordered by score.
func SearchMessages(messages []model.Message, query string) []MessageMatch {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []MessageMatch{}
	}

	src := newMessageSource(messages)
	var exact, loose []MessageMatch
	for _, m := range fuzzy.FindFrom(query, src) {
		idx := src.index[m.Index]
		msg := messages[idx]
		start := 0
		if len(m.MatchedIndexes) > 0 {
			start = m.MatchedIndexes[0]
		}

		match := MessageMatch{
			MessageIndex: idx,
			Role:         msg.Role,
			Content:      msg.Content,
			Timestamp:    msg.Timestamp,
			Score:        m.Score,
		}
		if pos := strings.Index(m.Str, query); pos >= 0 {
			match.Preview = preview(msg.Content, pos)
			exact = append(exact, match)
			continue
		}
		match.Preview = preview(msg.Content, start)
		loose = append(loose, match)
	}

	sort.SliceStable(exact, func(i, j int) bool {
		return exact[i].MessageIndex < exact[j].MessageIndex
	})
	return append(exact, loose...)
}

// preview cuts a window of the message around byte offset at
func preview(content string, at int) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= previewRunes {
		return content
	}

	// Guess the rune position; whitespace folding can shift it slightly
	pos := len([]rune(content[:min(at, len(content))]))
	start := pos - previewRunes/4
	if start < 0 {
		start = 0
	}
	end := start + previewRunes
	if end > len(runes) {
		end = len(runes)
		start = end - previewRunes
	}

	out := string(runes[start:end])
	if start > 0 {
		out = "..." + out
	}
	if end < len(runes) {
		out += "..."
	}
	return out
}

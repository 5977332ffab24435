package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/model"
)

func searchFixture() []model.Message {
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	return []model.Message{
		{ID: "1", Role: model.RoleUser, Content: "Who is Ankit?", Timestamp: base},
		{ID: "2", Role: model.RoleAssistant, Content: "Ankit is a software engineer.", Timestamp: base.Add(time.Second)},
		{ID: "3", Role: model.RoleSystem, Content: "Voice chat ended", Timestamp: base.Add(2 * time.Second)},
		{ID: "4", Role: model.RoleUser, Content: "What projects has ANKIT built?", Timestamp: base.Add(3 * time.Second)},
		{ID: "5", Role: model.RoleAssistant, Content: "", Timestamp: base.Add(4 * time.Second)},
	}
}

func TestSearchMessagesExactMatchesInOrder(t *testing.T) {
	matches := SearchMessages(searchFixture(), "ankit")

	require.Len(t, matches, 3)
	assert.Equal(t, 0, matches[0].MessageIndex)
	assert.Equal(t, 1, matches[1].MessageIndex)
	assert.Equal(t, 3, matches[2].MessageIndex)
	assert.Equal(t, model.RoleAssistant, matches[1].Role)
	assert.Equal(t, "What projects has ANKIT built?", matches[2].Preview)
}

func TestSearchMessagesSkipsSystemAndEmpty(t *testing.T) {
	assert.Empty(t, SearchMessages(searchFixture(), "voice chat"))
	assert.Empty(t, SearchMessages(searchFixture(), "   "))
}

func TestSearchMessagesFuzzyAfterExact(t *testing.T) {
	matches := SearchMessages(searchFixture(), "sftwr")

	require.NotEmpty(t, matches)
	assert.Equal(t, 1, matches[0].MessageIndex)
}

func TestPreviewWindow(t *testing.T) {
	long := strings.Repeat("a", 200) + " needle " + strings.Repeat("b", 200)
	at := strings.Index(long, "needle")

	got := preview(long, at)

	assert.Contains(t, got, "needle")
	assert.True(t, strings.HasPrefix(got, "..."))
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, "short text", preview("short \n text", 0))
}

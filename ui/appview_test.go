package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/api"
	"jarvis/config"
	appmodel "jarvis/model"
	"jarvis/model/testutil"
	"jarvis/storage"
	"jarvis/voice"
)

// Commands that have not produced a message by then are treated as
// long-running (ticks, change listeners) and dropped.
const cmdTimeout = 200 * time.Millisecond

type fakeHealth struct {
	err error
}

func (f fakeHealth) CheckHealth(ctx context.Context) (*api.HealthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.HealthResponse{Status: "healthy"}, nil
}

type harness struct {
	view AppView

	cfg        *config.Config
	chat       *testutil.MockChatAPI
	memory     *storage.Memory
	store      *appmodel.Store
	notes      *Notifications
	health     fakeHealth
	recognizer *voice.FakeRecognizer
	player     *voice.FakePlayer
	synth      *voice.FakeSynthesizer
}

func stoppedTicker() (<-chan time.Time, func()) {
	return make(chan time.Time), func() {}
}

func newHarness(t *testing.T, history []appmodel.Message, configure ...func(*harness)) *harness {
	t.Helper()

	h := &harness{
		cfg: &config.Config{
			HealthInterval: time.Minute,
			VoiceID:        "jarvis-en",
			Keybindings:    config.DefaultKeybindings(),
		},
		chat:       testutil.NewMockChatAPI(),
		memory:     storage.NewMemory(history...),
		notes:      NewNotifications(),
		recognizer: &voice.FakeRecognizer{},
		player:     &voice.FakePlayer{},
		synth:      &voice.FakeSynthesizer{Audio: []byte("RIFF0000WAVE")},
	}
	for _, fn := range configure {
		fn(h)
	}

	h.store = appmodel.NewStore(h.chat, h.memory, h.notes, nil)
	session := voice.NewSession(&voice.FakeMicrophone{}, h.recognizer, h.player, h.synth,
		voice.WithTempDir(t.TempDir()),
		voice.WithTicker(stoppedTicker),
		voice.WithNotifier(h.notes),
	)

	h.view = NewAppView(h.cfg, h.store, session, h.health, h.notes, nil)
	t.Cleanup(h.view.Shutdown)

	h.send(tea.WindowSizeMsg{Width: 80, Height: 24})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	model, cmd := h.view.Update(msg)
	h.view = model.(AppView)
	return cmd
}

// press sends the key bound to action, or the literal key when action is
// not a registered action
func (h *harness) press(action string) tea.Cmd {
	k := h.cfg.Keybindings.GetActionKey(action)
	if k == "" {
		k = action
	}
	return h.send(keyPress(k))
}

func (h *harness) viewport() string {
	return stripANSI(h.view.viewport.View())
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	alt := strings.HasPrefix(s, "alt+")
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(strings.TrimPrefix(s, "alt+")), Alt: alt}
}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd, flattening batches, and returns every message produced
// within cmdTimeout
func collect(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}

	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(t, c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(cmdTimeout):
		return nil
	}
}

func findMsg[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func chatHistory() []appmodel.Message {
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	return []appmodel.Message{
		{ID: "m1", Role: appmodel.RoleUser, Content: "Tell me about Ankit", Timestamp: base},
		{ID: "m2", Role: appmodel.RoleAssistant, Content: "Ankit is a software engineer.", Timestamp: base.Add(time.Second)},
		{ID: "m3", Role: appmodel.RoleUser, Content: "Thanks!", Timestamp: base.Add(2 * time.Second)},
	}
}

func TestEmptyStateOffersSuggestedPrompts(t *testing.T) {
	h := newHarness(t, nil)

	view := h.viewport()
	assert.Contains(t, view, "Hi, I'm Jarvis.")
	assert.Contains(t, view, SuggestedPrompts[0])
	assert.Contains(t, view, "Alt+1")

	cmd := h.press("prompt_1")
	require.NotNil(t, cmd)
	assert.True(t, h.view.loading)

	sent, ok := findMsg[appmodel.MessageSentMsg](collect(t, cmd))
	require.True(t, ok)
	require.NoError(t, sent.Err)

	reqs := h.chat.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, SuggestedPrompts[0], reqs[0].Message)
	assert.Equal(t, api.ModeText, reqs[0].Mode)
}

func TestSuggestedPromptsIgnoredOnceChatting(t *testing.T) {
	h := newHarness(t, chatHistory())

	assert.Nil(t, h.press("prompt_2"))
	assert.Empty(t, h.chat.Requests())
	assert.NotContains(t, h.viewport(), "Hi, I'm Jarvis.")
}

func TestEnterSendsTypedMessage(t *testing.T) {
	h := newHarness(t, nil)

	h.send(typeText("Hello"))
	assert.Equal(t, "Hello", h.view.textarea.Value())

	cmd := h.press("enter")
	require.NotNil(t, cmd)
	assert.Empty(t, h.view.textarea.Value())
	assert.True(t, h.view.loading)

	sent, ok := findMsg[appmodel.MessageSentMsg](collect(t, cmd))
	require.True(t, ok)
	h.send(sent)

	assert.False(t, h.view.loading)
	require.Len(t, h.view.messages, 2)
	assert.Equal(t, "Hello", h.view.messages[0].Content)
	assert.Equal(t, "Mock response", h.view.messages[1].Content)
	assert.Contains(t, h.viewport(), "Mock response")
}

func TestBlankEnterDoesNothing(t *testing.T) {
	h := newHarness(t, nil)

	h.send(typeText("   "))
	assert.Nil(t, h.press("enter"))
	assert.False(t, h.view.loading)
	assert.Empty(t, h.chat.Requests())
}

func TestInputIgnoredWhileLoading(t *testing.T) {
	h := newHarness(t, nil)
	release := make(chan struct{})
	h.chat.SendChatFunc = func(ctx context.Context, req api.ChatRequest, onChunk api.ChunkCallback) (string, error) {
		<-release
		return "done", nil
	}

	cmd := h.view.store.SendMessageCmd(context.Background(), "first", appmodel.ModeText)
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	require.Eventually(t, h.store.IsLoading, time.Second, 5*time.Millisecond)
	h.send(appmodel.StoreChangedMsg{})

	h.send(typeText("second"))
	assert.Empty(t, h.view.textarea.Value())
	assert.Nil(t, h.press("enter"))

	close(release)
	h.send(<-done)
	assert.Len(t, h.chat.Requests(), 1)
}

func TestStreamingReplyShowsCursor(t *testing.T) {
	h := newHarness(t, nil)
	firstChunk := make(chan struct{})
	release := make(chan struct{})
	h.chat.SendChatFunc = func(ctx context.Context, req api.ChatRequest, onChunk api.ChunkCallback) (string, error) {
		<-firstChunk
		onChunk("Hel")
		<-release
		onChunk("lo there")
		return "Hello there", nil
	}

	cmd := h.view.store.SendMessageCmd(context.Background(), "Hi", appmodel.ModeText)
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	require.Eventually(t, func() bool { return len(h.store.Messages()) == 2 }, time.Second, 5*time.Millisecond)
	h.send(appmodel.StoreChangedMsg{})
	assert.Contains(t, h.viewport(), "Jarvis is typing...")

	close(firstChunk)
	require.Eventually(t, func() bool {
		msgs := h.store.Messages()
		return msgs[len(msgs)-1].Content == "Hel"
	}, time.Second, 5*time.Millisecond)
	h.send(appmodel.StoreChangedMsg{})
	assert.Contains(t, h.viewport(), "Hel"+streamCursor)

	close(release)
	h.send(<-done)
	view := h.viewport()
	assert.Contains(t, view, "Hello there")
	assert.NotContains(t, view, streamCursor)
	assert.NotContains(t, view, "is typing")
}

func TestFailedSendShowsFallbackAndToast(t *testing.T) {
	h := newHarness(t, nil)
	h.chat.SendChatFunc = func(ctx context.Context, req api.ChatRequest, onChunk api.ChunkCallback) (string, error) {
		return "", errors.New("connection refused")
	}

	h.send(typeText("Hello"))
	sent, ok := findMsg[appmodel.MessageSentMsg](collect(t, h.press("enter")))
	require.True(t, ok)
	require.Error(t, sent.Err)
	h.send(sent)

	assert.Contains(t, h.viewport(), "Sorry, I encountered an error")

	note, ok := findMsg[appmodel.NotificationMsg](collect(t, h.notes.Wait(context.Background())))
	require.True(t, ok)
	h.send(note)
	assert.Contains(t, stripANSI(h.view.renderToastLine()), "Failed to send message")
}

func TestClearChatAsksForConfirmation(t *testing.T) {
	h := newHarness(t, testutil.TestMessages(2))

	assert.Nil(t, h.press("clear_chat"))
	assert.True(t, h.view.confirmClear)
	assert.Contains(t, stripANSI(h.view.View()), "Clear conversation?")

	h.press("n")
	assert.False(t, h.view.confirmClear)
	assert.Equal(t, 0, h.chat.NewChatCalls())
	assert.Len(t, h.view.messages, 2)

	h.press("clear_chat")
	cmd := h.press("y")
	require.NotNil(t, cmd)

	cleared, ok := findMsg[appmodel.ChatClearedMsg](collect(t, cmd))
	require.True(t, ok)
	require.NoError(t, cleared.Err)
	h.send(cleared)

	assert.Equal(t, 1, h.chat.NewChatCalls())
	assert.Empty(t, h.view.messages)
	assert.Contains(t, h.viewport(), "Hi, I'm Jarvis.")
}

func TestClearChatIgnoredWhenEmpty(t *testing.T) {
	h := newHarness(t, nil)

	h.press("clear_chat")
	assert.False(t, h.view.confirmClear)
}

func TestHelpToggles(t *testing.T) {
	h := newHarness(t, nil)

	h.press("help")
	require.True(t, h.view.showHelp)
	assert.Contains(t, stripANSI(h.view.View()), "Keyboard Shortcuts")

	h.press("esc")
	assert.False(t, h.view.showHelp)
}

func TestQuitReturnsQuitCmd(t *testing.T) {
	h := newHarness(t, nil)

	msgs := collect(t, h.press("ctrl+c"))
	_, ok := findMsg[tea.QuitMsg](msgs)
	assert.True(t, ok)
}

func TestHealthIndicator(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "reachable", want: "● Connected"},
		{name: "unreachable", err: errors.New("dial tcp: connection refused"), want: "● Offline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil, func(h *harness) {
				h.health = fakeHealth{err: tt.err}
			})
			assert.Contains(t, stripANSI(h.view.renderTitle()), "Connecting...")

			checked, ok := findMsg[healthCheckedMsg](collect(t, h.view.checkHealthCmd()))
			require.True(t, ok)
			h.send(checked)

			assert.Contains(t, stripANSI(h.view.renderTitle()), tt.want)
		})
	}
}

func TestYankWithNothingToCopy(t *testing.T) {
	h := newHarness(t, nil)

	assert.Equal(t, "Nothing to copy", h.view.yankLastResponse().Title)
	assert.Equal(t, "Nothing to copy", h.view.yankConversation().Title)
}

func TestFormatTranscript(t *testing.T) {
	got := formatTranscript(chatHistory())

	assert.Contains(t, got, "You:\nTell me about Ankit\n\n")
	assert.Contains(t, got, "Jarvis:\nAnkit is a software engineer.\n\n")
	assert.Equal(t, 3, strings.Count(got, "] "))
}

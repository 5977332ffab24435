package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/api"
	appmodel "jarvis/model"
	"jarvis/voice"
)

func TestVoiceRoundTrip(t *testing.T) {
	h := newHarness(t, nil)

	h.press("voice_mode")
	require.True(t, h.view.voiceMode)
	assert.False(t, h.view.textarea.Focused())
	assert.Contains(t, stripANSI(h.view.View()), "to start recording")

	started, ok := findMsg[recordingStartedMsg](collect(t, h.press("voice_record")))
	require.True(t, ok)
	require.NoError(t, started.Err)
	h.send(started)
	require.Equal(t, voice.StateRecording, h.view.voiceState)
	assert.Contains(t, stripANSI(h.view.View()), "● Recording")

	h.recognizer.Emit("What is new", true)
	h.press("voice_record")
	require.Equal(t, voice.StateReview, h.view.voiceState)
	assert.Equal(t, "What is new", h.view.transcriptInput.Value())

	// The transcript stays editable in review
	h.send(typeText("?"))
	assert.Equal(t, "What is new?", h.view.voice.Transcript())

	sent, ok := findMsg[appmodel.MessageSentMsg](collect(t, h.press("enter")))
	require.True(t, ok)
	assert.Equal(t, voice.StateIdle, h.view.voice.State())

	reqs := h.chat.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, api.ChatRequest{Message: "What is new?", Mode: api.ModeVoice}, reqs[0])

	played, ok := findMsg[playbackDoneMsg](collect(t, h.send(sent)))
	require.True(t, ok)
	require.NoError(t, played.Err)
	h.send(played)

	assert.Equal(t, []api.VoiceRequest{{Text: "Mock response", Voice: "jarvis-en"}}, h.synth.Requests())
	assert.Len(t, h.player.Played(), 1)
	assert.False(t, h.view.voicePlaying)

	h.press("esc")
	assert.False(t, h.view.voiceMode)
	assert.True(t, h.view.textarea.Focused())

	msgs := h.store.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, appmodel.RoleSystem, msgs[2].Role)
	assert.Equal(t, voiceChatEnded, msgs[2].Content)
}

func TestTextRepliesAreNotSpoken(t *testing.T) {
	h := newHarness(t, nil)

	h.send(typeText("Hello"))
	sent, ok := findMsg[appmodel.MessageSentMsg](collect(t, h.press("enter")))
	require.True(t, ok)

	_, played := findMsg[playbackDoneMsg](collect(t, h.send(sent)))
	assert.False(t, played)
	assert.Empty(t, h.synth.Requests())
}

func TestVoiceReplyNotSpokenAfterLeavingVoiceMode(t *testing.T) {
	h := newHarness(t, nil)
	h.press("voice_mode")
	h.press("esc")

	cmd := h.send(appmodel.MessageSentMsg{Reply: "late reply", Mode: appmodel.ModeVoice})
	_, played := findMsg[playbackDoneMsg](collect(t, cmd))
	assert.False(t, played)
	assert.Empty(t, h.synth.Requests())
}

func TestVoiceDiscardReturnsToIdle(t *testing.T) {
	h := newHarness(t, nil)
	h.press("voice_mode")

	started, ok := findMsg[recordingStartedMsg](collect(t, h.press("voice_record")))
	require.True(t, ok)
	h.send(started)
	h.recognizer.Emit("never mind", true)

	h.press("voice_discard")
	assert.Equal(t, voice.StateIdle, h.view.voiceState)
	assert.Empty(t, h.view.voice.Transcript())
	assert.Nil(t, h.press("enter"))
	assert.Empty(t, h.chat.Requests())
}

func TestVoiceUnsupported(t *testing.T) {
	h := newHarness(t, nil, func(h *harness) {
		h.recognizer.Unavailable = true
	})
	h.press("voice_mode")

	assert.Contains(t, stripANSI(h.view.View()), "not supported on this device")

	started, ok := findMsg[recordingStartedMsg](collect(t, h.press("voice_record")))
	require.True(t, ok)
	assert.ErrorIs(t, started.Err, voice.ErrNotSupported)
	h.send(started)
	assert.Equal(t, voice.StateIdle, h.view.voiceState)
}

func TestSearchDisabledInVoiceMode(t *testing.T) {
	h := newHarness(t, chatHistory())
	h.press("voice_mode")

	h.press("search_messages")
	assert.False(t, h.view.showMessageSearch)
}

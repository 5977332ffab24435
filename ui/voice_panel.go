package ui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	appmodel "jarvis/model"
	"jarvis/voice"
)

const voiceChatEnded = "Voice chat ended"

func (a *AppView) enterVoiceMode() {
	a.voiceMode = true
	a.textarea.Blur()
	a.syncVoice()
}

// leaveVoiceMode abandons any recording or playback and notes it in the chat
func (a *AppView) leaveVoiceMode() {
	a.voiceMode = false
	a.voice.DiscardRecording()
	a.voice.StopPlayback()
	a.transcriptInput.Reset()
	a.transcriptInput.Blur()
	a.store.AddSystemMessage(voiceChatEnded)
	if !a.loading {
		a.textarea.Focus()
	}
}

// syncVoice copies the session state into the view. The transcript editor
// is loaded once, on entering review.
func (a *AppView) syncVoice() {
	prev := a.voiceState
	a.voiceState = a.voice.State()
	a.voicePlaying = a.voice.IsPlaying()

	switch {
	case a.voiceState == voice.StateReview && prev != voice.StateReview:
		a.transcriptInput.SetValue(a.voice.Transcript())
		a.transcriptInput.CursorEnd()
		a.transcriptInput.Focus()
	case a.voiceState != voice.StateReview && prev == voice.StateReview:
		a.transcriptInput.Reset()
		a.transcriptInput.Blur()
	}
}

func (a AppView) handleVoiceKey(msg tea.KeyMsg) (AppView, tea.Cmd) {
	kb := a.cfg.Keybindings

	switch msg.String() {
	case "esc":
		a.leaveVoiceMode()
		return a, nil

	case kb.GetActionKey("voice_record"):
		switch a.voiceState {
		case voice.StateIdle:
			return a, a.startRecordingCmd()
		case voice.StateRecording:
			a.voice.StopRecording()
			a.syncVoice()
		}
		return a, nil

	case kb.GetActionKey("voice_discard"):
		a.voice.DiscardRecording()
		a.syncVoice()
		return a, nil

	case kb.GetActionKey("stop_playback"):
		a.voice.StopPlayback()
		a.syncVoice()
		return a, nil

	case "enter":
		if a.voiceState != voice.StateReview || a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.voice.Send(func(text string) {
			cmd = a.store.SendMessageCmd(a.ctx, text, appmodel.ModeVoice)
		})
		a.syncVoice()
		return a, cmd
	}

	if a.voiceState == voice.StateReview {
		var cmd tea.Cmd
		a.transcriptInput, cmd = a.transcriptInput.Update(msg)
		a.voice.SetTranscript(a.transcriptInput.Value())
		return a, cmd
	}

	return a, nil
}

func (a AppView) startRecordingCmd() tea.Cmd {
	session, ctx := a.voice, a.ctx
	return func() tea.Msg {
		return recordingStartedMsg{Err: session.StartRecording(ctx)}
	}
}

// speakCmd reads reply aloud. It blocks until playback finishes.
func (a AppView) speakCmd(reply string) tea.Cmd {
	session, ctx, voiceID := a.voice, a.ctx, a.cfg.VoiceID
	return func() tea.Msg {
		return playbackDoneMsg{Err: session.PlayText(ctx, reply, voiceID)}
	}
}

// waitForVoiceChange yields voiceChangedMsg on the next session change
func (a AppView) waitForVoiceChange() tea.Cmd {
	changes, ctx := a.voice.Changes(), a.ctx
	return func() tea.Msg {
		select {
		case <-changes:
			return voiceChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (a AppView) logVoiceResult(op string, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	// The session already raised a notification for the user
	a.logger.Debug("voice operation failed", zap.String("op", op), zap.Error(err))
}

func (a AppView) renderVoicePanel(width, height int) string {
	kb := a.cfg.Keybindings
	panelWidth := 70
	if width < panelWidth+4 {
		panelWidth = width - 4
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor).
		Render("🎙  Voice Chat")

	var body []string
	switch a.voiceState {
	case voice.StateIdle:
		if !a.voice.Supported() {
			body = append(body, ErrorStyle.Render("Voice input is not supported on this device."))
			body = append(body, DimStyle.Render("Set voice.stt_command in config.toml to enable it."))
			break
		}
		body = append(body, "Press "+TitleStyle.Render(kb.DisplayActionKey("voice_record"))+" to start recording")

	case voice.StateRecording:
		body = append(body, RecordingStyle.Render("● Recording")+"  "+TitleStyle.Render(voice.FormatElapsed(a.voice.Elapsed())))
		body = append(body, "")
		transcript := a.voice.Transcript()
		if transcript == "" {
			body = append(body, DimStyle.Render("Listening..."))
		} else {
			body = append(body, wordWrap(transcript, panelWidth-4))
		}

	case voice.StateProcessing:
		body = append(body, a.loadingSpinner.View()+" Processing...")

	case voice.StateReview:
		body = append(body, AssistantStyle.Render("Review your message"))
		body = append(body, "")
		body = append(body, a.transcriptInput.View())
	}

	if a.loading {
		body = append(body, "", a.loadingSpinner.View()+" "+DimStyle.Render(assistantName+" is thinking..."))
	}
	if a.voicePlaying {
		body = append(body, "", a.loadingSpinner.View()+" "+AssistantStyle.Render(assistantName+" is speaking"))
	}

	if reply, ok := a.store.LastAssistant(); ok && reply.Content != "" && !a.loading {
		body = append(body, "", DimStyle.Render("Last reply:"))
		body = append(body, wordWrap(truncateRunes(reply.Content, 280), panelWidth-4))
	}

	var footer string
	switch a.voiceState {
	case voice.StateRecording:
		footer = FormatFooter(kb.DisplayActionKey("voice_record"), "Stop", kb.DisplayActionKey("voice_discard"), "Discard", "Esc", "Back")
	case voice.StateReview:
		footer = FormatFooter("Enter", "Send", kb.DisplayActionKey("voice_discard"), "Discard", "Esc", "Back")
	default:
		footer = FormatFooter(kb.DisplayActionKey("voice_record"), "Record", "Esc", "Back")
	}
	if a.voicePlaying {
		footer += "  " + FormatFooter(kb.DisplayActionKey("stop_playback"), "Stop audio")
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		strings.Join(body, "\n"),
		"",
		footer,
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		Width(panelWidth)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box.Render(content))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

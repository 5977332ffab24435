package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	appmodel "jarvis/model"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		a.updateViewportContent(true)
		return a, nil

	case spinner.TickMsg:
		if !a.needsSpinner() {
			a.spinning = false
			return a, nil
		}
		var cmd tea.Cmd
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		if a.loading && !a.voiceMode {
			a.updateViewportContent(true)
		}
		return a, cmd

	case appmodel.StoreChangedMsg:
		atBottom := a.viewport.AtBottom() || a.loading
		a.syncFromStore()
		a.updateViewportContent(atBottom)
		cmds := []tea.Cmd{a.store.WaitForChange(a.ctx)}
		if a.needsSpinner() {
			cmds = append(cmds, a.startSpinner())
		}
		return a, tea.Batch(cmds...)

	case voiceChangedMsg:
		a.syncVoice()
		cmds := []tea.Cmd{a.waitForVoiceChange()}
		if a.needsSpinner() {
			cmds = append(cmds, a.startSpinner())
		}
		return a, tea.Batch(cmds...)

	case appmodel.NotificationMsg:
		return a, tea.Batch(a.pushToast(msg.Notification), a.notifications.Wait(a.ctx))

	case toastExpiredMsg:
		a.dismissToast(msg.ID)
		return a, nil

	case appmodel.MessageSentMsg:
		return a.handleMessageSent(msg)

	case appmodel.ChatClearedMsg:
		if msg.Err == nil {
			a.renderCache = renderCache{}
			a.highlightedMessageIdx = -1
		} else {
			a.logger.Debug("clear chat failed", zap.Error(msg.Err))
		}
		a.syncFromStore()
		a.updateViewportContent(true)
		return a, nil

	case recordingStartedMsg:
		a.logVoiceResult("record", msg.Err)
		a.syncVoice()
		return a, nil

	case playbackDoneMsg:
		a.logVoiceResult("playback", msg.Err)
		a.syncVoice()
		return a, nil

	case healthTickMsg:
		return a, a.checkHealthCmd()

	case healthCheckedMsg:
		if msg.Err != nil {
			if a.connection != connectionOffline {
				a.logger.Warn("backend unreachable", zap.Error(msg.Err))
			}
			a.connection = connectionOffline
		} else {
			a.connection = connectionOnline
		}
		return a, a.scheduleHealthCheck()

	case exportDoneMsg:
		if msg.Err != nil {
			a.logger.Error("export failed", zap.Error(msg.Err))
			return a, a.pushToast(appmodel.Notification{
				Title:       "Export failed",
				Description: msg.Err.Error(),
				Variant:     appmodel.VariantDestructive,
			})
		}
		return a, a.pushToast(appmodel.Notification{Title: "Exported", Description: msg.Path})

	case flashTickMsg:
		return a.handleFlashTick()

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// Anything else (cursor blink and friends) goes to the focused input
	var cmd tea.Cmd
	switch {
	case a.showMessageSearch:
		a.messageSearchInput, cmd = a.messageSearchInput.Update(msg)
	case a.voiceMode:
		a.transcriptInput, cmd = a.transcriptInput.Update(msg)
	default:
		a.textarea, cmd = a.textarea.Update(msg)
	}
	return a, cmd
}

func (a AppView) handleMessageSent(msg appmodel.MessageSentMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.Err, appmodel.ErrBusy) {
		return a, nil
	}
	if msg.Err != nil {
		// The store already replaced the placeholder and raised a toast
		a.logger.Debug("send failed", zap.Error(msg.Err))
	}

	a.syncFromStore()
	a.updateViewportContent(true)

	// Speak the final reply only once it is complete
	if msg.Err == nil && msg.Mode == appmodel.ModeVoice && a.voiceMode && strings.TrimSpace(msg.Reply) != "" {
		return a, tea.Batch(a.speakCmd(msg.Reply), a.startSpinner())
	}
	return a, nil
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.cfg.Keybindings
	keyStr := msg.String()

	// PRIORITY 0: quit works everywhere
	if keyStr == "ctrl+c" || keyStr == kb.GetActionKey("quit") {
		a.Shutdown()
		return a, tea.Quit
	}

	// PRIORITY 1: modals swallow every other key
	if a.confirmClear {
		switch keyStr {
		case "y", "Y":
			a.confirmClear = false
			return a, a.store.ClearChatCmd(a.ctx)
		case "n", "N", "esc":
			a.confirmClear = false
		}
		return a, nil
	}

	if keyStr == kb.GetActionKey("help") {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		if keyStr == "esc" {
			a.showHelp = false
		}
		return a, nil
	}

	if a.showMessageSearch {
		var cmd tea.Cmd
		a, cmd = a.handleMessageSearchUpdate(msg)
		return a, cmd
	}

	// PRIORITY 2: global actions
	switch keyStr {
	case kb.GetActionKey("voice_mode"):
		if a.voiceMode {
			a.leaveVoiceMode()
		} else {
			a.enterVoiceMode()
		}
		return a, nil

	case kb.GetActionKey("search_messages"):
		if a.voiceMode {
			return a, nil
		}
		return a, a.openMessageSearch()

	case kb.GetActionKey("clear_chat"):
		if a.loading || len(a.messages) == 0 {
			return a, nil
		}
		a.confirmClear = true
		return a, nil

	case kb.GetActionKey("yank_last_response"):
		return a, a.pushToast(a.yankLastResponse())

	case kb.GetActionKey("yank_conversation"):
		return a, a.pushToast(a.yankConversation())

	case kb.GetActionKey("export_chat"):
		if len(a.messages) == 0 {
			return a, nil
		}
		return a, a.exportCmd(a.messages)
	}

	if a.voiceMode {
		var cmd tea.Cmd
		a, cmd = a.handleVoiceKey(msg)
		return a, cmd
	}

	// PRIORITY 3: chat scrolling
	switch keyStr {
	case kb.GetActionKey("scroll_down"):
		a.viewport.LineDown(1)
		return a, nil
	case kb.GetActionKey("scroll_up"):
		a.viewport.LineUp(1)
		return a, nil
	case kb.GetActionKey("half_page_down"):
		a.viewport.HalfViewDown()
		return a, nil
	case kb.GetActionKey("half_page_up"):
		a.viewport.HalfViewUp()
		return a, nil
	case kb.GetActionKey("page_down"), "pgdown":
		a.viewport.ViewDown()
		return a, nil
	case kb.GetActionKey("page_up"), "pgup":
		a.viewport.ViewUp()
		return a, nil
	case kb.GetActionKey("scroll_to_top"):
		a.viewport.GotoTop()
		return a, nil
	case kb.GetActionKey("scroll_to_bottom"):
		a.viewport.GotoBottom()
		return a, nil
	case kb.GetActionKey("clear_input"):
		a.textarea.Reset()
		return a, nil
	}

	// PRIORITY 4: the input
	if prompt, ok := a.promptForKey(keyStr); ok {
		if len(a.messages) > 0 {
			return a, nil
		}
		return a.submit(prompt)
	}

	if keyStr == "enter" {
		return a.submit(a.textarea.Value())
	}

	if a.loading {
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

// submit sends content as a text-mode message. Blank input and sends while a
// reply is pending are ignored.
func (a AppView) submit(content string) (tea.Model, tea.Cmd) {
	if a.loading || strings.TrimSpace(content) == "" {
		return a, nil
	}
	a.textarea.Reset()
	a.textarea.Blur()
	// Optimistic until the store's change event arrives
	a.loading = true
	return a, tea.Batch(a.store.SendMessageCmd(a.ctx, content, appmodel.ModeText), a.startSpinner())
}

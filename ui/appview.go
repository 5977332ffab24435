package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"jarvis/config"
	appmodel "jarvis/model"
	"jarvis/storage"
	"jarvis/voice"
)

// Title (1) + toast line (1) + textarea (3) + status bar (1)
const chromeHeight = 6

type AppView struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg           *config.Config
	store         *appmodel.Store
	voice         *voice.Session
	health        HealthChecker
	notifications *Notifications
	logger        *zap.Logger

	// UI Components
	viewport        viewport.Model
	textarea        textarea.Model
	transcriptInput textinput.Model
	loadingSpinner  spinner.Model
	spinning        bool

	// Window state
	width  int
	height int
	ready  bool

	// Snapshot of the store, refreshed on every change event
	messages       []appmodel.Message
	loading        bool
	streaming      bool
	renderCache    renderCache
	messageOffsets []int

	connection connectionState

	confirmClear bool
	showHelp     bool

	toasts      []toast
	nextToastID int

	voiceMode    bool
	voiceState   voice.State
	voicePlaying bool

	showMessageSearch      bool
	messageSearchInput     textinput.Model
	messageSearchResults   []storage.MessageMatch
	selectedSearchIdx      int
	messageSearchScrollIdx int

	highlightedMessageIdx int
	highlightFlashCount   int
}

func NewAppView(cfg *config.Config, store *appmodel.Store, session *voice.Session, health HealthChecker, notifications *Notifications, logger *zap.Logger) AppView {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifications == nil {
		notifications = NewNotifications()
	}
	if cfg.Keybindings == nil {
		cfg.Keybindings = config.DefaultKeybindings()
	}
	if session == nil {
		session = voice.NewSession(nil, nil, nil, nil)
	}

	ctx, cancel := context.WithCancel(context.Background())

	ta := textarea.New()
	ta.Placeholder = "Ask " + assistantName + " anything..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline, Enter alone sends (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	transcriptInput := textinput.New()
	transcriptInput.Prompt = "✎ "
	transcriptInput.CharLimit = 2000

	messageSearchInput := textinput.New()
	messageSearchInput.Prompt = "Search: "
	messageSearchInput.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AssistantStyle

	a := AppView{
		ctx:                   ctx,
		cancel:                cancel,
		cfg:                   cfg,
		store:                 store,
		voice:                 session,
		health:                health,
		notifications:         notifications,
		logger:                logger,
		viewport:              viewport.New(0, 0),
		textarea:              ta,
		transcriptInput:       transcriptInput,
		loadingSpinner:        sp,
		renderCache:           renderCache{},
		messageSearchInput:    messageSearchInput,
		highlightedMessageIdx: -1,
	}
	a.syncFromStore()
	return a
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		a.store.WaitForChange(a.ctx),
		a.waitForVoiceChange(),
		a.notifications.Wait(a.ctx),
		a.checkHealthCmd(),
	)
}

// syncFromStore refreshes the snapshot and enables input once idle
func (a *AppView) syncFromStore() {
	a.messages = a.store.Messages()
	a.loading = a.store.IsLoading()
	a.streaming = a.store.IsStreaming()

	if a.loading {
		a.textarea.Blur()
	} else if !a.voiceMode && !a.showMessageSearch && !a.textarea.Focused() {
		a.textarea.Focus()
	}
}

// startSpinner starts ticking the shared spinner if it is not already
func (a *AppView) startSpinner() tea.Cmd {
	if a.spinning {
		return nil
	}
	a.spinning = true
	return a.loadingSpinner.Tick
}

func (a AppView) needsSpinner() bool {
	return a.loading || a.voicePlaying || a.voiceState == voice.StateProcessing
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading " + assistantName + "..."
	}

	// Modal layers, top first
	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}
	if a.confirmClear {
		return RenderConfirmationModal(clearChatConfirmation(), a.width, a.height)
	}
	if a.showMessageSearch {
		return a.renderMessageSearch()
	}

	title := a.renderTitle()
	toastLine := a.renderToastLine()

	if a.voiceMode {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			toastLine,
			a.renderVoicePanel(a.width, a.height-3),
			a.renderStatusBar(),
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		toastLine,
		a.viewport.View(),
		a.textarea.View(),
		a.renderStatusBar(),
	)
}

func (a AppView) renderTitle() string {
	title := AssistantStyle.Bold(true).Render("JARVIS") + TitleStyle.Render(" - Personal Assistant")

	var status string
	switch a.connection {
	case connectionOnline:
		status = SuccessStyle.Render("● Connected")
	case connectionOffline:
		status = ErrorStyle.Render("● Offline")
	default:
		status = DimStyle.Render("○ Connecting...")
	}
	title += DimStyle.Render(" | ") + status

	if a.voiceMode {
		title += DimStyle.Render(" | ") + UserStyle.Render("🎙 Voice")
	}
	return title
}

func (a AppView) renderStatusBar() string {
	kb := a.cfg.Keybindings
	if a.voiceMode {
		return formatStatusBar(
			kb.DisplayActionKey("voice_record"), "Record/Stop",
			"Enter", "Send",
			kb.DisplayActionKey("voice_discard"), "Discard",
			kb.DisplayActionKey("stop_playback"), "Stop audio",
			"Esc", "Text chat",
		)
	}
	return formatStatusBar(
		kb.DisplayActionKey("quit"), "Quit",
		kb.DisplayActionKey("help"), "Help",
		kb.DisplayActionKey("voice_mode"), "Voice",
		kb.DisplayActionKey("search_messages"), "Search",
		kb.DisplayActionKey("clear_chat"), "Clear",
		kb.DisplayActionKey("yank_last_response"), "Copy",
		"Enter", "Send",
	)
}

func (a *AppView) resize(width, height int) {
	a.width = width
	a.height = height

	viewportHeight := height - chromeHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	a.viewport.Width = width
	a.viewport.Height = viewportHeight
	a.textarea.SetWidth(width)

	inputWidth := 66
	if width < inputWidth+8 {
		inputWidth = width - 8
	}
	a.transcriptInput.Width = inputWidth

	a.ready = true
}

// Shutdown cancels in-flight requests and stops voice activity.
func (a AppView) Shutdown() {
	a.cancel()
	a.voice.Close()
}

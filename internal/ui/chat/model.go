// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/mentor-tui/internal/backend"
	"github.com/jeranaias/mentor-tui/internal/config"
	"github.com/jeranaias/mentor-tui/internal/controller"
	"github.com/jeranaias/mentor-tui/internal/session"
	"github.com/jeranaias/mentor-tui/internal/storage"
	"github.com/jeranaias/mentor-tui/internal/ui/components"
	"github.com/jeranaias/mentor-tui/internal/ui/styles"
	"github.com/jeranaias/mentor-tui/internal/util"
)

// =============================================================================
// VIEW STATE
// =============================================================================

// View selects which pane fills the main area.
type View int

const (
	ViewChat View = iota
	ViewSidebar
	ViewDashboard
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the mentor TUI.
type Model struct {
	ctrl     *controller.Controller
	store    *storage.ConversationStore
	progress *storage.ProgressStore
	sessions *session.Manager
	client   *backend.Client

	timeout    time.Duration
	storageDir string

	view    View
	width   int
	height  int
	keyMap  KeyMap
	display config.Display

	// sidebarFiltering routes typed keys into the search query.
	sidebarFiltering bool
	sidebarQuery     string

	// follow throttles spinner-driven transcript re-renders.
	follow *util.Throttle

	viewport   viewport.Model
	input      components.InputPanel
	transcript *components.Transcript
	sidebar    *components.Sidebar
	dashboard  *components.Dashboard
	statusBar  *components.StatusBar
	spinner    components.ThinkingSpinner
	toasts     *components.ToastManager

	// editTurnID is set while the input holds a user turn being edited;
	// the next submit resubmits that turn instead of appending.
	editTurnID string
}

// Deps carries the wired services the model drives.
type Deps struct {
	Controller *controller.Controller
	Store      *storage.ConversationStore
	Progress   *storage.ProgressStore
	Sessions   *session.Manager
	Client     *backend.Client
	Config     *config.Config
}

// New creates the chat model.
func New(deps Deps) Model {
	vp := viewport.New(80, 20)

	m := Model{
		ctrl:       deps.Controller,
		store:      deps.Store,
		progress:   deps.Progress,
		sessions:   deps.Sessions,
		client:     deps.Client,
		timeout:    deps.Config.BackendTimeout(),
		storageDir: deps.Config.Storage.Dir,
		display:    deps.Config.Display,
		follow:     util.NewThrottle(80 * time.Millisecond),
		keyMap:     DefaultKeyMap(),
		viewport:   vp,
		input:      components.NewInputPanel(),
		transcript: components.NewTranscript(deps.Config.Display.WrapWidth),
		sidebar:    components.NewSidebar(deps.Config.Display.SidebarWidth),
		dashboard:  components.NewDashboard(80),
		statusBar:  components.NewStatusBar(),
		spinner:    components.NewThinkingSpinner(),
		toasts:     components.NewToastManager(),
	}
	m.syncStatusBar()
	return m
}

// Init starts the cursor blink, and loads the pinned conversation list when
// the sidebar is configured to stay visible.
func (m Model) Init() tea.Cmd {
	if m.display.ShowSidebar {
		return tea.Batch(textinput.Blink, listConversationsCmd(m.store))
	}
	return textinput.Blink
}

// Update routes messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ExchangeResultMsg:
		return m.handleExchangeResult(msg)

	case ConversationsListedMsg:
		if msg.Err != nil {
			m.toasts.AddError("Could not list conversations: " + msg.Err.Error())
			return m, components.ToastTickCmd()
		}
		m.sidebar.SetItems(msg.Items)
		return m, nil

	case ConversationLoadedMsg:
		return m.handleConversationLoaded(msg)

	case ConversationSavedMsg:
		if msg.Err != nil {
			m.toasts.AddError("Save failed: " + msg.Err.Error())
			return m, components.ToastTickCmd()
		}
		return m, nil

	case ConversationExportedMsg:
		if msg.Err != nil {
			m.toasts.AddError("Export failed: " + msg.Err.Error())
		} else {
			m.toasts.AddInfo("Exported to " + msg.Path)
		}
		return m, components.ToastTickCmd()

	case StatsMsg:
		if msg.Err != nil {
			m.toasts.AddError("Could not load progress: " + msg.Err.Error())
			return m, components.ToastTickCmd()
		}
		m.dashboard.SetStats(msg.Stats, msg.Recent)
		return m, nil

	case SpeechSavedMsg:
		if msg.Err != nil {
			m.toasts.AddError("Speech failed: " + msg.Err.Error())
		} else {
			m.toasts.AddInfo("Audio saved to " + msg.Path)
		}
		return m, components.ToastTickCmd()

	case TranscriptMsg:
		if msg.Err != nil {
			m.toasts.AddError("Transcription failed: " + msg.Err.Error())
			return m, components.ToastTickCmd()
		}
		m.input.SetValue(msg.Text)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.follow.Run(m.refreshTranscript)
		return m, cmd

	case DisplayUpdatedMsg:
		m.display = msg.Display
		styles.ApplyTheme(msg.Display.Theme)
		nm, cmd := m.applyLayout()
		if msg.Display.ShowSidebar {
			return nm, tea.Batch(cmd, listConversationsCmd(m.store))
		}
		return nm, cmd

	case components.ToastTickMsg:
		if m.toasts.Tick(msg.Time) {
			return m, components.ToastTickCmd()
		}
		return m, nil
	}

	if m.view == ViewChat {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	return m.applyLayout()
}

// applyLayout recomputes every pane size from the window size and the
// current display options. Runs on resize and on config hot-reload.
func (m Model) applyLayout() (tea.Model, tea.Cmd) {
	// header + input area + status bar
	const reserved = 8
	vpHeight := m.height - reserved
	if vpHeight < 1 {
		vpHeight = 1
	}

	sidebarWidth := m.width / 3
	if m.display.SidebarWidth > 0 && m.display.SidebarWidth < m.width {
		sidebarWidth = m.display.SidebarWidth
	}

	vpWidth := m.width
	if m.display.ShowSidebar {
		vpWidth = m.width - sidebarWidth
		if vpWidth < 20 {
			vpWidth = 20
		}
	}

	wrap := vpWidth
	if m.display.WrapWidth > 0 && m.display.WrapWidth < wrap {
		wrap = m.display.WrapWidth
	}

	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight

	m.input.SetWidth(m.width)
	m.transcript.SetWidth(wrap)
	m.statusBar.SetWidth(m.width)
	m.dashboard.SetWidth(m.width)
	m.sidebar.SetSize(sidebarWidth, vpHeight)
	m.refreshTranscript()
	return m, nil
}

func (m Model) handleExchangeResult(msg ExchangeResultMsg) (tea.Model, tea.Cmd) {
	m.ctrl.Complete(msg.Result)
	m.spinner.Stop()
	m.syncStatusBar()
	m.refreshTranscript()

	if msg.Result.Err != nil {
		m.toasts.AddError(controller.FallbackNotice)
		return m, components.ToastTickCmd()
	}

	conv := m.ctrl.Conversation()
	return m, tea.Batch(
		saveConversationCmd(m.store, conv),
		recordExchangeCmd(m.progress, conv.ID, msg.Result.Duration),
	)
}

func (m Model) handleConversationLoaded(msg ConversationLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.toasts.AddError("Could not open conversation: " + msg.Err.Error())
		return m, components.ToastTickCmd()
	}
	if err := m.ctrl.Replace(msg.Conv); err != nil {
		m.toasts.AddWarning(err.Error())
		return m, components.ToastTickCmd()
	}
	m.view = ViewChat
	m.refreshTranscript()
	return m, m.input.Focus()
}

// =============================================================================
// RENDER STATE SYNC
// =============================================================================

func (m *Model) refreshTranscript() {
	if m.spinner.Active() {
		m.transcript.SetThinking(m.spinner.View())
	} else {
		m.transcript.SetThinking("")
	}
	m.viewport.SetContent(m.transcript.Render(m.ctrl.Conversation()))
	m.viewport.GotoBottom()
}

func (m *Model) syncStatusBar() {
	m.statusBar.Busy = m.ctrl.State() == controller.StateAwaiting

	if sess, err := m.sessions.Current(); err == nil {
		m.statusBar.UserEmail = sess.User.Email
		if sess.HasBackendToken() {
			m.statusBar.Conn = components.ConnOnline
		} else {
			m.statusBar.Conn = components.ConnDegraded
		}
	} else {
		m.statusBar.UserEmail = ""
		m.statusBar.Conn = components.ConnOffline
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/mentor-tui/internal/controller"
	"github.com/jeranaias/mentor-tui/internal/markdown"
	"github.com/jeranaias/mentor-tui/internal/model"
	"github.com/jeranaias/mentor-tui/internal/ui/components"
)

// helpDoc is shown by the /help command. Any transcript refresh replaces it.
const helpDoc = `# mentor

Type a question and press **enter**. The answer streams into the transcript.

## Keys

| Key | Action |
|---|---|
| ctrl+b | past conversations |
| ctrl+g | progress dashboard |
| ctrl+n | new conversation |
| ctrl+r | regenerate the last answer |
| ctrl+e | edit your last question |
| ctrl+s | save |
| ctrl+q | quit |

## Commands

- ` + "`/attach <path>`" + ` stage a file with the next question
- ` + "`/detach`" + ` drop the staged file
- ` + "`/speak`" + ` read the last answer aloud (saves an mp3)
- ` + "`/transcribe <audio file>`" + ` turn a recording into input text
- ` + "`/export`" + ` write the conversation as markdown
`

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	switch m.view {
	case ViewSidebar:
		return m.handleSidebarKey(msg)
	case ViewDashboard:
		if key.Matches(msg, m.keyMap.Back, m.keyMap.Dashboard) {
			m.view = ViewChat
			return m, m.input.Focus()
		}
		return m, nil
	}
	return m.handleChatKey(msg)
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Sidebar):
		m.view = ViewSidebar
		m.input.Blur()
		return m, listConversationsCmd(m.store)

	case key.Matches(msg, m.keyMap.Dashboard):
		m.view = ViewDashboard
		m.input.Blur()
		return m, statsCmd(m.progress)

	case key.Matches(msg, m.keyMap.NewConv):
		if err := m.ctrl.Reset(); err != nil {
			m.toasts.AddWarning(err.Error())
			return m, components.ToastTickCmd()
		}
		m.editTurnID = ""
		m.input.Reset()
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, m.keyMap.Save):
		conv := m.ctrl.Conversation()
		if conv.Len() == 0 {
			return m, nil
		}
		return m, saveConversationCmd(m.store, conv)

	case key.Matches(msg, m.keyMap.Reload):
		return m.reloadLast()

	case key.Matches(msg, m.keyMap.Edit):
		return m.beginEditLast()

	case key.Matches(msg, m.keyMap.Submit):
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.sidebarFiltering {
		return m.handleSidebarFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Back, m.keyMap.Sidebar):
		m.view = ViewChat
		return m, m.input.Focus()

	case key.Matches(msg, m.keyMap.Filter):
		m.sidebarFiltering = true
		m.sidebarQuery = ""
		m.statusBar.Notice = "/"
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		m.sidebar.MoveUp()
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.sidebar.MoveDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Select):
		id := m.sidebar.SelectedID()
		if id == "" {
			return m, nil
		}
		return m, loadConversationCmd(m.store, id)

	case key.Matches(msg, m.keyMap.Delete):
		id := m.sidebar.SelectedID()
		if id == "" {
			return m, nil
		}
		if err := m.store.Delete(id); err != nil {
			m.toasts.AddError("Delete failed: " + err.Error())
			return m, components.ToastTickCmd()
		}
		return m, listConversationsCmd(m.store)
	}
	return m, nil
}

// handleSidebarFilterKey edits the search query. Every keystroke re-runs the
// case-folded store search so the listing narrows as the user types.
func (m Model) handleSidebarFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.sidebarFiltering = false
		m.sidebarQuery = ""
		m.statusBar.Notice = ""
		return m, listConversationsCmd(m.store)

	case tea.KeyEnter:
		m.sidebarFiltering = false
		m.statusBar.Notice = ""
		return m, nil

	case tea.KeyBackspace:
		if r := []rune(m.sidebarQuery); len(r) > 0 {
			m.sidebarQuery = string(r[:len(r)-1])
		}

	case tea.KeySpace:
		m.sidebarQuery += " "

	case tea.KeyRunes:
		m.sidebarQuery += string(msg.Runes)

	default:
		return m, nil
	}

	m.statusBar.Notice = "/" + m.sidebarQuery
	return m, searchConversationsCmd(m.store, m.sidebarQuery)
}

// =============================================================================
// SUBMISSION
// =============================================================================

// submitInput routes the input line: slash commands run locally, everything
// else becomes an exchange.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		return m.runCommand(text)
	}

	var (
		d   *controller.Dispatch
		err error
	)
	if m.editTurnID != "" {
		d, err = m.ctrl.EditAndResubmit(m.editTurnID, text)
	} else {
		d, err = m.ctrl.Submit(text)
	}
	if err != nil {
		if errors.Is(err, controller.ErrCallInFlight) {
			m.toasts.AddWarning("Still waiting for the previous answer.")
		} else {
			m.toasts.AddError(err.Error())
		}
		return m, components.ToastTickCmd()
	}

	m.editTurnID = ""
	m.input.Reset()
	m.input.SetAttachment(nil)
	m.syncStatusBar()

	spin := m.spinner.Start()
	m.refreshTranscript()
	return m, tea.Batch(spin, exchangeCmd(d, m.timeout))
}

// runCommand handles the small set of slash commands.
func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "attach":
		if arg == "" {
			m.toasts.AddWarning("Usage: /attach <path>")
			return m, components.ToastTickCmd()
		}
		att, err := m.ctrl.StageAttachment(arg)
		if err != nil {
			m.toasts.AddError("Attach failed: " + err.Error())
			return m, components.ToastTickCmd()
		}
		m.input.SetAttachment(att)
		m.input.Reset()
		return m, nil

	case "detach":
		m.ctrl.ClearAttachment()
		m.input.SetAttachment(nil)
		m.input.Reset()
		return m, nil

	case "speak":
		return m.speakLast()

	case "transcribe":
		if arg == "" {
			m.toasts.AddWarning("Usage: /transcribe <audio file>")
			return m, components.ToastTickCmd()
		}
		m.input.Reset()
		token, _ := m.sessions.AccessToken()
		return m, transcribeCmd(m.client.WithToken(token), arg, m.timeout)

	case "export":
		m.input.Reset()
		return m, exportConversationCmd(m.store, m.ctrl.ConversationID())

	case "help":
		m.input.Reset()
		doc, err := markdown.RenderDocument(helpDoc, m.width)
		if err != nil {
			m.toasts.AddError("Help unavailable: " + err.Error())
			return m, components.ToastTickCmd()
		}
		m.viewport.SetContent(doc)
		m.viewport.GotoTop()
		return m, nil

	default:
		m.toasts.AddWarning("Unknown command: /" + name)
		return m, components.ToastTickCmd()
	}
}

// =============================================================================
// RELOAD AND EDIT
// =============================================================================

// reloadLast regenerates the most recent answer.
func (m Model) reloadLast() (tea.Model, tea.Cmd) {
	conv := m.ctrl.Conversation()
	if conv.Len() == 0 {
		return m, nil
	}
	lastID := conv.Turns[conv.Len()-1].ID

	d, err := m.ctrl.Reload(lastID)
	if err != nil {
		m.toasts.AddWarning(err.Error())
		return m, components.ToastTickCmd()
	}
	m.syncStatusBar()
	spin := m.spinner.Start()
	m.refreshTranscript()
	return m, tea.Batch(spin, exchangeCmd(d, m.timeout))
}

// beginEditLast loads the last user turn's text into the input for editing.
func (m Model) beginEditLast() (tea.Model, tea.Cmd) {
	conv := m.ctrl.Conversation()
	for i := conv.Len() - 1; i >= 0; i-- {
		if conv.Turns[i].Role == model.RoleUser {
			m.editTurnID = conv.Turns[i].ID
			m.input.SetValue(conv.Turns[i].Content)
			return m, m.input.Focus()
		}
	}
	return m, nil
}

// speakLast synthesizes the most recent assistant answer.
func (m Model) speakLast() (tea.Model, tea.Cmd) {
	m.input.Reset()
	conv := m.ctrl.Conversation()
	for i := conv.Len() - 1; i >= 0; i-- {
		t := conv.Turns[i]
		if t.Role == model.RoleAssistant && t.IsResolved() && t.Content != "" {
			token, _ := m.sessions.AccessToken()
			return m, speechCmd(m.client.WithToken(token), m.storageDir, t.Content, m.timeout)
		}
	}
	m.toasts.AddWarning("Nothing to read aloud yet.")
	return m, components.ToastTickCmd()
}

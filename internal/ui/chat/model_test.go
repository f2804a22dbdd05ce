// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/mentor-tui/internal/backend"
	"github.com/jeranaias/mentor-tui/internal/config"
	"github.com/jeranaias/mentor-tui/internal/controller"
	"github.com/jeranaias/mentor-tui/internal/model"
	"github.com/jeranaias/mentor-tui/internal/session"
	"github.com/jeranaias/mentor-tui/internal/storage"
)

func newTestModel(t *testing.T, backendURL string) Model {
	t.Helper()

	dir := t.TempDir()
	store, err := storage.NewConversationStore(dir)
	require.NoError(t, err)

	codec, err := session.NewCodec("a-sufficiently-long-test-secret", 7*24*time.Hour)
	require.NoError(t, err)
	mgr := session.NewManager(codec, dir)

	progress, err := storage.OpenProgressStore(filepath.Join(dir, "progress.db"))
	require.NoError(t, err)
	t.Cleanup(func() { progress.Close() })

	cfg := config.Default()
	cfg.Storage.Dir = dir
	client := backend.New(backendURL)

	return New(Deps{
		Controller: controller.New(client),
		Store:      store,
		Progress:   progress,
		Sessions:   mgr,
		Client:     client,
		Config:     cfg,
	})
}

func answeringServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(backend.ChatResponse{Content: reply})
	}))
}

func runCmd(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Msg) {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	next, _ := m.Update(msg)
	return next.(Model), msg
}

func drainBatch(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			if c != nil {
				out = append(out, c())
			}
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestSubmit_AppendsTurnsAndCompletesExchange(t *testing.T) {
	server := answeringServer(t, "An array is a fixed-size sequence.")
	defer server.Close()
	m := newTestModel(t, server.URL)

	m.input.SetValue("What is an array?")
	next, cmd := m.submitInput()
	m = next.(Model)

	conv := m.ctrl.Conversation()
	require.Equal(t, 2, conv.Len())
	assert.True(t, conv.Turns[1].Pending)
	assert.Empty(t, m.input.Value())

	// Find the exchange result among the batched messages and apply it.
	var applied bool
	for _, msg := range drainBatch(cmd) {
		if res, ok := msg.(ExchangeResultMsg); ok {
			nm, _ := m.Update(res)
			m = nm.(Model)
			applied = true
		}
	}
	require.True(t, applied, "submit must schedule the exchange")

	conv = m.ctrl.Conversation()
	assert.Equal(t, "An array is a fixed-size sequence.", conv.Turns[1].Content)
	assert.False(t, m.statusBar.Busy)
}

func TestSubmit_FailureShowsFallbackToast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()
	m := newTestModel(t, server.URL)

	m.input.SetValue("hello")
	next, cmd := m.submitInput()
	m = next.(Model)

	for _, msg := range drainBatch(cmd) {
		if res, ok := msg.(ExchangeResultMsg); ok {
			nm, _ := m.Update(res)
			m = nm.(Model)
		}
	}

	assert.True(t, m.toasts.HasToasts(), "failure must surface a toast")
	conv := m.ctrl.Conversation()
	require.Equal(t, 2, conv.Len())
	assert.Empty(t, conv.Turns[1].Content)
}

func TestSubmit_EmptyInputIsIgnored(t *testing.T) {
	m := newTestModel(t, "")
	m.input.SetValue("   ")
	next, cmd := m.submitInput()
	m = next.(Model)

	assert.Nil(t, cmd)
	assert.Zero(t, m.ctrl.Conversation().Len())
}

func TestEditLast_ResubmitsEditedTurn(t *testing.T) {
	server := answeringServer(t, "answer")
	defer server.Close()
	m := newTestModel(t, server.URL)

	m.input.SetValue("first question")
	next, cmd := m.submitInput()
	m = next.(Model)
	for _, msg := range drainBatch(cmd) {
		if res, ok := msg.(ExchangeResultMsg); ok {
			nm, _ := m.Update(res)
			m = nm.(Model)
		}
	}

	next, _ = m.beginEditLast()
	m = next.(Model)
	assert.Equal(t, "first question", m.input.Value())
	require.NotEmpty(t, m.editTurnID)

	m.input.SetValue("edited question")
	next, cmd = m.submitInput()
	m = next.(Model)
	for _, msg := range drainBatch(cmd) {
		if res, ok := msg.(ExchangeResultMsg); ok {
			nm, _ := m.Update(res)
			m = nm.(Model)
		}
	}

	conv := m.ctrl.Conversation()
	require.Equal(t, 2, conv.Len())
	assert.Equal(t, "edited question", conv.Turns[0].Content)
	assert.Equal(t, model.RoleUser, conv.Turns[0].Role)
	assert.Empty(t, m.editTurnID)
}

func TestSlashCommand_Unknown(t *testing.T) {
	m := newTestModel(t, "")
	m.input.SetValue("/bogus")
	next, _ := m.submitInput()
	m = next.(Model)
	assert.True(t, m.toasts.HasToasts())
	assert.Zero(t, m.ctrl.Conversation().Len())
}

func TestSidebarSearchNarrowsListing(t *testing.T) {
	m := newTestModel(t, "")

	c1 := model.NewConversation()
	c1.AddUserTurn("Binary search trees")
	require.NoError(t, m.store.Save(c1))
	c2 := model.NewConversation()
	c2.AddUserTurn("Closures in Go")
	require.NoError(t, m.store.Save(c2))

	nm, listCmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = nm.(Model)
	m, _ = runCmd(t, m, listCmd)
	require.Equal(t, 2, m.sidebar.Len())

	nm, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	m = nm.(Model)
	require.True(t, m.sidebarFiltering)

	nm, searchCmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("binary")})
	m = nm.(Model)
	assert.Equal(t, "binary", m.sidebarQuery)

	m, _ = runCmd(t, m, searchCmd)
	require.Equal(t, 1, m.sidebar.Len())
	assert.Equal(t, c1.ID, m.sidebar.SelectedID())

	// Esc clears the query and restores the full listing.
	nm, restoreCmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = nm.(Model)
	m, _ = runCmd(t, m, restoreCmd)
	assert.Equal(t, 2, m.sidebar.Len())
}

func TestDisplayUpdateReachesLayout(t *testing.T) {
	m := newTestModel(t, "")
	nm, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = nm.(Model)

	nm, _ = m.Update(DisplayUpdatedMsg{Display: config.Display{
		WrapWidth:    60,
		SidebarWidth: 24,
		ShowSidebar:  true,
	}})
	m = nm.(Model)

	assert.Equal(t, 60, m.display.WrapWidth)
	assert.True(t, m.display.ShowSidebar)
	// The pinned sidebar renders next to the chat pane.
	assert.Contains(t, m.View(), "No saved conversations yet.")
}

func TestSidebarNavigation(t *testing.T) {
	server := answeringServer(t, "a")
	defer server.Close()
	m := newTestModel(t, server.URL)

	// Seed one saved conversation.
	m.input.SetValue("q1")
	next, cmd := m.submitInput()
	m = next.(Model)
	for _, msg := range drainBatch(cmd) {
		if res, ok := msg.(ExchangeResultMsg); ok {
			nm, c := m.Update(res)
			m = nm.(Model)
			for _, saved := range drainBatch(c) {
				nm, _ := m.Update(saved)
				m = nm.(Model)
			}
		}
	}

	nm, listCmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = nm.(Model)
	assert.Equal(t, ViewSidebar, m.view)

	m, _ = runCmd(t, m, listCmd)
	require.Equal(t, 1, m.sidebar.Len())

	nm, loadCmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = nm.(Model)
	m, _ = runCmd(t, m, loadCmd)
	assert.Equal(t, ViewChat, m.view)
	assert.Equal(t, 2, m.ctrl.Conversation().Len())
}

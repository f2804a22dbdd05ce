// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/mentor-tui/internal/model"
	"github.com/jeranaias/mentor-tui/internal/storage"
)

func TestToastManagerExpiry(t *testing.T) {
	m := NewToastManager()
	m.AddError("boom")
	if !m.HasToasts() {
		t.Fatal("expected a visible toast")
	}

	if live := m.Tick(time.Now()); !live {
		t.Error("toast expired too early")
	}
	if live := m.Tick(time.Now().Add(time.Minute)); live {
		t.Error("toast should expire after its TTL")
	}
}

func TestToastManagerStackLimit(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < 10; i++ {
		m.AddInfo("note")
	}
	if got := len(m.toasts); got != maxToasts {
		t.Errorf("stack = %d, want %d", got, maxToasts)
	}
}

func TestSidebarSelectionSurvivesRefresh(t *testing.T) {
	s := NewSidebar(32)
	items := []storage.Meta{
		{ID: "a", Title: "Arrays"},
		{ID: "b", Title: "Binary search"},
		{ID: "c", Title: "Closures"},
	}
	s.SetItems(items)
	s.MoveDown()
	if got := s.SelectedID(); got != "b" {
		t.Fatalf("selected = %q, want b", got)
	}

	// A refreshed listing with the same entry keeps the selection.
	s.SetItems(items)
	if got := s.SelectedID(); got != "b" {
		t.Errorf("selected after refresh = %q, want b", got)
	}
}

func TestSidebarFilter(t *testing.T) {
	s := NewSidebar(32)
	s.SetItems([]storage.Meta{
		{ID: "a", Title: "Arrays"},
		{ID: "b", Title: "Binary search"},
	})
	s.SetFilter("binary")
	if s.Len() != 1 {
		t.Fatalf("filtered rows = %d, want 1", s.Len())
	}
	if s.SelectedID() != "b" {
		t.Errorf("selected = %q, want b", s.SelectedID())
	}
}

func TestTranscriptShowsPendingAndFailedTurns(t *testing.T) {
	tr := NewTranscript(80)
	conv := model.NewConversation()
	conv.AddUserTurn("What is recursion?")
	placeholder := conv.AddPendingAssistantTurn()

	out := tr.Render(conv)
	if !strings.Contains(out, "What is recursion?") {
		t.Error("user text missing from transcript")
	}
	if !strings.Contains(out, "You") {
		t.Error("user header missing")
	}

	placeholder.Fail()
	out = tr.Render(conv)
	if !strings.Contains(out, "(no response)") {
		t.Error("failed turn should show the empty-response marker")
	}
}

func TestTranscriptRendersToolCallOnlyTurn(t *testing.T) {
	tr := NewTranscript(80)
	conv := model.NewConversation()
	conv.AddUserTurn("quiz me")
	placeholder := conv.AddPendingAssistantTurn()
	placeholder.ToolCalls = []model.ToolCall{{
		Name: "generate_quiz",
		Args: json.RawMessage(`{"question":"2+2?","options":["3","4"]}`),
	}}
	placeholder.Resolve("")

	out := tr.Render(conv)
	if strings.Contains(out, "(no response)") {
		t.Error("a tool-call turn must not render as empty")
	}
	if !strings.Contains(out, "2+2?") {
		t.Error("quiz card missing from transcript")
	}
}

func TestRenderToolCallsKnownAndUnknown(t *testing.T) {
	quiz := model.ToolCall{
		Name: "generate_quiz",
		Args: json.RawMessage(`{"question":"2+2?","options":["3","4"]}`),
	}
	other := model.ToolCall{Name: "mystery", Args: json.RawMessage(`{"x":1}`)}

	out := RenderToolCalls([]model.ToolCall{quiz, other}, 60)
	if !strings.Contains(out, "2+2?") {
		t.Error("quiz question missing")
	}
	if !strings.Contains(out, "B) 4") {
		t.Error("quiz options not lettered")
	}
	if !strings.Contains(out, "mystery") {
		t.Error("unknown tool should fall back to the generic card")
	}
}

func TestStatusBarStates(t *testing.T) {
	bar := NewStatusBar()
	bar.SetWidth(100)
	bar.UserEmail = "ada@example.com"
	bar.Conn = ConnDegraded

	out := bar.View()
	if !strings.Contains(out, "ada@example.com") {
		t.Error("email missing from status bar")
	}
	if !strings.Contains(out, "degraded") {
		t.Error("connection state missing")
	}
}

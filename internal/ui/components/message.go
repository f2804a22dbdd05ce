// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentor-tui/internal/markdown"
	"github.com/jeranaias/mentor-tui/internal/model"
	"github.com/jeranaias/mentor-tui/internal/ui/styles"
)

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// Transcript renders a conversation's turn list for the viewport.
type Transcript struct {
	width    int
	renderer *markdown.Renderer
	thinking string
}

// NewTranscript creates a transcript renderer for the given width.
func NewTranscript(width int) *Transcript {
	return &Transcript{
		width:    width,
		renderer: markdown.NewRenderer(contentWidth(width)),
	}
}

// SetWidth resizes the transcript and its markdown renderer.
func (t *Transcript) SetWidth(width int) {
	t.width = width
	t.renderer = markdown.NewRenderer(contentWidth(width))
}

// SetThinking sets the spinner line shown in place of the pending turn.
// An empty string hides it.
func (t *Transcript) SetThinking(line string) {
	t.thinking = line
}

// Render produces the full transcript text.
func (t *Transcript) Render(conv *model.Conversation) string {
	if conv == nil || conv.Len() == 0 {
		return t.renderEmpty()
	}

	var parts []string
	for _, turn := range conv.Turns {
		parts = append(parts, t.renderTurn(turn))
	}
	return strings.Join(parts, "\n\n")
}

func (t *Transcript) renderEmpty() string {
	title := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Render("What would you like to learn today?")
	hint := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("Type a question below, or press ctrl+b for past conversations.")
	return "\n" + title + "\n\n" + hint
}

func (t *Transcript) renderTurn(turn *model.Turn) string {
	header := t.renderHeader(turn)

	if turn.Pending {
		line := t.thinking
		if line == "" {
			line = lipgloss.NewStyle().Foreground(styles.TextMuted).Render("...")
		}
		return header + "\n" + line
	}

	if turn.Content == "" && turn.Role == model.RoleAssistant && !turn.HasToolCalls() {
		// A failed exchange leaves the placeholder empty; the toast carries
		// the notice, the transcript just shows the gap.
		return header + "\n" + lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Render("(no response)")
	}

	var body string
	if turn.Content != "" {
		body = t.renderer.RenderText(turn.Content)
		if turn.Role == model.RoleUser {
			body = lipgloss.NewStyle().Foreground(styles.UserBubbleFg).Render(body)
		}
	}
	if turn.HasToolCalls() {
		cards := RenderToolCalls(turn.ToolCalls, contentWidth(t.width))
		if body == "" {
			body = cards
		} else {
			body += "\n" + cards
		}
	}
	return header + "\n" + body
}

func (t *Transcript) renderHeader(turn *model.Turn) string {
	var color lipgloss.TerminalColor
	if turn.Role == model.RoleUser {
		color = styles.UserBubbleBorder
	} else {
		color = styles.AssistantBubbleBorder
	}

	name := lipgloss.NewStyle().
		Foreground(color).
		Bold(true).
		Render(turn.Role.DisplayName())
	stamp := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("  " + turn.CreatedAt.Format("15:04"))
	return name + stamp
}

// contentWidth leaves margin for the viewport chrome.
func contentWidth(width int) int {
	w := width - 4
	if w < 20 {
		w = 20
	}
	return w
}

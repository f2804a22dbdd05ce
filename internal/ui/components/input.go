// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentor-tui/internal/model"
	"github.com/jeranaias/mentor-tui/internal/ui/styles"
	"github.com/jeranaias/mentor-tui/internal/util"
)

// =============================================================================
// INPUT PANEL
// =============================================================================

const inputCharLimit = 4096

// InputPanel is the message composer: a single-line input plus the staged
// attachment badge and character count.
type InputPanel struct {
	input      textinput.Model
	width      int
	attachment *model.Attachment
	recording  bool
}

// NewInputPanel creates a focused input panel.
func NewInputPanel() InputPanel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask anything..."
	ti.CharLimit = inputCharLimit
	ti.Focus()
	return InputPanel{input: ti, width: 80}
}

// SetWidth resizes the panel.
func (p *InputPanel) SetWidth(width int) {
	p.width = width
	w := width - 8
	if w < 10 {
		w = 10
	}
	p.input.Width = w
}

// Value returns the current input text.
func (p *InputPanel) Value() string {
	return p.input.Value()
}

// SetValue replaces the input text, placing the cursor at the end.
func (p *InputPanel) SetValue(text string) {
	p.input.SetValue(text)
	p.input.CursorEnd()
}

// Reset clears the input text.
func (p *InputPanel) Reset() {
	p.input.Reset()
}

// Focus focuses the input.
func (p *InputPanel) Focus() tea.Cmd {
	p.input.Focus()
	return textinput.Blink
}

// Blur removes focus.
func (p *InputPanel) Blur() {
	p.input.Blur()
}

// Focused reports whether the input has focus.
func (p *InputPanel) Focused() bool {
	return p.input.Focused()
}

// SetAttachment sets the staged attachment badge. Nil clears it.
func (p *InputPanel) SetAttachment(att *model.Attachment) {
	p.attachment = att
}

// SetRecording toggles the voice recording badge.
func (p *InputPanel) SetRecording(on bool) {
	p.recording = on
}

// Update forwards messages to the text input.
func (p InputPanel) Update(msg tea.Msg) (InputPanel, tea.Cmd) {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// View renders the panel: separator, badges, input line, char count.
func (p InputPanel) View() string {
	var b strings.Builder

	sep := lipgloss.NewStyle().
		Foreground(styles.OverlayDim).
		Render(strings.Repeat("─", max(p.width, 1)))
	b.WriteString(sep)
	b.WriteString("\n")

	if badges := p.renderBadges(); badges != "" {
		b.WriteString(badges)
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Padding(0, 1).Render(p.input.View()))
	b.WriteString("\n")

	count := strconv.Itoa(len([]rune(p.input.Value()))) + "/" + strconv.Itoa(inputCharLimit)
	b.WriteString(lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		PaddingLeft(1).
		Render(count))

	return b.String()
}

func (p InputPanel) renderBadges() string {
	var badges []string
	if p.attachment != nil {
		name := util.TruncateWidth(p.attachment.Name, 24)
		badges = append(badges, lipgloss.NewStyle().
			Foreground(styles.TextInverse).
			Background(styles.Secondary).
			Padding(0, 1).
			Render("FILE "+name))
	}
	if p.recording {
		badges = append(badges, lipgloss.NewStyle().
			Foreground(styles.TextInverse).
			Background(styles.Rose).
			Padding(0, 1).
			Render("REC"))
	}
	if len(badges) == 0 {
		return ""
	}
	return " " + strings.Join(badges, " ")
}

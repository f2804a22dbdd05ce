// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentor-tui/internal/ui/styles"
)

// =============================================================================
// THINKING SPINNER
// =============================================================================

// ThinkingSpinner shows the awaiting-response state next to the assistant
// placeholder, with elapsed time.
type ThinkingSpinner struct {
	spinner   spinner.Model
	message   string
	startTime time.Time
	active    bool
}

// NewThinkingSpinner creates an ASCII-compatible spinner.
func NewThinkingSpinner() ThinkingSpinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	return ThinkingSpinner{
		spinner: s,
		message: "Thinking",
	}
}

// Start activates the spinner and records the start time.
func (s *ThinkingSpinner) Start() tea.Cmd {
	s.active = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *ThinkingSpinner) Stop() {
	s.active = false
}

// Active reports whether the spinner is running.
func (s *ThinkingSpinner) Active() bool {
	return s.active
}

// SetMessage sets the text displayed next to the spinner.
func (s *ThinkingSpinner) SetMessage(msg string) {
	s.message = msg
}

// Update handles spinner tick messages.
func (s ThinkingSpinner) Update(msg tea.Msg) (ThinkingSpinner, tea.Cmd) {
	if !s.active {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner line.
func (s ThinkingSpinner) View() string {
	if !s.active {
		return ""
	}

	frame := lipgloss.NewStyle().Foreground(styles.Primary).Render(s.spinner.View())
	text := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(s.message + "...")

	out := frame + " " + text
	if !s.startTime.IsZero() {
		elapsed := time.Since(s.startTime).Round(time.Second)
		out += lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(" (" + elapsed.String() + ")")
	}
	return out
}

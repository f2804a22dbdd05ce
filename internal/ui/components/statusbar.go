// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentor-tui/internal/ui/styles"
	"github.com/jeranaias/mentor-tui/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// ConnState describes backend reachability for the status bar.
type ConnState int

const (
	ConnUnknown ConnState = iota
	ConnOnline
	ConnDegraded // signed in without a backend token
	ConnOffline
)

// String returns the display text for the state.
func (c ConnState) String() string {
	switch c {
	case ConnOnline:
		return "online"
	case ConnDegraded:
		return "degraded"
	case ConnOffline:
		return "offline"
	default:
		return "-"
	}
}

// StatusBar is the bottom status line: identity, connection, activity, and
// keyboard hints.
type StatusBar struct {
	Width     int
	UserEmail string
	Conn      ConnState
	Busy      bool
	Notice    string
}

// NewStatusBar creates a status bar.
func NewStatusBar() *StatusBar {
	return &StatusBar{Width: 80}
}

// SetWidth resizes the bar.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the bar.
func (s *StatusBar) View() string {
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	var left []string
	if s.UserEmail != "" {
		left = append(left, lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Render(util.TruncateWidth(s.UserEmail, 28)))
	} else {
		left = append(left, lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render("not signed in"))
	}
	left = append(left, s.renderConn())
	if s.Busy {
		left = append(left, lipgloss.NewStyle().
			Foreground(styles.Amber).
			Render("waiting..."))
	}
	if s.Notice != "" {
		left = append(left, lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(util.TruncateWidth(s.Notice, 40)))
	}
	leftSection := strings.Join(left, sep)

	rightSection := s.renderShortcuts()

	gap := s.Width - lipgloss.Width(leftSection) - lipgloss.Width(rightSection) - 2
	if gap < 1 {
		gap = 1
	}

	return styles.StatusBarStyle().
		Width(s.Width).
		Render(leftSection + strings.Repeat(" ", gap) + rightSection)
}

func (s *StatusBar) renderConn() string {
	var color lipgloss.TerminalColor
	switch s.Conn {
	case ConnOnline:
		color = styles.Emerald
	case ConnDegraded:
		color = styles.Amber
	case ConnOffline:
		color = styles.Rose
	default:
		color = styles.TextMuted
	}
	return lipgloss.NewStyle().Foreground(color).Render(s.Conn.String())
}

func (s *StatusBar) renderShortcuts() string {
	key := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	desc := lipgloss.NewStyle().Foreground(styles.TextMuted)

	shortcuts := []string{
		key.Render("^B") + desc.Render("list"),
		key.Render("^G") + desc.Render("stats"),
		key.Render("^N") + desc.Render("new"),
		key.Render("^Q") + desc.Render("quit"),
	}
	return strings.Join(shortcuts, " ")
}

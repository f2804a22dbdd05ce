// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentor-tui/internal/ui/styles"
	"github.com/jeranaias/mentor-tui/internal/util"
)

// View renders the whole screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.view {
	case ViewSidebar:
		b.WriteString(m.sidebar.View())
	case ViewDashboard:
		b.WriteString(m.dashboard.View())
	default:
		main := m.viewport.View() + "\n" + m.input.View()
		if m.display.ShowSidebar {
			main = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), main)
		}
		b.WriteString(main)
	}

	b.WriteString("\n")
	b.WriteString(m.statusBar.View())

	if m.toasts.HasToasts() {
		b.WriteString("\n")
		b.WriteString(m.toasts.View())
	}
	return b.String()
}

func (m Model) renderHeader() string {
	title := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Render("mentor")

	convTitle := m.ctrl.Conversation().Title
	subtitle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("  " + util.TruncateWidth(convTitle, m.width-12))

	return lipgloss.NewStyle().
		Width(m.width).
		Render(title + subtitle)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentor-tui/internal/storage"
	"github.com/jeranaias/mentor-tui/internal/ui/styles"
	"github.com/jeranaias/mentor-tui/internal/util"
)

// =============================================================================
// CONVERSATION SIDEBAR
// =============================================================================

// Sidebar lists saved conversations newest-first, with keyboard selection.
type Sidebar struct {
	items    []storage.Meta
	selected int
	width    int
	height   int
	filter   string
	visible  []int
}

// NewSidebar creates an empty sidebar.
func NewSidebar(width int) *Sidebar {
	return &Sidebar{width: width, height: 20}
}

// SetSize resizes the sidebar.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// SetItems replaces the listing, preserving the selection where possible.
func (s *Sidebar) SetItems(items []storage.Meta) {
	prev := s.SelectedID()
	s.items = items
	s.applyFilter()
	s.selected = 0
	for i, idx := range s.visible {
		if s.items[idx].ID == prev {
			s.selected = i
			break
		}
	}
}

// SetFilter narrows the listing to titles containing the query.
func (s *Sidebar) SetFilter(query string) {
	s.filter = query
	s.applyFilter()
	if s.selected >= len(s.visible) {
		s.selected = 0
	}
}

func (s *Sidebar) applyFilter() {
	s.visible = s.visible[:0]
	needle := strings.ToLower(strings.TrimSpace(s.filter))
	for i, item := range s.items {
		if needle == "" || strings.Contains(strings.ToLower(item.Title), needle) {
			s.visible = append(s.visible, i)
		}
	}
}

// MoveUp moves the selection up one row.
func (s *Sidebar) MoveUp() {
	if s.selected > 0 {
		s.selected--
	}
}

// MoveDown moves the selection down one row.
func (s *Sidebar) MoveDown() {
	if s.selected < len(s.visible)-1 {
		s.selected++
	}
}

// SelectedID returns the selected conversation's ID, or "".
func (s *Sidebar) SelectedID() string {
	if s.selected < 0 || s.selected >= len(s.visible) {
		return ""
	}
	return s.items[s.visible[s.selected]].ID
}

// Len returns the number of visible rows.
func (s *Sidebar) Len() int {
	return len(s.visible)
}

// View renders the sidebar panel.
func (s *Sidebar) View() string {
	var b strings.Builder

	title := "Conversations"
	if s.filter != "" {
		title += " /" + s.filter
	}
	b.WriteString(lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Render(util.TruncateWidth(title, s.width-2)))
	b.WriteString("\n\n")

	if len(s.visible) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render("No saved conversations yet."))
		return s.frame(b.String())
	}

	now := time.Now()
	rows := s.height - 4
	if rows < 1 {
		rows = 1
	}
	start := 0
	if s.selected >= rows {
		start = s.selected - rows + 1
	}

	for i := start; i < len(s.visible) && i < start+rows; i++ {
		item := s.items[s.visible[i]]
		b.WriteString(s.renderRow(item, i == s.selected, now))
		b.WriteString("\n")
	}
	return s.frame(b.String())
}

func (s *Sidebar) renderRow(item storage.Meta, selected bool, now time.Time) string {
	titleWidth := s.width - 4
	title := util.TruncateWidth(item.Title, titleWidth)

	meta := util.FormatRelativeTime(item.UpdatedAt, now)
	if item.TurnCount > 0 {
		meta += " · " + strconv.Itoa(item.TurnCount/2) + " exchanges"
	}

	line := title + "\n  " + lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render(util.TruncateWidth(meta, titleWidth))

	if selected {
		return styles.SelectedRowStyle().Render("▸ " + line)
	}
	return lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("  " + line)
}

func (s *Sidebar) frame(content string) string {
	return styles.PanelStyle().
		Width(s.width).
		Height(s.height).
		Render(content)
}

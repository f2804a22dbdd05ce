// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentor-tui/internal/ui/styles"
	"github.com/jeranaias/mentor-tui/internal/util"
)

// =============================================================================
// NON-BLOCKING TOASTS
// =============================================================================

// ToastLevel classifies a toast.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastWarning
	ToastError
)

// Toast is one transient notification. Toasts stack in the bottom-right
// corner and auto-dismiss without blocking input.
type Toast struct {
	ID        string
	Level     ToastLevel
	Message   string
	CreatedAt time.Time
	TTL       time.Duration
}

// Expired reports whether the toast has outlived its TTL.
func (t Toast) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.TTL
}

const (
	defaultToastTTL = 6 * time.Second
	maxToasts       = 3
	toastTickEvery  = 500 * time.Millisecond
)

// ToastTickMsg drives toast expiry.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd schedules the next expiry check.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(toastTickEvery, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// ToastManager owns the active toast stack.
type ToastManager struct {
	toasts []Toast
	width  int
}

// NewToastManager creates an empty toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{width: 44}
}

// SetWidth sets the toast box width.
func (m *ToastManager) SetWidth(width int) {
	if width > 20 {
		m.width = width
	}
}

// Add pushes a toast, evicting the oldest past the stack limit.
func (m *ToastManager) Add(level ToastLevel, message string) {
	m.toasts = append(m.toasts, Toast{
		ID:        util.NewID("toast"),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
		TTL:       defaultToastTTL,
	})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
}

// AddError pushes an error toast.
func (m *ToastManager) AddError(message string) { m.Add(ToastError, message) }

// AddWarning pushes a warning toast.
func (m *ToastManager) AddWarning(message string) { m.Add(ToastWarning, message) }

// AddInfo pushes an info toast.
func (m *ToastManager) AddInfo(message string) { m.Add(ToastInfo, message) }

// Tick drops expired toasts and reports whether any remain.
func (m *ToastManager) Tick(now time.Time) bool {
	live := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.Expired(now) {
			live = append(live, t)
		}
	}
	m.toasts = live
	return len(m.toasts) > 0
}

// Dismiss removes the oldest toast.
func (m *ToastManager) Dismiss() {
	if len(m.toasts) > 0 {
		m.toasts = m.toasts[1:]
	}
}

// HasToasts reports whether any toast is visible.
func (m *ToastManager) HasToasts() bool {
	return len(m.toasts) > 0
}

// View renders the toast stack.
func (m *ToastManager) View() string {
	if len(m.toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		rendered = append(rendered, m.renderToast(t))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

func (m *ToastManager) renderToast(t Toast) string {
	var border lipgloss.TerminalColor
	var label string
	switch t.Level {
	case ToastError:
		border, label = styles.Rose, "[X]"
	case ToastWarning:
		border, label = styles.Amber, "[!]"
	default:
		border, label = styles.Cyan, "[i]"
	}

	body := label + " " + util.TruncateWidth(t.Message, m.width-8)
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(styles.TextPrimary).
		Padding(0, 1).
		Width(m.width).
		Render(body)
}

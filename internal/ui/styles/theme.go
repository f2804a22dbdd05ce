// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// TERMINAL PROFILE
// =============================================================================

// ColorProfile reports the detected terminal color capability.
func ColorProfile() termenv.Profile {
	return termenv.ColorProfile()
}

// HasDarkBackground reports whether the terminal background is dark.
// Drives lipgloss AdaptiveColor resolution.
func HasDarkBackground() bool {
	return termenv.HasDarkBackground()
}

// ApplyTheme forces light or dark AdaptiveColor resolution. Any other value,
// including "auto", keeps the detected terminal background.
func ApplyTheme(name string) {
	switch name {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}

// =============================================================================
// SHARED STYLES
// =============================================================================

// TitleStyle renders screen and panel titles.
func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)
}

// LabelStyle renders form and card labels.
func LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(TextSecondary)
}

// HintStyle renders keybinding hints and footnotes.
func HintStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(TextMuted)
}

// PanelStyle renders a bordered content panel.
func PanelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
}

// FocusedPanelStyle renders the panel that owns keyboard focus.
func FocusedPanelStyle() lipgloss.Style {
	return PanelStyle().BorderForeground(Secondary)
}

// SelectedRowStyle renders the highlighted row in a list.
func SelectedRowStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(SelectionBg).
		Foreground(TextPrimary).
		Bold(true)
}

// StatusBarStyle renders the bottom status bar.
func StatusBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
}

// CardStyle renders a dashboard card.
func CardStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim).
		Padding(0, 2).
		MarginRight(1)
}

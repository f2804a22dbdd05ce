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
)

// =============================================================================
// PROGRESS DASHBOARD
// =============================================================================

// Dashboard renders the learning progress overview: stat cards plus a
// fourteen-day activity strip.
type Dashboard struct {
	stats  storage.DashboardStats
	recent []int
	width  int
}

// NewDashboard creates an empty dashboard.
func NewDashboard(width int) *Dashboard {
	return &Dashboard{width: width}
}

// SetWidth resizes the dashboard.
func (d *Dashboard) SetWidth(width int) {
	d.width = width
}

// SetStats installs the latest progress numbers.
func (d *Dashboard) SetStats(stats storage.DashboardStats, recent []int) {
	d.stats = stats
	d.recent = recent
}

// View renders the dashboard.
func (d *Dashboard) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle().Render("Your Progress"))
	b.WriteString("\n\n")

	cards := []string{
		d.card("Exchanges", strconv.Itoa(d.stats.TotalExchanges), styles.Cyan),
		d.card("Today", strconv.Itoa(d.stats.ExchangesToday), styles.Emerald),
		d.card("Streak", strconv.Itoa(d.stats.StreakDays)+"d", styles.Amber),
		d.card("Active days", strconv.Itoa(d.stats.TotalDays), styles.Primary),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")

	if d.stats.AvgResponseMilli > 0 {
		avg := time.Duration(d.stats.AvgResponseMilli) * time.Millisecond
		b.WriteString(lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render("Average response time: " + avg.Round(100*time.Millisecond).String()))
		b.WriteString("\n\n")
	}

	b.WriteString(d.renderActivity())
	return b.String()
}

func (d *Dashboard) card(label, value string, accent lipgloss.TerminalColor) string {
	body := lipgloss.NewStyle().
		Foreground(accent).
		Bold(true).
		Render(value) + "\n" +
		lipgloss.NewStyle().Foreground(styles.TextMuted).Render(label)
	return styles.CardStyle().Render(body)
}

// renderActivity draws one bar per day, oldest on the left.
func (d *Dashboard) renderActivity() string {
	if len(d.recent) == 0 {
		return lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render("No activity recorded yet.")
	}

	var peak int
	for _, count := range d.recent {
		if count > peak {
			peak = count
		}
	}

	blocks := []string{" ", "▁", "▂", "▄", "▆", "█"}
	var bar strings.Builder
	for _, count := range d.recent {
		level := 0
		if peak > 0 && count > 0 {
			level = 1 + count*(len(blocks)-2)/peak
			if level >= len(blocks) {
				level = len(blocks) - 1
			}
		}
		bar.WriteString(blocks[level])
	}

	label := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Render("Last " + strconv.Itoa(len(d.recent)) + " days  ")
	return label + lipgloss.NewStyle().Foreground(styles.Emerald).Render(bar.String())
}

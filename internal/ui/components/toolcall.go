// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentor-tui/internal/model"
	"github.com/jeranaias/mentor-tui/internal/ui/styles"
	"github.com/jeranaias/mentor-tui/internal/util"
)

// =============================================================================
// TOOL CALL RENDERING
// =============================================================================

// ToolRenderer formats one backend tool call for the transcript. Renderers
// are keyed by tool name; unknown tools fall back to a generic card.
type ToolRenderer func(call model.ToolCall, width int) string

var toolRenderers = map[string]ToolRenderer{
	"generate_quiz":  renderQuizCall,
	"show_flashcard": renderFlashcardCall,
}

// RegisterToolRenderer installs a renderer for a tool name, replacing any
// existing one.
func RegisterToolRenderer(name string, r ToolRenderer) {
	toolRenderers[name] = r
}

// RenderToolCalls renders every call in the backend's order.
func RenderToolCalls(calls []model.ToolCall, width int) string {
	if len(calls) == 0 {
		return ""
	}
	parts := make([]string, 0, len(calls))
	for _, call := range calls {
		if r, ok := toolRenderers[call.Name]; ok {
			parts = append(parts, r(call, width))
		} else {
			parts = append(parts, renderGenericCall(call, width))
		}
	}
	return strings.Join(parts, "\n")
}

func toolCard(title, body string, width int) string {
	header := lipgloss.NewStyle().
		Foreground(styles.Secondary).
		Bold(true).
		Render(title)
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Secondary).
		Padding(0, 1).
		Width(width).
		Render(header + "\n" + body)
}

func renderGenericCall(call model.ToolCall, width int) string {
	body := util.TruncateWidth(compactJSON(call.Args), width-4)
	return toolCard("tool: "+call.Name, body, width)
}

// renderQuizCall shows the quiz question and its options.
func renderQuizCall(call model.ToolCall, width int) string {
	var args struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
	}
	if err := json.Unmarshal(call.Args, &args); err != nil || args.Question == "" {
		return renderGenericCall(call, width)
	}

	var b strings.Builder
	b.WriteString(args.Question)
	for i, opt := range args.Options {
		b.WriteString("\n  ")
		b.WriteString(string(rune('A' + i)))
		b.WriteString(") ")
		b.WriteString(util.TruncateWidth(opt, width-8))
	}
	return toolCard("Quiz", b.String(), width)
}

// renderFlashcardCall shows front and back of a flashcard.
func renderFlashcardCall(call model.ToolCall, width int) string {
	var args struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	}
	if err := json.Unmarshal(call.Args, &args); err != nil || args.Front == "" {
		return renderGenericCall(call, width)
	}

	back := lipgloss.NewStyle().Foreground(styles.TextMuted).Render(args.Back)
	return toolCard("Flashcard", args.Front+"\n"+back, width)
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/mentor-tui/internal/ui/styles"
)

// =============================================================================
// TERMINAL RENDERER
// =============================================================================

// Renderer turns parsed blocks into styled terminal output.
type Renderer struct {
	Width int
}

// NewRenderer creates a renderer for the given wrap width.
func NewRenderer(width int) *Renderer {
	if width < 20 {
		width = 20
	}
	return &Renderer{Width: width}
}

// Render renders a full block sequence, one blank line between blocks.
func (r *Renderer) Render(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, r.RenderBlock(b))
	}
	return strings.Join(parts, "\n\n")
}

// RenderText parses and renders a markdown string in one step.
func (r *Renderer) RenderText(src string) string {
	return r.Render(Parse(src))
}

// RenderBlock renders a single block.
func (r *Renderer) RenderBlock(b Block) string {
	switch b.Kind {
	case BlockHeading:
		return r.renderHeading(b)
	case BlockList:
		return r.renderList(b)
	case BlockQuote:
		return r.renderQuote(b)
	case BlockCode:
		return r.renderCode(b)
	default:
		return r.renderSpans(b.Spans, r.Width)
	}
}

func (r *Renderer) renderHeading(b Block) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(styles.Primary)
	switch b.Level {
	case 1:
		style = style.Underline(true)
	case 3:
		style = style.Foreground(styles.Secondary)
	}
	return style.MaxWidth(r.Width).Render(spansText(b.Spans))
}

func (r *Renderer) renderList(b Block) string {
	var lines []string
	for i, item := range b.Items {
		marker := "• "
		if b.Ordered {
			marker = strconv.Itoa(i+1) + ". "
		}
		markerStyled := lipgloss.NewStyle().Foreground(styles.Secondary).Render(marker)
		body := r.renderSpans(item, r.Width-len(marker))
		lines = append(lines, markerStyled+indentContinuation(body, len(marker)))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) renderQuote(b Block) string {
	body := r.renderSpans(b.Spans, r.Width-2)
	style := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Overlay).
		PaddingLeft(1)
	return style.Render(body)
}

func (r *Renderer) renderCode(b Block) string {
	code := strings.TrimRight(b.Code, "\n")
	highlighted := highlightCode(code, b.Language)

	var header string
	if b.Language != "" {
		header = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Background(styles.OverlayDim).
			Padding(0, 1).
			Bold(true).
			Render(b.Language) + "\n"
	}

	maxWidth := r.Width - 4
	if maxWidth < 20 {
		maxWidth = 20
	}
	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 1).
		MaxWidth(maxWidth).
		Render(header + highlighted)
}

func (r *Renderer) renderSpans(spans []Span, width int) string {
	var sb strings.Builder
	for _, s := range spans {
		if s.Code {
			sb.WriteString(lipgloss.NewStyle().
				Background(styles.SurfaceDim).
				Foreground(styles.Cyan).
				Render(s.Text))
			continue
		}
		sb.WriteString(s.Text)
	}
	if width < 10 {
		width = 10
	}
	return lipgloss.NewStyle().Width(width).Render(sb.String())
}

// indentContinuation indents wrapped lines so they align under the marker.
func indentContinuation(body string, indent int) string {
	lines := strings.Split(body, "\n")
	if len(lines) <= 1 {
		return body
	}
	pad := strings.Repeat(" ", indent)
	for i := 1; i < len(lines); i++ {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// highlightCode applies chroma ANSI highlighting, falling back to the plain
// source when the language is unknown or formatting fails.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// =============================================================================
// DOCUMENT RENDERER
// =============================================================================

// RenderDocument renders a full markdown document with glamour. Used for
// static screens (help, exported transcripts) where the block contract is
// not needed.
func RenderDocument(src string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(src)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown converts assistant message text into structured display
// blocks.
//
// Parse is a pure function over the input string: no network, no
// persistence, and the same input always yields the same block sequence.
// The supported block set is deliberately small: paragraphs, headings
// (levels 1 through 3), ordered and unordered lists, blockquotes, inline
// code spans, and fenced code blocks with an optional language tag.
package markdown

// BlockKind identifies the type of a display block.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockList
	BlockQuote
	BlockCode
)

// String returns the block kind name.
func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockHeading:
		return "heading"
	case BlockList:
		return "list"
	case BlockQuote:
		return "quote"
	case BlockCode:
		return "code"
	default:
		return "unknown"
	}
}

// Span is a run of inline text. Code spans render with code styling.
type Span struct {
	Text string
	Code bool
}

// Block is one visual unit of a rendered message.
type Block struct {
	Kind BlockKind

	// Spans holds inline content for paragraphs, headings, and quotes.
	Spans []Span

	// Level is the heading level, clamped to 1..3.
	Level int

	// Ordered and Items describe lists. Each item is its own span run.
	Ordered bool
	Items   [][]Span

	// Language and Code describe fenced code blocks.
	Language string
	Code     string
}

// PlainText flattens the block's inline content, ignoring styling.
func (b Block) PlainText() string {
	switch b.Kind {
	case BlockCode:
		return b.Code
	case BlockList:
		var out string
		for i, item := range b.Items {
			if i > 0 {
				out += "\n"
			}
			out += spansText(item)
		}
		return out
	default:
		return spansText(b.Spans)
	}
}

func spansText(spans []Span) string {
	var out string
	for _, s := range spans {
		out += s.Text
	}
	return out
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Parse converts a markdown string into display blocks. Unsupported node
// types degrade to their plain-text content rather than being dropped.
func Parse(src string) []Block {
	source := []byte(src)
	parser := goldmark.New().Parser()
	doc := parser.Parse(text.NewReader(source))

	var blocks []Block
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		blocks = append(blocks, parseNode(node, source)...)
	}
	return blocks
}

func parseNode(node ast.Node, source []byte) []Block {
	switch n := node.(type) {
	case *ast.Heading:
		level := n.Level
		if level > 3 {
			level = 3
		}
		return []Block{{
			Kind:  BlockHeading,
			Level: level,
			Spans: collectSpans(n, source),
		}}

	case *ast.Paragraph, *ast.TextBlock:
		spans := collectSpans(node, source)
		if len(spans) == 0 {
			return nil
		}
		return []Block{{Kind: BlockParagraph, Spans: spans}}

	case *ast.List:
		block := Block{Kind: BlockList, Ordered: n.IsOrdered()}
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			block.Items = append(block.Items, collectItemSpans(item, source))
		}
		return []Block{block}

	case *ast.Blockquote:
		var spans []Span
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			if len(spans) > 0 {
				spans = append(spans, Span{Text: "\n"})
			}
			spans = append(spans, collectSpans(child, source)...)
		}
		return []Block{{Kind: BlockQuote, Spans: spans}}

	case *ast.FencedCodeBlock:
		return []Block{{
			Kind:     BlockCode,
			Language: string(n.Language(source)),
			Code:     blockLines(n, source),
		}}

	case *ast.CodeBlock:
		return []Block{{Kind: BlockCode, Code: blockLines(n, source)}}

	case *ast.ThematicBreak:
		return nil

	default:
		// Unknown container: flatten to a paragraph so content survives.
		spans := collectSpans(node, source)
		if len(spans) == 0 {
			return nil
		}
		return []Block{{Kind: BlockParagraph, Spans: spans}}
	}
}

// collectItemSpans extracts the inline content of one list item. Nested
// lists flatten onto the item line; the block contract is one span run per
// item.
func collectItemSpans(item ast.Node, source []byte) []Span {
	var spans []Span
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		if len(spans) > 0 {
			spans = append(spans, Span{Text: " "})
		}
		if list, ok := child.(*ast.List); ok {
			for sub := list.FirstChild(); sub != nil; sub = sub.NextSibling() {
				spans = append(spans, collectItemSpans(sub, source)...)
			}
			continue
		}
		spans = append(spans, collectSpans(child, source)...)
	}
	return spans
}

// collectSpans walks inline children and flattens them into text and code
// spans. Emphasis and links keep their text content only.
func collectSpans(node ast.Node, source []byte) []Span {
	var spans []Span
	appendText := func(s string) {
		if s == "" {
			return
		}
		// Merge adjacent text spans to keep output stable.
		if len(spans) > 0 && !spans[len(spans)-1].Code {
			spans[len(spans)-1].Text += s
			return
		}
		spans = append(spans, Span{Text: s})
	}

	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *ast.Text:
				appendText(string(c.Segment.Value(source)))
				if c.HardLineBreak() {
					appendText("\n")
				} else if c.SoftLineBreak() {
					appendText(" ")
				}
			case *ast.CodeSpan:
				var sb strings.Builder
				for seg := c.FirstChild(); seg != nil; seg = seg.NextSibling() {
					if t, ok := seg.(*ast.Text); ok {
						sb.Write(t.Segment.Value(source))
					}
				}
				spans = append(spans, Span{Text: sb.String(), Code: true})
			case *ast.AutoLink:
				appendText(string(c.URL(source)))
			case *ast.Image:
				appendText(string(c.Text(source)))
			default:
				walk(child)
			}
		}
	}
	walk(node)
	return spans
}

// blockLines concatenates the raw source lines of a code block.
func blockLines(node ast.Node, source []byte) string {
	var sb strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

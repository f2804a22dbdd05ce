// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Paragraph(t *testing.T) {
	blocks := Parse("Just a plain sentence.")
	require.Len(t, blocks, 1)
	assert.Equal(t, BlockParagraph, blocks[0].Kind)
	assert.Equal(t, "Just a plain sentence.", blocks[0].PlainText())
}

func TestParse_HeadingLevels(t *testing.T) {
	blocks := Parse("# One\n\n## Two\n\n### Three\n\n#### Four")
	require.Len(t, blocks, 4)
	assert.Equal(t, 1, blocks[0].Level)
	assert.Equal(t, 2, blocks[1].Level)
	assert.Equal(t, 3, blocks[2].Level)
	// Deeper levels clamp to 3.
	assert.Equal(t, 3, blocks[3].Level)
	for _, b := range blocks {
		assert.Equal(t, BlockHeading, b.Kind)
	}
}

func TestParse_UnorderedList(t *testing.T) {
	blocks := Parse("- alpha\n- beta\n- gamma")
	require.Len(t, blocks, 1)
	b := blocks[0]
	assert.Equal(t, BlockList, b.Kind)
	assert.False(t, b.Ordered)
	require.Len(t, b.Items, 3)
	assert.Equal(t, "alpha", spansText(b.Items[0]))
	assert.Equal(t, "gamma", spansText(b.Items[2]))
}

func TestParse_OrderedList(t *testing.T) {
	blocks := Parse("1. first\n2. second")
	require.Len(t, blocks, 1)
	assert.True(t, blocks[0].Ordered)
	require.Len(t, blocks[0].Items, 2)
}

func TestParse_Blockquote(t *testing.T) {
	blocks := Parse("> quoted wisdom")
	require.Len(t, blocks, 1)
	assert.Equal(t, BlockQuote, blocks[0].Kind)
	assert.Equal(t, "quoted wisdom", blocks[0].PlainText())
}

func TestParse_FencedCode(t *testing.T) {
	blocks := Parse("```go\nfmt.Println(\"hi\")\n```")
	require.Len(t, blocks, 1)
	b := blocks[0]
	assert.Equal(t, BlockCode, b.Kind)
	assert.Equal(t, "go", b.Language)
	assert.Equal(t, "fmt.Println(\"hi\")", b.Code)
}

func TestParse_FencedCode_NoLanguage(t *testing.T) {
	blocks := Parse("```\nplain\n```")
	require.Len(t, blocks, 1)
	assert.Equal(t, "", blocks[0].Language)
	assert.Equal(t, "plain", blocks[0].Code)
}

func TestParse_InlineCode(t *testing.T) {
	blocks := Parse("Run `go test` before pushing.")
	require.Len(t, blocks, 1)

	var codeSpans []Span
	for _, s := range blocks[0].Spans {
		if s.Code {
			codeSpans = append(codeSpans, s)
		}
	}
	require.Len(t, codeSpans, 1)
	assert.Equal(t, "go test", codeSpans[0].Text)
}

func TestParse_EmphasisKeepsText(t *testing.T) {
	blocks := Parse("this is *important* and **bold**")
	require.Len(t, blocks, 1)
	assert.Equal(t, "this is important and bold", blocks[0].PlainText())
}

func TestParse_MixedDocument(t *testing.T) {
	src := "# Title\n\nintro paragraph\n\n- one\n- two\n\n```python\nprint(1)\n```\n\n> note"
	blocks := Parse(src)
	require.Len(t, blocks, 5)
	assert.Equal(t, BlockHeading, blocks[0].Kind)
	assert.Equal(t, BlockParagraph, blocks[1].Kind)
	assert.Equal(t, BlockList, blocks[2].Kind)
	assert.Equal(t, BlockCode, blocks[3].Kind)
	assert.Equal(t, BlockQuote, blocks[4].Kind)
	assert.Equal(t, "python", blocks[3].Language)
}

func TestParse_Idempotent(t *testing.T) {
	src := "# Title\n\ntext with `code`\n\n1. a\n2. b\n\n```go\nx := 1\n```"
	first := Parse(src)
	second := Parse(src)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("parsing the same input twice produced different blocks")
	}
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("   \n\n  "))
}

func TestRenderer_CodeFallbackOnUnknownLanguage(t *testing.T) {
	// Unknown languages must not panic and must keep the source text.
	out := highlightCode("some opaque text", "nosuchlang")
	assert.Contains(t, out, "opaque")
}

func TestRenderer_RenderTextStable(t *testing.T) {
	r := NewRenderer(60)
	src := "## Step\n\nUse `mentor` to practice."
	assert.Equal(t, r.RenderText(src), r.RenderText(src))
}

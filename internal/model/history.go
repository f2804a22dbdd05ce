// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// HISTORY
// =============================================================================

// HistoryEntry is one (speaker, text) pair mirrored from a resolved turn.
type HistoryEntry struct {
	Speaker Role   `json:"speaker"`
	Text    string `json:"text"`
}

// History is the resolved-only transcript sent as context with each backend
// call. Entries are appended in matched (user, assistant) pairs when a call
// resolves; a pending turn contributes nothing.
type History struct {
	entries []HistoryEntry
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// AppendPair records one resolved exchange.
func (h *History) AppendPair(userText, assistantText string) {
	h.entries = append(h.entries,
		HistoryEntry{Speaker: RoleUser, Text: userText},
		HistoryEntry{Speaker: RoleAssistant, Text: assistantText},
	)
}

// Entries returns a copy of the history entries in order.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Truncate keeps only the first n entries.
func (h *History) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(h.entries) {
		h.entries = h.entries[:n]
	}
}

// Reset clears the history.
func (h *History) Reset() {
	h.entries = nil
}

// Clone returns an independent copy.
func (h *History) Clone() *History {
	return &History{entries: h.Entries()}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/jeranaias/mentor-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// WireType returns the speaker tag used in the backend input payload.
func (r Role) WireType() string {
	if r == RoleAssistant {
		return "ai"
	}
	return "human"
}

// =============================================================================
// TOOL CALLS
// =============================================================================

// ToolCall is a backend-declared interactive payload attached to an
// assistant turn (quiz, flashcard). It is display data; nothing is executed
// locally.
type ToolCall struct {
	ID   string          `json:"id,omitempty"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is one message in a conversation.
//
// Content is mutable only while Pending is true; Resolve fixes it. User
// turns are never pending.
type Turn struct {
	ID        string     `json:"id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Pending   bool       `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewUserTurn creates a final user turn.
func NewUserTurn(content string) *Turn {
	return &Turn{
		ID:        util.NewID("turn"),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewPendingAssistantTurn creates an empty assistant placeholder awaiting a
// backend response.
func NewPendingAssistantTurn() *Turn {
	return &Turn{
		ID:        util.NewID("turn"),
		Role:      RoleAssistant,
		Pending:   true,
		CreatedAt: time.Now(),
	}
}

// Resolve fills a pending turn's content and fixes it. Resolving a
// non-pending turn is a no-op.
func (t *Turn) Resolve(content string) {
	if !t.Pending {
		return
	}
	t.Content = content
	t.Pending = false
}

// Fail marks a pending turn as resolved with empty content. The failed call
// is reported elsewhere; the placeholder stays in the transcript.
func (t *Turn) Fail() {
	if !t.Pending {
		return
	}
	t.Pending = false
}

// IsResolved reports whether the turn's content is final.
func (t *Turn) IsResolved() bool {
	return !t.Pending
}

// Preview returns a single-line truncated preview of the turn content.
func (t *Turn) Preview(maxRunes int) string {
	return util.TruncateRunes(util.FirstLine(t.Content), maxRunes)
}

// IsEmpty reports whether the turn has no content.
func (t *Turn) IsEmpty() bool {
	return strings.TrimSpace(t.Content) == ""
}

// HasToolCalls reports whether the turn carries interactive payloads.
func (t *Turn) HasToolCalls() bool {
	return len(t.ToolCalls) > 0
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"time"

	"github.com/jeranaias/mentor-tui/internal/util"
)

// DefaultTitle is used until the first user turn supplies one.
const DefaultTitle = "New Conversation"

// titleMaxRunes bounds the derived conversation title.
const titleMaxRunes = 50

// ErrTurnNotFound is returned when a turn ID does not exist in the
// conversation.
var ErrTurnNotFound = errors.New("turn not found")

// =============================================================================
// SECTION
// =============================================================================

// Section groups one user turn with the assistant turns that follow it.
// Sections are recomputed from the turn list on demand and never stored.
type Section struct {
	User       *Turn
	Assistants []*Turn
}

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation owns the ordered turn list for one chat.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Turns     []*Turn   `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        util.NewID("conv"),
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddUserTurn appends a final user turn. The first user turn sets the title.
func (c *Conversation) AddUserTurn(content string) *Turn {
	turn := NewUserTurn(content)
	c.Turns = append(c.Turns, turn)
	c.UpdatedAt = time.Now()

	if c.Title == DefaultTitle {
		c.Title = util.TruncateRunes(util.FirstLine(content), titleMaxRunes)
	}
	return turn
}

// AddPendingAssistantTurn appends an empty assistant placeholder.
func (c *Conversation) AddPendingAssistantTurn() *Turn {
	turn := NewPendingAssistantTurn()
	c.Turns = append(c.Turns, turn)
	c.UpdatedAt = time.Now()
	return turn
}

// Find returns the turn with the given ID and its index.
func (c *Conversation) Find(turnID string) (*Turn, int, error) {
	for i, t := range c.Turns {
		if t.ID == turnID {
			return t, i, nil
		}
	}
	return nil, -1, ErrTurnNotFound
}

// NearestUserTurnAt returns the most recent user turn at or before the turn
// with the given ID.
func (c *Conversation) NearestUserTurnAt(turnID string) (*Turn, int, error) {
	_, idx, err := c.Find(turnID)
	if err != nil {
		return nil, -1, err
	}
	for i := idx; i >= 0; i-- {
		if c.Turns[i].Role == RoleUser {
			return c.Turns[i], i, nil
		}
	}
	return nil, -1, ErrTurnNotFound
}

// TruncateFrom removes the turn at index and everything after it.
func (c *Conversation) TruncateFrom(index int) {
	if index < 0 || index >= len(c.Turns) {
		return
	}
	c.Turns = c.Turns[:index]
	c.UpdatedAt = time.Now()
}

// Reset removes every turn and restores the default title.
func (c *Conversation) Reset() {
	c.Turns = nil
	c.Title = DefaultTitle
	c.UpdatedAt = time.Now()
}

// Sections derives the display grouping: one user turn plus the assistant
// turns that follow it. Leading assistant turns (possible only after a
// partial load) form a section with a nil user turn.
func (c *Conversation) Sections() []Section {
	var sections []Section
	for _, t := range c.Turns {
		if t.Role == RoleUser {
			sections = append(sections, Section{User: t})
			continue
		}
		if len(sections) == 0 {
			sections = append(sections, Section{})
		}
		last := &sections[len(sections)-1]
		last.Assistants = append(last.Assistants, t)
	}
	return sections
}

// HasPending reports whether any turn is awaiting resolution.
func (c *Conversation) HasPending() bool {
	for _, t := range c.Turns {
		if t.Pending {
			return true
		}
	}
	return false
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.Turns)
}

// Clone returns a deep copy.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Turns = make([]*Turn, len(c.Turns))
	for i, t := range c.Turns {
		copied := *t
		clone.Turns[i] = &copied
	}
	return &clone
}

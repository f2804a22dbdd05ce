// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller owns the turn list and orchestrates one backend
// exchange per user submission.
//
// All mutation of the conversation, history, and staged attachment flows
// through the controller. Exactly one backend call may be outstanding at a
// time: a submission during awaiting-response is rejected with
// ErrCallInFlight rather than queued, which keeps history ordering equal to
// submission ordering.
package controller

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/mentor-tui/internal/backend"
	"github.com/jeranaias/mentor-tui/internal/model"
)

var (
	// ErrEmptySubmission rejects empty or whitespace-only text.
	ErrEmptySubmission = errors.New("submission is empty")

	// ErrCallInFlight rejects a submission while one is outstanding.
	ErrCallInFlight = errors.New("a response is still pending")

	// ErrNotUserTurn rejects edit or reload anchored on an assistant turn
	// with no user turn before it.
	ErrNotUserTurn = errors.New("operation requires a user turn")
)

// FallbackNotice is shown when the backend cannot be reached.
const FallbackNotice = "Sorry, I'm having trouble connecting to the backend. Please try again."

// State is the controller's per-conversation state machine.
type State int

const (
	StateIdle State = iota
	StateAwaiting
)

// String returns the state name.
func (s State) String() string {
	if s == StateAwaiting {
		return "awaiting-response"
	}
	return "idle"
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller drives one conversation.
type Controller struct {
	client *backend.Client

	mu         sync.Mutex
	conv       *model.Conversation
	history    *model.History
	attachment *model.Attachment
	state      State
}

// New creates a controller with an empty conversation.
func New(client *backend.Client) *Controller {
	return &Controller{
		client:  client,
		conv:    model.NewConversation(),
		history: model.NewHistory(),
	}
}

// Conversation returns a snapshot of the current conversation.
func (c *Controller) Conversation() *model.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.Clone()
}

// ConversationID returns the current conversation identifier.
func (c *Controller) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv.ID
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// History returns a snapshot of the resolved transcript.
func (c *Controller) History() []model.HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Entries()
}

// =============================================================================
// ATTACHMENT STAGING
// =============================================================================

// StageAttachment stages one file for the next submission, replacing any
// previously staged file.
func (c *Controller) StageAttachment(path string) (*model.Attachment, error) {
	att, err := model.LoadAttachment(path)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.attachment = att
	c.mu.Unlock()
	return att, nil
}

// ClearAttachment removes the staged file.
func (c *Controller) ClearAttachment() {
	c.mu.Lock()
	c.attachment = nil
	c.mu.Unlock()
}

// Attachment returns the staged file, if any.
func (c *Controller) Attachment() *model.Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attachment
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Dispatch is one in-flight exchange. Call runs the backend request and
// must be followed by exactly one Complete.
type Dispatch struct {
	controller *Controller

	ConversationID  string
	UserTurnID      string
	AssistantTurnID string
	UserText        string

	history    []model.HistoryEntry
	attachment *model.Attachment
	startedAt  time.Time
}

// Result is the outcome of one exchange.
type Result struct {
	ConversationID  string
	UserTurnID      string
	AssistantTurnID string
	UserText        string
	Content         string
	ToolCalls       []model.ToolCall
	Duration        time.Duration
	Err             error
}

// Submit validates text, appends the user turn and assistant placeholder
// synchronously, and returns the dispatch for the single backend call.
// The staged attachment travels with this dispatch and is cleared.
func (c *Controller) Submit(text string) (*Dispatch, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptySubmission
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateAwaiting {
		return nil, ErrCallInFlight
	}
	return c.dispatchLocked(text), nil
}

// dispatchLocked appends the turn pair and snapshots call inputs.
// Caller holds c.mu.
func (c *Controller) dispatchLocked(text string) *Dispatch {
	userTurn := c.conv.AddUserTurn(text)
	placeholder := c.conv.AddPendingAssistantTurn()
	c.state = StateAwaiting

	d := &Dispatch{
		controller:      c,
		ConversationID:  c.conv.ID,
		UserTurnID:      userTurn.ID,
		AssistantTurnID: placeholder.ID,
		UserText:        text,
		history:         c.history.Entries(),
		attachment:      c.attachment,
		startedAt:       time.Now(),
	}
	c.attachment = nil
	return d
}

// Call performs the backend exchange. Run it off the UI goroutine.
func (d *Dispatch) Call(ctx context.Context) Result {
	res := Result{
		ConversationID:  d.ConversationID,
		UserTurnID:      d.UserTurnID,
		AssistantTurnID: d.AssistantTurnID,
		UserText:        d.UserText,
	}

	resp, err := d.controller.client.Chat(ctx, d.history, d.UserText, d.attachment)
	res.Duration = time.Since(d.startedAt)
	if err != nil {
		res.Err = err
		return res
	}
	res.Content = resp.Content
	res.ToolCalls = resp.ToolCalls
	return res
}

// Complete applies the exchange outcome: on success the placeholder is
// resolved and history gains the matched pair; on failure the placeholder
// stays empty and history is untouched.
func (c *Controller) Complete(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateIdle

	turn, _, err := c.conv.Find(res.AssistantTurnID)
	if err != nil {
		// The conversation was reset or truncated while the call was in
		// flight; nothing to apply.
		log.Printf("TURN_RESOLVE_SKIPPED: conv=%s turn=%s", res.ConversationID, res.AssistantTurnID)
		return
	}

	if res.Err != nil {
		turn.Fail()
		log.Printf("TURN_FAILED: conv=%s turn=%s error=%v", res.ConversationID, res.AssistantTurnID, res.Err)
		return
	}

	turn.ToolCalls = res.ToolCalls
	turn.Resolve(res.Content)
	c.history.AppendPair(res.UserText, res.Content)
}

// Reload truncates back to the most recent user turn at or before turnID
// and resubmits its text, regenerating the response.
func (c *Controller) Reload(turnID string) (*Dispatch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateAwaiting {
		return nil, ErrCallInFlight
	}

	userTurn, idx, err := c.conv.NearestUserTurnAt(turnID)
	if err != nil {
		return nil, err
	}
	text := userTurn.Content

	c.conv.TruncateFrom(idx)
	c.rebuildHistoryLocked()
	return c.dispatchLocked(text), nil
}

// EditAndResubmit replaces a user turn's text, truncates everything after
// the truncation point, and resubmits. The resulting turn list equals what
// a fresh Submit(newText) would produce from the truncated prefix.
func (c *Controller) EditAndResubmit(turnID, newText string) (*Dispatch, error) {
	if strings.TrimSpace(newText) == "" {
		return nil, ErrEmptySubmission
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateAwaiting {
		return nil, ErrCallInFlight
	}

	turn, idx, err := c.conv.Find(turnID)
	if err != nil {
		return nil, err
	}
	if turn.Role != model.RoleUser {
		return nil, ErrNotUserTurn
	}

	c.conv.TruncateFrom(idx)
	c.rebuildHistoryLocked()
	return c.dispatchLocked(newText), nil
}

// rebuildHistoryLocked recomputes history from the remaining turn prefix.
// Only user turns answered by a resolved, non-empty assistant turn
// contribute a pair. Caller holds c.mu.
func (c *Controller) rebuildHistoryLocked() {
	c.history.Reset()
	turns := c.conv.Turns
	for i, t := range turns {
		if t.Role != model.RoleUser {
			continue
		}
		if i+1 < len(turns) {
			next := turns[i+1]
			if next.Role == model.RoleAssistant && next.IsResolved() && next.Content != "" {
				c.history.AppendPair(t.Content, next.Content)
			}
		}
	}
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// Reset starts a fresh conversation, dropping history and any staged
// attachment. Rejected while a call is outstanding.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateAwaiting {
		return ErrCallInFlight
	}
	c.conv = model.NewConversation()
	c.history.Reset()
	c.attachment = nil
	return nil
}

// Replace installs a loaded conversation (sidebar selection) and rebuilds
// history from its resolved turns.
func (c *Controller) Replace(conv *model.Conversation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateAwaiting {
		return ErrCallInFlight
	}
	c.conv = conv.Clone()
	c.attachment = nil
	c.rebuildHistoryLocked()
	return nil
}

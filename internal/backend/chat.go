// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jeranaias/mentor-tui/internal/model"
)

// ErrEmptyInput indicates a chat call with no messages.
var ErrEmptyInput = errors.New("chat input is empty")

// =============================================================================
// WIRE TYPES
// =============================================================================

// InputMessage is one transcript entry in the chat request.
type InputMessage struct {
	Type    string `json:"type"` // "human" or "ai"
	Content string `json:"content"`
}

// FilePayload is an attachment carried with a chat request.
type FilePayload struct {
	Base64    string `json:"base64"`
	Extension string `json:"extension"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Input []InputMessage `json:"input"`
	File  *FilePayload   `json:"file,omitempty"`
}

// ChatResponse is the body of a successful chat call. Tool calls share the
// wire shape of model.ToolCall and travel on to the resolved turn.
type ChatResponse struct {
	Content    string           `json:"content,omitempty"`
	ToolCalls  []model.ToolCall `json:"tool_calls,omitempty"`
	ToolResult json.RawMessage  `json:"tool_result,omitempty"`
}

// HasContent reports whether the response carries assistant text.
func (r *ChatResponse) HasContent() bool {
	return r.Content != ""
}

// =============================================================================
// CHAT CALL
// =============================================================================

// Chat sends one turn to the backend: the prior resolved history, the new
// user text, and an optional attachment.
func (c *Client) Chat(ctx context.Context, history []model.HistoryEntry, userText string, attachment *model.Attachment) (*ChatResponse, error) {
	input := BuildInput(history, userText)
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}

	req := ChatRequest{Input: input}
	if attachment != nil {
		req.File = &FilePayload{
			Base64:    attachment.Base64,
			Extension: attachment.Extension,
		}
	}

	var resp ChatResponse
	if err := c.postJSON(ctx, "/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BuildInput converts resolved history plus the new user text into the wire
// transcript. Order is preserved; the new text is always last.
func BuildInput(history []model.HistoryEntry, userText string) []InputMessage {
	input := make([]InputMessage, 0, len(history)+1)
	for _, entry := range history {
		input = append(input, InputMessage{
			Type:    entry.Speaker.WireType(),
			Content: entry.Text,
		})
	}
	if userText != "" {
		input = append(input, InputMessage{Type: "human", Content: userText})
	}
	return input
}

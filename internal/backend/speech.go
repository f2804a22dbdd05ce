// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
)

// =============================================================================
// TEXT TO SPEECH
// =============================================================================

// speechRequest is the body of POST /speech.
type speechRequest struct {
	Text string `json:"text"`
}

// Speech synthesizes audio for text. Returns the raw audio bytes.
// Requires a bearer token. Synthesis of the same text is replay-safe, so
// transient failures are retried.
func (c *Client) Speech(ctx context.Context, text string) ([]byte, error) {
	if !c.HasToken() {
		return nil, ErrNoToken
	}
	payload, err := json.Marshal(speechRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode speech request: %w", err)
	}
	body, _, err := c.postIdempotent(ctx, "/speech", "application/json", payload, true)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// =============================================================================
// SPEECH TO TEXT
// =============================================================================

// Transcript is the response of a speech-to-text call.
type Transcript struct {
	Text string `json:"text"`
}

// Transcribe uploads audio as multipart form data and returns the
// transcript. Requires a bearer token.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (*Transcript, error) {
	if !c.HasToken() {
		return nil, ErrNoToken
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("failed to copy audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	body, _, err := c.post(ctx, "/speech-to-text", writer.FormDataContentType(), &buf, true)
	if err != nil {
		return nil, err
	}

	var transcript Transcript
	if err := json.Unmarshal(body, &transcript); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	return &transcript, nil
}

// ForwardRaw posts a caller-supplied body to one backend endpoint and hands
// back the response bytes and status. Used by the gateway proxy routes,
// which relay bodies verbatim.
func (c *Client) ForwardRaw(ctx context.Context, endpoint, contentType string, body io.Reader) ([]byte, int, error) {
	if !c.HasToken() {
		return nil, 0, ErrNoToken
	}
	return c.post(ctx, endpoint, contentType, body, true)
}

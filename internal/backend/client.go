// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend implements the HTTP client for the external
// learning-platform API.
//
// The backend provides language-model chat, text-to-speech, speech-to-text,
// and the Google token exchange. It is reached only through the request and
// response shapes defined here; everything behind those endpoints is opaque
// to this client.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConfigured indicates no backend base URL was configured.
	ErrNotConfigured = errors.New("backend is not configured")

	// ErrNoToken indicates the call requires a backend access token and the
	// session does not carry one.
	ErrNoToken = errors.New("no backend access token")

	// ErrUnauthorized indicates the backend rejected the access token.
	ErrUnauthorized = errors.New("backend rejected credentials")

	// ErrUnavailable indicates a network-level failure reaching the backend.
	ErrUnavailable = errors.New("backend unavailable")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Is allows errors.Is comparison against the sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrUnavailable:
		return e.StatusCode >= 500
	}
	return false
}

// =============================================================================
// CLIENT
// =============================================================================

const (
	// maxResponseBytes bounds reads of backend response bodies.
	maxResponseBytes = 32 * 1024 * 1024

	// maxErrorBodyBytes bounds how much of an error body is kept for logs.
	maxErrorBodyBytes = 2048

	// maxAttempts bounds retries of idempotent calls.
	maxAttempts = 3

	defaultTimeout = 120 * time.Second
)

// Client talks to the learning-platform backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	userAgent  string
}

// New creates a client for the given base URL. An empty base URL yields a
// client in degraded mode: every call returns ErrNotConfigured.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "mentor-tui",
	}
}

// WithToken sets the bearer token attached to authenticated calls.
func (c *Client) WithToken(token string) *Client {
	c.token = token
	return c
}

// WithTimeout overrides the default request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Configured reports whether a base URL was supplied.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// HasToken reports whether a bearer token is set.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// postJSON sends a JSON body and decodes a JSON response into out.
func (c *Client) postJSON(ctx context.Context, endpoint string, payload, out any) error {
	body, status, err := c.post(ctx, endpoint, "application/json", jsonReader(payload), true)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response (status %d): %w", endpoint, status, err)
	}
	return nil
}

// post sends a request and returns the raw response body. When authed is
// true the bearer token is attached; callers must have checked HasToken.
func (c *Client) post(ctx context.Context, endpoint, contentType string, body io.Reader, authed bool) ([]byte, int, error) {
	if !c.Configured() {
		return nil, 0, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", c.userAgent)
	if authed && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("BACKEND_CALL_FAILED: endpoint=%s error=%v", endpoint, err)
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := string(data)
		if len(detail) > maxErrorBodyBytes {
			detail = detail[:maxErrorBodyBytes]
		}
		log.Printf("BACKEND_CALL_ERROR: endpoint=%s status=%d", endpoint, resp.StatusCode)
		return nil, resp.StatusCode, &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Body:       detail,
		}
	}
	return data, resp.StatusCode, nil
}

// postIdempotent retries transient failures with exponential backoff. Only
// calls whose replay is safe may use it; chat submissions never go through
// here.
func (c *Client) postIdempotent(ctx context.Context, endpoint, contentType string, body []byte, authed bool) ([]byte, int, error) {
	var (
		data   []byte
		status int
		err    error
	)
	backoff := 500 * time.Millisecond
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		data, status, err = c.post(ctx, endpoint, contentType, bytes.NewReader(body), authed)
		if err == nil || !errors.Is(err, ErrUnavailable) {
			return data, status, err
		}
		if attempt == maxAttempts {
			break
		}
		log.Printf("BACKEND_RETRY: endpoint=%s attempt=%d", endpoint, attempt)
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return data, status, err
}

func jsonReader(payload any) io.Reader {
	data, err := json.Marshal(payload)
	if err != nil {
		// Payload types are local structs; marshal cannot fail for them.
		return strings.NewReader("{}")
	}
	return bytes.NewReader(data)
}

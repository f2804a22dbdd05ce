// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the signed session artifact.
//
// A session proves a user signed in and carries the backend-issued access
// token. Sessions are serialized as base64url(JSON) + "." + HMAC-SHA256 tag
// and expire after a configured maximum age (7 days by default). An expired
// or tampered token is indistinguishable from no session at all.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

var (
	// ErrNoSession covers absent, malformed, tampered, and expired tokens.
	// Callers treat all of these as "not signed in".
	ErrNoSession = errors.New("no valid session")

	// ErrWeakSecret indicates the configured signing secret is too short.
	ErrWeakSecret = errors.New("session secret must be at least 16 bytes")
)

// minSecretLen rejects trivially guessable signing secrets.
const minSecretLen = 16

// =============================================================================
// SESSION
// =============================================================================

// User is the identity profile carried in a session.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}

// Session is the signed artifact payload.
type Session struct {
	ID          string    `json:"sid"`
	AccessToken string    `json:"accessToken,omitempty"`
	UserID      string    `json:"userId,omitempty"`
	GoogleToken string    `json:"googleToken,omitempty"`
	User        User      `json:"user"`
	IssuedAt    time.Time `json:"iat"`
	ExpiresAt   time.Time `json:"exp"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// HasBackendToken reports whether the backend exchange succeeded at sign-in.
// A session without one is still signed in, but backend-authenticated calls
// will be refused.
func (s *Session) HasBackendToken() bool {
	return s.AccessToken != ""
}

// =============================================================================
// CODEC
// =============================================================================

// Codec signs and verifies session tokens.
type Codec struct {
	key    []byte
	maxAge time.Duration
}

// NewCodec derives a signing key from secret via HKDF-SHA256.
func NewCodec(secret string, maxAge time.Duration) (*Codec, error) {
	if len(secret) < minSecretLen {
		return nil, ErrWeakSecret
	}
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("mentor-session-v1"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive signing key: %w", err)
	}
	return &Codec{key: key, maxAge: maxAge}, nil
}

// MaxAge returns the configured session lifetime.
func (c *Codec) MaxAge() time.Duration {
	return c.maxAge
}

// Issue creates a signed session for the given identity and credentials.
func (c *Codec) Issue(user User, accessToken, userID, googleToken string) (*Session, string, error) {
	now := time.Now()
	sess := &Session{
		ID:          uuid.New().String(),
		AccessToken: accessToken,
		UserID:      userID,
		GoogleToken: googleToken,
		User:        user,
		IssuedAt:    now,
		ExpiresAt:   now.Add(c.maxAge),
	}
	token, err := c.Encode(sess)
	if err != nil {
		return nil, "", err
	}
	return sess, token, nil
}

// Encode serializes and signs a session.
func (c *Codec) Encode(sess *Session) (string, error) {
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + c.sign(encoded), nil
}

// Decode verifies a token and returns the session. Any verification
// failure, including expiry, returns ErrNoSession.
func (c *Codec) Decode(token string) (*Session, error) {
	return c.decodeAt(token, time.Now())
}

func (c *Codec) decodeAt(token string, now time.Time) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	encoded, tag, ok := strings.Cut(token, ".")
	if !ok {
		return nil, ErrNoSession
	}

	// SECURITY: constant-time tag comparison.
	expected := c.sign(encoded)
	if subtle.ConstantTimeCompare([]byte(tag), []byte(expected)) != 1 {
		return nil, ErrNoSession
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrNoSession
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, ErrNoSession
	}
	if sess.Expired(now) {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Renew reissues a session with a fresh expiry when it is past half of its
// lifetime. Returns the (possibly unchanged) session, its token, and
// whether a reissue happened. Renewal keeps the session ID stable.
func (c *Codec) Renew(sess *Session) (*Session, string, bool, error) {
	now := time.Now()
	if now.Sub(sess.IssuedAt) < c.maxAge/2 {
		token, err := c.Encode(sess)
		return sess, token, false, err
	}

	renewed := *sess
	renewed.IssuedAt = now
	renewed.ExpiresAt = now.Add(c.maxAge)
	token, err := c.Encode(&renewed)
	if err != nil {
		return nil, "", false, err
	}
	return &renewed, token, true, nil
}

func (c *Codec) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

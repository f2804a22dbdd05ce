// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/mentor-tui/internal/backend"
	"github.com/jeranaias/mentor-tui/internal/session"
)

func newTestService(t *testing.T, backendURL string) (*Service, *session.Manager) {
	t.Helper()
	codec, err := session.NewCodec("a-sufficiently-long-test-secret", 7*24*time.Hour)
	require.NoError(t, err)
	manager := session.NewManager(codec, t.TempDir())
	return NewService(backend.New(backendURL), codec, manager), manager
}

func TestSignIn_ExchangeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/google", r.URL.Path)
		var req backend.ExchangeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "g-token", req.Token)
		json.NewEncoder(w).Encode(backend.ExchangeResponse{AccessToken: "b-token", UserID: "u42"})
	}))
	defer server.Close()

	service, manager := newTestService(t, server.URL)
	sess, err := service.SignIn(context.Background(), Profile{
		GoogleToken: "g-token",
		Email:       "ada@example.com",
		Name:        "Ada",
		Picture:     "https://pic",
	})
	require.NoError(t, err)
	assert.Equal(t, "b-token", sess.AccessToken)
	assert.Equal(t, "u42", sess.UserID)
	assert.Equal(t, "ada@example.com", sess.User.Email)

	// The session is installed in the manager.
	access, err := manager.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "b-token", access)
}

func TestSignIn_ExchangeFailureDoesNotBlockSignIn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	service, manager := newTestService(t, server.URL)
	sess, err := service.SignIn(context.Background(), Profile{
		GoogleToken: "g-token",
		Email:       "ada@example.com",
	})
	require.NoError(t, err)
	assert.False(t, sess.HasBackendToken())
	assert.True(t, manager.SignedIn())
}

func TestSignIn_UnconfiguredBackendDegrades(t *testing.T) {
	service, manager := newTestService(t, "")
	sess, err := service.SignIn(context.Background(), Profile{
		GoogleToken: "g-token",
		Email:       "ada@example.com",
	})
	require.NoError(t, err)
	assert.False(t, sess.HasBackendToken())
	assert.True(t, manager.SignedIn())
}

func TestSignIn_RequiresIdentity(t *testing.T) {
	service, _ := newTestService(t, "")
	_, err := service.SignIn(context.Background(), Profile{Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrMissingIdentity)

	_, err = service.SignIn(context.Background(), Profile{GoogleToken: "tok"})
	assert.ErrorIs(t, err, ErrMissingIdentity)
}

func TestSanitizeRedirect(t *testing.T) {
	base := "https://app.example.com"
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"relative path", "/dashboard", "https://app.example.com/dashboard"},
		{"same origin absolute", "https://app.example.com/chat", "https://app.example.com/chat"},
		{"other origin", "https://evil.example.org/", base},
		{"scheme relative", "//evil.example.org/x", base},
		{"other scheme", "javascript:alert(1)", base},
		{"empty", "", base},
		{"garbage", "ht tp://x", base},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeRedirect(tt.target, base))
		})
	}
}

func TestTOTPGuard_DisabledAcceptsAnything(t *testing.T) {
	guard := NewTOTPGuard("")
	assert.False(t, guard.Enabled())
	assert.NoError(t, guard.Verify("000000"))
}

func TestTOTPGuard_ValidatesCode(t *testing.T) {
	secret, _, err := GenerateSecret("ada@example.com")
	require.NoError(t, err)

	guard := NewTOTPGuard(secret)
	require.True(t, guard.Enabled())

	now := time.Now()
	code, err := totp.GenerateCode(secret, now)
	require.NoError(t, err)

	assert.NoError(t, guard.VerifyAt(code, now))
	assert.ErrorIs(t, guard.VerifyAt("000000", now), ErrBadTOTPCode)
}

// establishedManager returns a manager already holding a signed-in session,
// as after a restore from disk.
func establishedManager(t *testing.T) *session.Manager {
	t.Helper()
	codec, err := session.NewCodec("a-sufficiently-long-test-secret", time.Hour)
	require.NoError(t, err)
	mgr := session.NewManager(codec, t.TempDir())
	sess, token, err := codec.Issue(session.User{ID: "u1", Email: "ada@example.com"}, "b-token", "u1", "g-token")
	require.NoError(t, err)
	require.NoError(t, mgr.Establish(sess, token))
	return mgr
}

func TestGuardedRestore_RejectedCodeSignsOut(t *testing.T) {
	mgr := establishedManager(t)
	secret, _, err := GenerateSecret("ada@example.com")
	require.NoError(t, err)
	guard := NewTOTPGuard(secret)

	valid, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	wrong := "000000"
	if wrong == valid {
		wrong = "000001"
	}

	err = GuardedRestore(mgr, guard, func() (string, error) { return wrong, nil })
	assert.ErrorIs(t, err, ErrBadTOTPCode)
	assert.False(t, mgr.SignedIn(), "the session file alone must not resume sign-in")
}

func TestGuardedRestore_ValidCodeKeepsSession(t *testing.T) {
	mgr := establishedManager(t)
	secret, _, err := GenerateSecret("ada@example.com")
	require.NoError(t, err)
	guard := NewTOTPGuard(secret)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	require.NoError(t, GuardedRestore(mgr, guard, func() (string, error) { return code, nil }))
	assert.True(t, mgr.SignedIn())
}

func TestGuardedRestore_DisabledGuardSkipsPrompt(t *testing.T) {
	mgr := establishedManager(t)
	err := GuardedRestore(mgr, NewTOTPGuard(""), func() (string, error) {
		t.Fatal("prompt must not run when the guard is disabled")
		return "", nil
	})
	assert.NoError(t, err)
	assert.True(t, mgr.SignedIn())
}

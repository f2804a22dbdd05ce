// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/mentor-tui/internal/config"
	"github.com/jeranaias/mentor-tui/internal/session"
)

func newTestGateway(t *testing.T, backendURL string) (*Server, *session.Codec) {
	t.Helper()
	codec, err := session.NewCodec("a-sufficiently-long-test-secret", 7*24*time.Hour)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Backend.BaseURL = backendURL
	cfg.Gateway.SiteURL = "https://app.example.com"
	cfg.Gateway.RateLimitRPS = 1000
	cfg.Gateway.RateLimitBurst = 1000
	return New(cfg, codec), codec
}

func sessionToken(t *testing.T, codec *session.Codec, accessToken string) string {
	t.Helper()
	_, token, err := codec.Issue(session.User{ID: "u1", Email: "a@b.c"}, accessToken, "u1", "g")
	require.NoError(t, err)
	return token
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestGateway(t, "")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSpeech_NoSessionIs401AndNoUpstreamCall(t *testing.T) {
	var upstreamCalls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
	}))
	defer upstream.Close()

	srv, _ := newTestGateway(t, upstream.URL)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ai/speech", strings.NewReader(`{"text":"hi"}`))
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	assert.Zero(t, upstreamCalls.Load(), "no outbound call may be made")
}

func TestSpeech_SessionWithoutBackendTokenIs401(t *testing.T) {
	srv, codec := newTestGateway(t, "http://unused.invalid")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ai/speech", strings.NewReader(`{"text":"hi"}`))
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, codec, ""))
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestSpeech_ForwardsBodyAndBearerRelaysAudio(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/speech", r.URL.Path)
		assert.Equal(t, "Bearer backend-tok", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["text"])
		w.Write([]byte("audio-bytes"))
	}))
	defer upstream.Close()

	srv, codec := newTestGateway(t, upstream.URL)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ai/speech", strings.NewReader(`{"text":"hello"}`))
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionToken(t, codec, "backend-tok")})
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio-bytes", rec.Body.String())
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
}

func TestSpeech_UpstreamFailureIsGeneric500(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "secret upstream detail", http.StatusBadGateway)
	}))
	defer upstream.Close()

	srv, codec := newTestGateway(t, upstream.URL)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ai/speech", strings.NewReader(`{"text":"hi"}`))
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, codec, "tok"))
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "secret upstream detail")
}

func TestSpeechToText_ForwardsMultipart(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/speech-to-text", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")
		json.NewEncoder(w).Encode(map[string]string{"text": "transcribed"})
	}))
	defer upstream.Close()

	srv, codec := newTestGateway(t, upstream.URL)
	body := strings.NewReader("--xx\r\nContent-Disposition: form-data; name=\"file\"; filename=\"a.wav\"\r\n\r\ndata\r\n--xx--\r\n")
	req := httptest.NewRequest(http.MethodPost, "/api/ai/speech-to-text", body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xx")
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, codec, "tok"))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"transcribed"}`, rec.Body.String())
}

func TestGoogleAuth_IssuesCookieAndRelaysCredentials(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/google", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "b-tok", "user_id": "u9"})
	}))
	defer upstream.Close()

	srv, codec := newTestGateway(t, upstream.URL)
	body := `{"token":"g-tok","email":"ada@example.com","name":"Ada","redirect":"/dashboard"}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/google", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp googleAuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "b-tok", resp.AccessToken)
	assert.Equal(t, "u9", resp.UserID)
	assert.Equal(t, "https://app.example.com/dashboard", resp.Redirect)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	var sessCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == SessionCookieName {
			sessCookie = c
		}
	}
	require.NotNil(t, sessCookie)
	sess, err := codec.Decode(sessCookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "b-tok", sess.AccessToken)
	assert.Equal(t, "ada@example.com", sess.User.Email)
}

func TestGoogleAuth_ExchangeFailureStillSignsIn(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	srv, codec := newTestGateway(t, upstream.URL)
	body := `{"token":"g-tok","email":"ada@example.com"}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/google", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp googleAuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.AccessToken)

	// The cookie session exists but carries no backend token.
	var token string
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			token = c.Value
		}
	}
	require.NotEmpty(t, token)
	sess, err := codec.Decode(token)
	require.NoError(t, err)
	assert.False(t, sess.HasBackendToken())
}

func TestGoogleAuth_RejectsMissingFields(t *testing.T) {
	srv, _ := newTestGateway(t, "")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/google", strings.NewReader(`{"email":"a@b.c"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoogleAuth_RedirectFallsBackToSiteURL(t *testing.T) {
	srv, _ := newTestGateway(t, "")
	body := `{"token":"g","email":"a@b.c","redirect":"https://evil.example.org/"}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/google", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp googleAuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://app.example.com", resp.Redirect)
}

func TestExpiredSessionBehavesAsUnauthenticated(t *testing.T) {
	srv, _ := newTestGateway(t, "http://unused.invalid")

	// A codec with a tiny max age issues an already-stale token.
	shortCodec, err := session.NewCodec("a-sufficiently-long-test-secret", time.Nanosecond)
	require.NoError(t, err)
	_, token, err := shortCodec.Issue(session.User{ID: "u1"}, "tok", "u1", "")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ai/speech", strings.NewReader(`{"text":"hi"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimiter_Blocks(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "limits are per client")
}

func TestSignOutClearsCookie(t *testing.T) {
	srv, _ := newTestGateway(t, "")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signout", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

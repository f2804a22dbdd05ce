// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server implements the local HTTP gateway.
//
// The gateway exposes the platform's proxy routes to companion tools: each
// route verifies the signed session, forwards the request body to one fixed
// backend endpoint with the session's bearer token attached, and relays the
// backend's response. Upstream detail never reaches the caller; failures
// map to a generic 500 with the detail logged server-side.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jeranaias/mentor-tui/internal/auth"
	"github.com/jeranaias/mentor-tui/internal/backend"
	"github.com/jeranaias/mentor-tui/internal/config"
	"github.com/jeranaias/mentor-tui/internal/session"
)

// Request body limits.
const (
	maxJSONBodyBytes      = 1 * 1024 * 1024
	maxMultipartBodyBytes = 25 * 1024 * 1024
)

// Server is the local gateway.
type Server struct {
	cfg        config.Gateway
	backendURL string
	timeout    time.Duration
	codec      *session.Codec
	httpServer *http.Server

	startedAt time.Time
}

// New creates a gateway server.
func New(cfg *config.Config, codec *session.Codec) *Server {
	return &Server{
		cfg:        cfg.Gateway,
		backendURL: cfg.Backend.BaseURL,
		timeout:    cfg.BackendTimeout(),
		codec:      codec,
	}
}

// Handler builds the routed and middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/auth/google", s.handleGoogleAuth)
	mux.HandleFunc("POST /api/auth/signout", s.handleSignOut)

	protected := http.NewServeMux()
	protected.HandleFunc("POST /api/ai/speech", s.handleSpeech)
	protected.HandleFunc("POST /api/ai/speech-to-text", s.handleSpeechToText)
	mux.Handle("/api/ai/", Chain(protected, RequireSession(s.codec)))

	rl := NewRateLimiter(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst)
	return Chain(mux,
		RecoveryMiddleware,
		LoggingMiddleware,
		CORSMiddleware(s.cfg.AllowedOrigins),
		rl.Middleware,
	)
}

// Start runs the gateway until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	s.startedAt = time.Now()
	s.httpServer = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("GATEWAY_STARTED: addr=%s", s.cfg.ListenAddr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	log.Printf("GATEWAY_STOPPING: uptime=%s", time.Since(s.startedAt).Round(time.Second))
	return s.httpServer.Shutdown(ctx)
}

// client builds a backend client carrying the given bearer token.
func (s *Server) client(token string) *backend.Client {
	return backend.New(s.backendURL).WithToken(token).WithTimeout(s.timeout)
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// googleAuthRequest mirrors the platform's sign-in payload.
type googleAuthRequest struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	Redirect string `json:"redirect,omitempty"`
}

type googleAuthResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Redirect    string `json:"redirect,omitempty"`
}

// handleGoogleAuth signs the caller in: it exchanges the Google token with
// the backend, issues the signed session cookie, and relays the backend
// credential pair. Exchange failure does not block sign-in; the response
// then carries empty credentials.
func (s *Server) handleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var req googleAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Token == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "token and email are required")
		return
	}

	var accessToken, userID string
	client := backend.New(s.backendURL).WithTimeout(s.timeout)
	if client.Configured() {
		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()
		resp, err := client.ExchangeGoogleToken(ctx, backend.ExchangeRequest{
			Token:   req.Token,
			Email:   req.Email,
			Name:    req.Name,
			Picture: req.Picture,
		})
		if err != nil {
			log.Printf("AUTH_EXCHANGE_FAILED: user=%s error=%v", req.Email, err)
		} else {
			accessToken = resp.AccessToken
			userID = resp.UserID
		}
	} else {
		log.Printf("AUTH_EXCHANGE_SKIPPED: backend not configured, user=%s", req.Email)
	}

	user := session.User{ID: userID, Name: req.Name, Email: req.Email, Image: req.Picture}
	_, token, err := s.codec.Issue(user, accessToken, userID, req.Token)
	if err != nil {
		log.Printf("SESSION_ISSUE_FAILED: user=%s error=%v", req.Email, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	setSessionCookie(w, token, s.codec.MaxAge())

	writeJSON(w, http.StatusOK, googleAuthResponse{
		AccessToken: accessToken,
		UserID:      userID,
		Redirect:    auth.SanitizeRedirect(req.Redirect, s.cfg.SiteURL),
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleSpeech forwards {text} to the backend TTS endpoint and relays the
// audio bytes.
func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok || !sess.HasBackendToken() {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	s.forward(w, r, sess, "/speech", "application/json", "audio/mpeg")
}

// handleSpeechToText forwards the multipart audio upload and relays the
// transcript JSON.
func (s *Server) handleSpeechToText(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok || !sess.HasBackendToken() {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBodyBytes)
	s.forward(w, r, sess, "/speech-to-text", r.Header.Get("Content-Type"), "application/json")
}

// forward relays the request body to one backend endpoint. Any upstream
// failure collapses to a generic 500.
func (s *Server) forward(w http.ResponseWriter, r *http.Request, sess *session.Session, endpoint, contentType, responseType string) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	body, _, err := s.client(sess.AccessToken).ForwardRaw(ctx, endpoint, contentType, r.Body)
	if err != nil {
		log.Printf("PROXY_UPSTREAM_FAILED: endpoint=%s user=%s error=%v", endpoint, sess.User.Email, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", responseType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("RESPONSE_ENCODE_FAILED: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

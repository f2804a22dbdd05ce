// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth implements sign-in against the Google identity provider and
// the backend token exchange.
//
// Sign-in has two halves: the identity half (a Google token plus profile
// fields, obtained out of band) and the backend half (exchanging that token
// for a backend-issued access token). The backend half is best-effort: if
// the exchange fails the user is still signed in, but backend-authenticated
// calls will be refused until the next successful sign-in.
package auth

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/jeranaias/mentor-tui/internal/backend"
	"github.com/jeranaias/mentor-tui/internal/session"
)

// ErrMissingIdentity indicates a sign-in attempt without a Google token or
// email.
var ErrMissingIdentity = errors.New("google token and email are required")

// Profile is the identity handed to SignIn.
type Profile struct {
	GoogleToken string
	Email       string
	Name        string
	Picture     string
}

// Service performs sign-in and session issuance.
type Service struct {
	client  *backend.Client
	codec   *session.Codec
	manager *session.Manager
}

// NewService creates the sign-in service.
func NewService(client *backend.Client, codec *session.Codec, manager *session.Manager) *Service {
	return &Service{client: client, codec: codec, manager: manager}
}

// SignIn exchanges the profile for a backend token, issues a signed
// session, and installs it in the manager.
//
// Exchange failure is logged, never fatal: the session is issued without a
// backend token. An unconfigured backend degrades the same way.
func (s *Service) SignIn(ctx context.Context, profile Profile) (*session.Session, error) {
	if strings.TrimSpace(profile.GoogleToken) == "" || strings.TrimSpace(profile.Email) == "" {
		return nil, ErrMissingIdentity
	}

	var accessToken, userID string
	if !s.client.Configured() {
		log.Printf("AUTH_EXCHANGE_SKIPPED: backend not configured, user=%s", profile.Email)
	} else {
		resp, err := s.client.ExchangeGoogleToken(ctx, backend.ExchangeRequest{
			Token:   profile.GoogleToken,
			Email:   profile.Email,
			Name:    profile.Name,
			Picture: profile.Picture,
		})
		if err != nil {
			log.Printf("AUTH_EXCHANGE_FAILED: user=%s error=%v", profile.Email, err)
		} else {
			accessToken = resp.AccessToken
			userID = resp.UserID
			log.Printf("AUTH_EXCHANGE_OK: user=%s backend_user=%s", profile.Email, userID)
		}
	}

	user := session.User{
		ID:    userID,
		Name:  profile.Name,
		Email: profile.Email,
		Image: profile.Picture,
	}
	sess, token, err := s.codec.Issue(user, accessToken, userID, profile.GoogleToken)
	if err != nil {
		return nil, err
	}
	if err := s.manager.Establish(sess, token); err != nil {
		return nil, err
	}
	return sess, nil
}

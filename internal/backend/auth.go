// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
)

// ExchangeRequest is the body of POST /api/auth/google.
type ExchangeRequest struct {
	Token   string `json:"token"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// ExchangeResponse is the backend-issued credential pair.
type ExchangeResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}

// ExchangeGoogleToken trades a Google identity token plus profile fields for
// a backend-issued access token. This call is unauthenticated.
func (c *Client) ExchangeGoogleToken(ctx context.Context, req ExchangeRequest) (*ExchangeResponse, error) {
	var resp ExchangeResponse
	if err := c.postJSON(ctx, "/api/auth/google", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"errors"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/jeranaias/mentor-tui/internal/session"
)

// ErrBadTOTPCode indicates the one-time code did not validate.
var ErrBadTOTPCode = errors.New("invalid one-time code")

// TOTPGuard gates reuse of the on-disk session token behind a one-time
// code. The guard is active only when a TOTP secret is configured; the
// session file alone is then not enough to resume a signed-in state.
type TOTPGuard struct {
	secret string
}

// NewTOTPGuard creates a guard. An empty secret disables it.
func NewTOTPGuard(secret string) *TOTPGuard {
	return &TOTPGuard{secret: secret}
}

// Enabled reports whether a secret is configured.
func (g *TOTPGuard) Enabled() bool {
	return g.secret != ""
}

// Verify checks a code against the configured secret. Always succeeds when
// the guard is disabled.
func (g *TOTPGuard) Verify(code string) error {
	if !g.Enabled() {
		return nil
	}
	if !totp.Validate(code, g.secret) {
		return ErrBadTOTPCode
	}
	return nil
}

// GuardedRestore gates a restored on-disk session behind the one-time code.
// With the guard disabled or no session present it is a no-op. A missing or
// rejected code signs the session out, so the session file alone cannot
// resume a signed-in state.
func GuardedRestore(mgr *session.Manager, guard *TOTPGuard, promptCode func() (string, error)) error {
	if guard == nil || !guard.Enabled() || !mgr.SignedIn() {
		return nil
	}
	code, err := promptCode()
	if err != nil {
		mgr.SignOut()
		return err
	}
	if err := guard.Verify(code); err != nil {
		mgr.SignOut()
		return err
	}
	return nil
}

// GenerateSecret creates a new TOTP secret for enrollment and returns the
// otpauth URL to load into an authenticator app.
func GenerateSecret(account string) (secret, otpauthURL string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "mentor-tui",
		AccountName: account,
		Period:      30,
	})
	if err != nil {
		return "", "", err
	}
	return key.Secret(), key.URL(), nil
}

// VerifyAt checks a code at a specific time. Used by tests.
func (g *TOTPGuard) VerifyAt(code string, at time.Time) error {
	if !g.Enabled() {
		return nil
	}
	ok, err := totp.ValidateCustom(code, g.secret, at, totp.ValidateOpts{
		Period: 30,
		Skew:   1,
		Digits: 6,
	})
	if err != nil || !ok {
		return ErrBadTOTPCode
	}
	return nil
}

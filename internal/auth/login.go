// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/peterh/liner"
)

// ErrLoginAborted indicates the user canceled the prompt.
var ErrLoginAborted = errors.New("login aborted")

// PromptTOTPCode reads a one-time code from the terminal. Used to unlock a
// restored session before the TUI starts.
func PromptTOTPCode() (string, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	code, err := line.Prompt("One-time code: ")
	if err != nil {
		if err == liner.ErrPromptAborted {
			return "", ErrLoginAborted
		}
		return "", err
	}
	return strings.TrimSpace(code), nil
}

// PromptLogin runs the interactive sign-in flow on the terminal.
//
// The Google token is obtained out of band (the platform's sign-in page
// prints it for CLI use) and pasted here along with the profile fields.
// When the TOTP guard is enabled a one-time code is required as well.
func PromptLogin(ctx context.Context, service *Service, guard *TOTPGuard) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	ask := func(prompt string) (string, error) {
		value, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				return "", ErrLoginAborted
			}
			return "", err
		}
		return strings.TrimSpace(value), nil
	}

	token, err := line.PasswordPrompt("Google token: ")
	if err != nil {
		if err == liner.ErrPromptAborted {
			return ErrLoginAborted
		}
		return err
	}
	email, err := ask("Email: ")
	if err != nil {
		return err
	}
	name, err := ask("Name: ")
	if err != nil {
		return err
	}

	if guard != nil && guard.Enabled() {
		code, err := ask("One-time code: ")
		if err != nil {
			return err
		}
		if err := guard.Verify(code); err != nil {
			return err
		}
	}

	sess, err := service.SignIn(ctx, Profile{
		GoogleToken: strings.TrimSpace(token),
		Email:       email,
		Name:        name,
	})
	if err != nil {
		return err
	}

	if sess.HasBackendToken() {
		fmt.Printf("Signed in as %s\n", sess.User.Email)
	} else {
		fmt.Printf("Signed in as %s (backend exchange unavailable; chat and speech are disabled)\n", sess.User.Email)
	}
	return nil
}

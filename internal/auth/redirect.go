// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"net/url"
	"strings"
)

// SanitizeRedirect restricts post-sign-in redirect targets.
//
// Relative paths resolve against the base URL; absolute targets must share
// the base URL's origin. Everything else, including protocol-relative
// ("//host") and unparsable targets, falls back to the base URL.
func SanitizeRedirect(target, baseURL string) string {
	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return baseURL
	}

	target = strings.TrimSpace(target)
	if target == "" {
		return baseURL
	}

	// "//host/path" is scheme-relative and escapes the origin.
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		return base.Scheme + "://" + base.Host + target
	}

	u, err := url.Parse(target)
	if err != nil {
		return baseURL
	}
	if u.IsAbs() && u.Scheme == base.Scheme && u.Host == base.Host {
		return target
	}
	return baseURL
}

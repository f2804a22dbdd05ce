// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID creates an opaque identifier of the form "<prefix>_<16 hex chars>".
// Uses crypto/rand; 64 bits of randomness is enough to make collisions
// within one install implausible.
func NewID(prefix string) string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return prefix + "_" + hex.EncodeToString(bytes)
}

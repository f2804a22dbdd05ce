// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the mentor-tui application.
//
// It covers display-safe string truncation, opaque identifier generation,
// crash-safe file writes, and the debounce/throttle primitives the UI uses
// to coalesce resize and scroll events.
package util

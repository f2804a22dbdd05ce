// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the mentor TUI:
// the transcript view, input panel, sidebar, dashboard cards, status bar,
// spinner, and non-blocking toasts.
package components

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea model for the mentor TUI.
//
// The model owns no conversation state of its own: every turn mutation goes
// through the controller, and the view is re-rendered from controller
// snapshots. Backend calls run as tea commands so the event loop never
// blocks on the network.
package chat

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/mentor-tui/internal/config"
	"github.com/jeranaias/mentor-tui/internal/controller"
	"github.com/jeranaias/mentor-tui/internal/model"
	"github.com/jeranaias/mentor-tui/internal/storage"
)

// =============================================================================
// EXCHANGE MESSAGES
// =============================================================================

// ExchangeResultMsg delivers the outcome of one backend exchange.
type ExchangeResultMsg struct {
	Result controller.Result
}

// =============================================================================
// STORAGE MESSAGES
// =============================================================================

// ConversationsListedMsg delivers the sidebar listing.
type ConversationsListedMsg struct {
	Items []storage.Meta
	Err   error
}

// ConversationLoadedMsg delivers a conversation selected from the sidebar.
type ConversationLoadedMsg struct {
	Conv *model.Conversation
	Err  error
}

// ConversationSavedMsg confirms a save.
type ConversationSavedMsg struct {
	ID  string
	Err error
}

// ConversationExportedMsg confirms an export to disk.
type ConversationExportedMsg struct {
	Path string
	Err  error
}

// StatsMsg delivers dashboard numbers.
type StatsMsg struct {
	Stats  storage.DashboardStats
	Recent []int
	Err    error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// DisplayUpdatedMsg delivers hot-reloaded display options from the config
// watcher.
type DisplayUpdatedMsg struct {
	Display config.Display
}

// =============================================================================
// VOICE MESSAGES
// =============================================================================

// SpeechSavedMsg reports synthesized audio written to disk.
type SpeechSavedMsg struct {
	Path string
	Err  error
}

// TranscriptMsg delivers a speech-to-text result for the input line.
type TranscriptMsg struct {
	Text string
	Err  error
}

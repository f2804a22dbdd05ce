// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/mentor-tui/internal/backend"
	"github.com/jeranaias/mentor-tui/internal/controller"
	"github.com/jeranaias/mentor-tui/internal/model"
	"github.com/jeranaias/mentor-tui/internal/storage"
	"github.com/jeranaias/mentor-tui/internal/util"
)

// =============================================================================
// TEA COMMANDS
// =============================================================================

// exchangeCmd runs one dispatched backend call off the event loop.
func exchangeCmd(d *controller.Dispatch, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return ExchangeResultMsg{Result: d.Call(ctx)}
	}
}

// listConversationsCmd loads the sidebar listing.
func listConversationsCmd(store *storage.ConversationStore) tea.Cmd {
	return func() tea.Msg {
		items, err := store.List()
		return ConversationsListedMsg{Items: items, Err: err}
	}
}

// searchConversationsCmd narrows the sidebar listing with a case-folded
// search over titles and transcripts. An empty query restores the full list.
func searchConversationsCmd(store *storage.ConversationStore, query string) tea.Cmd {
	return func() tea.Msg {
		if strings.TrimSpace(query) == "" {
			items, err := store.List()
			return ConversationsListedMsg{Items: items, Err: err}
		}
		items, err := store.Search(query)
		return ConversationsListedMsg{Items: items, Err: err}
	}
}

// loadConversationCmd loads one saved conversation.
func loadConversationCmd(store *storage.ConversationStore, id string) tea.Cmd {
	return func() tea.Msg {
		conv, err := store.Load(id)
		return ConversationLoadedMsg{Conv: conv, Err: err}
	}
}

// saveConversationCmd persists the conversation snapshot.
func saveConversationCmd(store *storage.ConversationStore, conv *model.Conversation) tea.Cmd {
	return func() tea.Msg {
		err := store.Save(conv)
		return ConversationSavedMsg{ID: conv.ID, Err: err}
	}
}

// exportConversationCmd writes the conversation as markdown next to the
// working directory.
func exportConversationCmd(store *storage.ConversationStore, id string) tea.Cmd {
	return func() tea.Msg {
		doc, err := store.ExportMarkdown(id)
		if err != nil {
			return ConversationExportedMsg{Err: err}
		}
		path := filepath.Join(".", "conversation-"+id+".md")
		if err := util.AtomicWriteFile(path, []byte(doc), 0644); err != nil {
			return ConversationExportedMsg{Err: err}
		}
		return ConversationExportedMsg{Path: path}
	}
}

// statsCmd reads dashboard numbers from the progress store.
func statsCmd(progress *storage.ProgressStore) tea.Cmd {
	return func() tea.Msg {
		now := time.Now()
		stats, err := progress.Stats(now)
		if err != nil {
			return StatsMsg{Err: err}
		}
		recent, err := progress.RecentDays(now, 14)
		return StatsMsg{Stats: *stats, Recent: recent, Err: err}
	}
}

// recordExchangeCmd stores one completed exchange for progress tracking.
// Failures are swallowed: progress is best-effort bookkeeping.
func recordExchangeCmd(progress *storage.ProgressStore, convID string, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		_ = progress.RecordExchange(storage.ExchangeRecord{
			ConversationID: convID,
			Day:            time.Now().Format("2006-01-02"),
			Duration:       duration,
			At:             time.Now(),
		})
		return nil
	}
}

// speechCmd synthesizes the text and saves the audio under the storage dir.
func speechCmd(client *backend.Client, dir, text string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		audio, err := client.Speech(ctx, text)
		if err != nil {
			return SpeechSavedMsg{Err: err}
		}
		path := filepath.Join(dir, util.NewID("speech")+".mp3")
		if err := util.AtomicWriteFile(path, audio, 0644); err != nil {
			return SpeechSavedMsg{Err: err}
		}
		return SpeechSavedMsg{Path: path}
	}
}

// transcribeCmd sends a recorded audio file for transcription.
func transcribeCmd(client *backend.Client, path string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return TranscriptMsg{Err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		transcript, err := client.Transcribe(ctx, filepath.Base(path), f)
		if err != nil {
			return TranscriptMsg{Err: err}
		}
		return TranscriptMsg{Text: transcript.Text}
	}
}

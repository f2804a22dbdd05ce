// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/mentor-tui/internal/model"
)

func newTestStore(t *testing.T) *ConversationStore {
	t.Helper()
	store, err := NewConversationStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func sampleConversation(userText, reply string) *model.Conversation {
	conv := model.NewConversation()
	conv.AddUserTurn(userText)
	turn := conv.AddPendingAssistantTurn()
	turn.Resolve(reply)
	return conv
}

func TestConversationStore_SaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	conv := sampleConversation("What is recursion?", "Recursion is...")

	require.NoError(t, store.Save(conv))

	loaded, err := store.Load(conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, loaded.ID)
	assert.Equal(t, conv.Title, loaded.Title)
	require.Equal(t, 2, loaded.Len())
	assert.Equal(t, "Recursion is...", loaded.Turns[1].Content)
	assert.True(t, loaded.Turns[1].IsResolved(), "pending flag must not persist")
}

func TestConversationStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Load("conv_missing")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestConversationStore_Delete(t *testing.T) {
	store := newTestStore(t)
	conv := sampleConversation("q", "a")
	require.NoError(t, store.Save(conv))

	require.NoError(t, store.Delete(conv.ID))
	_, err := store.Load(conv.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	assert.ErrorIs(t, store.Delete(conv.ID), ErrConversationNotFound)
}

func TestConversationStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)

	older := sampleConversation("first question", "a")
	older.UpdatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.Save(older))

	newer := sampleConversation("second question", "b")
	require.NoError(t, store.Save(newer))

	metas, err := store.List()
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, newer.ID, metas[0].ID)
	assert.Equal(t, older.ID, metas[1].ID)
	assert.Equal(t, 2, metas[0].TurnCount)
}

func TestConversationStore_SearchFoldsCase(t *testing.T) {
	store := newTestStore(t)
	conv := sampleConversation("Explain the Müller-Lyer illusion", "It is...")
	require.NoError(t, store.Save(conv))
	other := sampleConversation("unrelated", "nothing here")
	require.NoError(t, store.Save(other))

	matches, err := store.Search("MÜLLER")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, conv.ID, matches[0].ID)

	// Content matches too, not just titles.
	matches, err = store.Search("nothing HERE")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, other.ID, matches[0].ID)
}

func TestConversationStore_ExportMarkdown(t *testing.T) {
	store := newTestStore(t)
	conv := sampleConversation("What is Go?", "A language.")
	require.NoError(t, store.Save(conv))

	md, err := store.ExportMarkdown(conv.ID)
	require.NoError(t, err)
	assert.Contains(t, md, "# What is Go?")
	assert.Contains(t, md, "**You**")
	assert.Contains(t, md, "**Assistant**")
	assert.Contains(t, md, "A language.")
}

// =============================================================================
// PROGRESS STORE TESTS
// =============================================================================

func newTestProgress(t *testing.T) *ProgressStore {
	t.Helper()
	store, err := OpenProgressStore(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestProgressStore_StatsEmpty(t *testing.T) {
	store := newTestProgress(t)
	stats, err := store.Stats(time.Now())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalExchanges)
	assert.Zero(t, stats.StreakDays)
}

func TestProgressStore_RecordAndAggregate(t *testing.T) {
	store := newTestProgress(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }
	for _, at := range []time.Time{day(0), day(0), day(-1), day(-2)} {
		require.NoError(t, store.RecordExchange(ExchangeRecord{
			ConversationID: "conv_1",
			Duration:       1500 * time.Millisecond,
			At:             at,
			Day:            at.Format("2006-01-02"),
		}))
	}

	stats, err := store.Stats(now)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalExchanges)
	assert.Equal(t, 3, stats.TotalDays)
	assert.Equal(t, 2, stats.ExchangesToday)
	assert.Equal(t, 3, stats.StreakDays)
	assert.Equal(t, int64(1500), stats.AvgResponseMilli)
}

func TestProgressStore_StreakBrokenByGap(t *testing.T) {
	store := newTestProgress(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

	// Activity today and three days ago: streak is 1.
	for _, offset := range []int{0, -3} {
		at := now.AddDate(0, 0, offset)
		require.NoError(t, store.RecordExchange(ExchangeRecord{
			ConversationID: "conv_1",
			At:             at,
			Day:            at.Format("2006-01-02"),
		}))
	}

	stats, err := store.Stats(now)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.StreakDays)
}

func TestProgressStore_StreakAnchorsOnYesterday(t *testing.T) {
	store := newTestProgress(t)
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.Local)

	// No activity yet today; yesterday and the day before are active.
	for _, offset := range []int{-1, -2} {
		at := now.AddDate(0, 0, offset)
		require.NoError(t, store.RecordExchange(ExchangeRecord{
			ConversationID: "conv_1",
			At:             at,
			Day:            at.Format("2006-01-02"),
		}))
	}

	stats, err := store.Stats(now)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.StreakDays)
}

func TestProgressStore_RecentDays(t *testing.T) {
	store := newTestProgress(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

	at := now.AddDate(0, 0, -1)
	require.NoError(t, store.RecordExchange(ExchangeRecord{
		ConversationID: "conv_1",
		At:             at,
		Day:            at.Format("2006-01-02"),
	}))

	counts, err := store.RecentDays(now, 7)
	require.NoError(t, err)
	require.Len(t, counts, 7)
	assert.Equal(t, 1, counts[5], "yesterday")
	assert.Equal(t, 0, counts[6], "today")
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrProgressClosed is returned after the store has been closed.
var ErrProgressClosed = errors.New("progress store is closed")

// ProgressStore records one row per resolved exchange and aggregates them
// for the dashboard.
type ProgressStore struct {
	db     *sql.DB
	closed bool
}

// ExchangeRecord is one resolved turn exchange.
type ExchangeRecord struct {
	ConversationID string
	Day            string // YYYY-MM-DD, local time
	Duration       time.Duration
	At             time.Time
}

// DashboardStats aggregates progress for the dashboard cards.
type DashboardStats struct {
	TotalExchanges   int
	TotalDays        int
	StreakDays       int
	ExchangesToday   int
	AvgResponseMilli int64
}

const progressSchema = `
CREATE TABLE IF NOT EXISTS exchanges (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id TEXT NOT NULL,
	day TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exchanges_day ON exchanges(day);
CREATE INDEX IF NOT EXISTS idx_exchanges_conv ON exchanges(conversation_id);
`

// OpenProgressStore opens (and migrates) the progress database at path.
func OpenProgressStore(path string) (*ProgressStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress database: %w", err)
	}
	// SQLite allows one writer; serialize through a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(progressSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate progress database: %w", err)
	}
	return &ProgressStore{db: db}, nil
}

// RecordExchange inserts one resolved exchange.
func (p *ProgressStore) RecordExchange(rec ExchangeRecord) error {
	if p.closed {
		return ErrProgressClosed
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	if rec.Day == "" {
		rec.Day = rec.At.Format("2006-01-02")
	}
	_, err := p.db.Exec(
		`INSERT INTO exchanges (conversation_id, day, duration_ms, created_at) VALUES (?, ?, ?, ?)`,
		rec.ConversationID, rec.Day, rec.Duration.Milliseconds(), rec.At.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record exchange: %w", err)
	}
	return nil
}

// Stats aggregates dashboard numbers as of now.
func (p *ProgressStore) Stats(now time.Time) (*DashboardStats, error) {
	if p.closed {
		return nil, ErrProgressClosed
	}
	stats := &DashboardStats{}

	row := p.db.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT day), COALESCE(AVG(duration_ms), 0) FROM exchanges`)
	var avg float64
	if err := row.Scan(&stats.TotalExchanges, &stats.TotalDays, &avg); err != nil {
		return nil, fmt.Errorf("failed to aggregate exchanges: %w", err)
	}
	stats.AvgResponseMilli = int64(avg)

	today := now.Format("2006-01-02")
	row = p.db.QueryRow(`SELECT COUNT(*) FROM exchanges WHERE day = ?`, today)
	if err := row.Scan(&stats.ExchangesToday); err != nil {
		return nil, fmt.Errorf("failed to count today's exchanges: %w", err)
	}

	streak, err := p.streak(now)
	if err != nil {
		return nil, err
	}
	stats.StreakDays = streak
	return stats, nil
}

// streak counts consecutive active days ending today or yesterday.
func (p *ProgressStore) streak(now time.Time) (int, error) {
	rows, err := p.db.Query(`SELECT DISTINCT day FROM exchanges ORDER BY day DESC`)
	if err != nil {
		return 0, fmt.Errorf("failed to read active days: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return 0, err
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(days) == 0 {
		return 0, nil
	}

	// The streak may anchor on yesterday if today has no activity yet.
	cursor := now
	if days[0] != cursor.Format("2006-01-02") {
		cursor = cursor.AddDate(0, 0, -1)
		if days[0] != cursor.Format("2006-01-02") {
			return 0, nil
		}
	}

	streak := 0
	for _, day := range days {
		if day != cursor.Format("2006-01-02") {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak, nil
}

// RecentDays returns per-day exchange counts for the last n days, oldest
// first. Days without activity appear with a zero count.
func (p *ProgressStore) RecentDays(now time.Time, n int) ([]int, error) {
	if p.closed {
		return nil, ErrProgressClosed
	}
	counts := make([]int, n)
	start := now.AddDate(0, 0, -(n - 1)).Format("2006-01-02")

	rows, err := p.db.Query(`SELECT day, COUNT(*) FROM exchanges WHERE day >= ? GROUP BY day`, start)
	if err != nil {
		return nil, fmt.Errorf("failed to read recent activity: %w", err)
	}
	defer rows.Close()

	byDay := map[string]int{}
	for rows.Next() {
		var day string
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		byDay[day] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		day := now.AddDate(0, 0, -(n - 1 - i)).Format("2006-01-02")
		counts[i] = byDay[day]
	}
	return counts, nil
}

// Close closes the database.
func (p *ProgressStore) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}

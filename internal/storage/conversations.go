// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations and learning progress on disk.
//
// Conversations are one JSON file each under the conversations directory.
// Files are written atomically so a crash never leaves a torn transcript.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/jeranaias/mentor-tui/internal/model"
	"github.com/jeranaias/mentor-tui/internal/util"
)

// ErrConversationNotFound is returned when the requested conversation does
// not exist on disk.
var ErrConversationNotFound = errors.New("conversation not found")

// StoreError wraps a storage failure with the conversation ID involved.
type StoreError struct {
	ID  string
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("conversation %s: %s: %v", e.ID, e.Op, e.Err)
}

// Unwrap supports errors.Is/As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Meta summarizes one stored conversation for sidebar listing.
type Meta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	TurnCount int       `json:"turn_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationStore reads and writes conversation files.
type ConversationStore struct {
	dir    string
	folder cases.Caser
}

// NewConversationStore creates a store rooted at dir, creating it if
// needed.
func NewConversationStore(dir string) (*ConversationStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create conversations directory: %w", err)
	}
	return &ConversationStore{
		dir:    dir,
		folder: cases.Fold(),
	}, nil
}

// Save writes a conversation atomically.
func (s *ConversationStore) Save(conv *model.Conversation) error {
	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return &StoreError{ID: conv.ID, Op: "marshal", Err: err}
	}
	if err := util.AtomicWriteFile(s.path(conv.ID), data, 0644); err != nil {
		return &StoreError{ID: conv.ID, Op: "write", Err: err}
	}
	return nil
}

// Load reads one conversation by ID.
func (s *ConversationStore) Load(id string) (*model.Conversation, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConversationNotFound
		}
		return nil, &StoreError{ID: id, Op: "read", Err: err}
	}
	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, &StoreError{ID: id, Op: "unmarshal", Err: err}
	}
	return &conv, nil
}

// Delete removes a conversation file.
func (s *ConversationStore) Delete(id string) error {
	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return ErrConversationNotFound
	}
	if err != nil {
		return &StoreError{ID: id, Op: "delete", Err: err}
	}
	return nil
}

// List returns metadata for every stored conversation, newest first.
func (s *ConversationStore) List() ([]Meta, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversations directory: %w", err)
	}

	var metas []Meta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		conv, err := s.Load(id)
		if err != nil {
			// A torn or foreign file must not break the whole listing.
			continue
		}
		metas = append(metas, Meta{
			ID:        conv.ID,
			Title:     conv.Title,
			TurnCount: conv.Len(),
			UpdatedAt: conv.UpdatedAt,
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})
	return metas, nil
}

// Search returns conversations whose title or turn content contains the
// query, case-folded so matching works across scripts.
func (s *ConversationStore) Search(query string) ([]Meta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List()
	}
	folded := s.folder.String(query)

	metas, err := s.List()
	if err != nil {
		return nil, err
	}

	var matches []Meta
	for _, meta := range metas {
		if strings.Contains(s.folder.String(meta.Title), folded) {
			matches = append(matches, meta)
			continue
		}
		conv, err := s.Load(meta.ID)
		if err != nil {
			continue
		}
		for _, turn := range conv.Turns {
			if strings.Contains(s.folder.String(turn.Content), folded) {
				matches = append(matches, meta)
				break
			}
		}
	}
	return matches, nil
}

// ExportMarkdown renders a conversation as a markdown transcript.
func (s *ConversationStore) ExportMarkdown(id string) (string, error) {
	conv, err := s.Load(id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("# " + conv.Title + "\n\n")
	sb.WriteString("_" + conv.CreatedAt.Format("January 2, 2006 15:04") + "_\n\n")
	for _, turn := range conv.Turns {
		sb.WriteString("**" + turn.Role.DisplayName() + "**\n\n")
		sb.WriteString(turn.Content + "\n\n")
	}
	return sb.String(), nil
}

// ExportJSON returns the stored JSON for a conversation.
func (s *ConversationStore) ExportJSON(id string) ([]byte, error) {
	conv, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(conv, "", "  ")
}

func (s *ConversationStore) path(id string) string {
	// IDs are generated hex; Base strips anything path-like from foreign input.
	return filepath.Join(s.dir, filepath.Base(id)+".json")
}

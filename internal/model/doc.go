// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations.
//
// A Conversation owns an ordered list of Turns. Assistant turns are created
// as empty pending placeholders and resolved exactly once; user turns are
// final at creation. Sections group one user turn with the assistant turns
// that follow it and exist only for rendering. History mirrors resolved
// turns only and supplies the context payload for the next backend call.
package model

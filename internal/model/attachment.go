// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// MaxAttachmentBytes caps the size of a staged file. Attachments travel
// base64-encoded inside one JSON request body.
const MaxAttachmentBytes = 10 * 1024 * 1024

var (
	ErrAttachmentTooLarge = errors.New("attachment exceeds size limit")
	ErrAttachmentEmpty    = errors.New("attachment is empty")
)

// Attachment is a single file staged for the next outbound message.
type Attachment struct {
	Name      string
	Extension string
	Base64    string
	Size      int64
}

// LoadAttachment reads and encodes the file at path.
func LoadAttachment(path string) (*Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, ErrAttachmentEmpty
	}
	if info.Size() > MaxAttachmentBytes {
		return nil, ErrAttachmentTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return &Attachment{
		Name:      filepath.Base(path),
		Extension: ext,
		Base64:    base64.StdEncoding.EncodeToString(data),
		Size:      info.Size(),
	}, nil
}

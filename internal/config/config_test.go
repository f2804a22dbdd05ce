// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 7*24*time.Hour, cfg.SessionMaxAge())
	assert.Equal(t, "127.0.0.1:8940", cfg.Gateway.ListenAddr)
	assert.True(t, cfg.Display.ShowSidebar)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("MENTOR_STORAGE_DIR", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Gateway.ListenAddr, cfg.Gateway.ListenAddr)
}

func TestLoad_FileValues(t *testing.T) {
	t.Setenv("MENTOR_STORAGE_DIR", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[backend]
base_url = "https://api.example.com"
timeout_sec = 30

[auth]
session_max_age_hours = 24

[display]
wrap_width = 80
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.BackendTimeout())
	assert.Equal(t, 24*time.Hour, cfg.SessionMaxAge())
	assert.Equal(t, 80, cfg.Display.WrapWidth)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("MENTOR_STORAGE_DIR", t.TempDir())
	t.Setenv("MENTOR_BACKEND_URL", "https://env.example.com")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[backend]\nbase_url = \"https://file.example.com\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Backend.BaseURL)
}

func TestLoad_InvalidBackendURL(t *testing.T) {
	t.Setenv("MENTOR_STORAGE_DIR", t.TempDir())
	t.Setenv("MENTOR_BACKEND_URL", "::not-a-url")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidBackendURL)
}

func TestLoad_EmptyBackendURLIsValid(t *testing.T) {
	// Degraded mode: no backend configured.
	t.Setenv("MENTOR_STORAGE_DIR", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Backend.BaseURL)
}

func TestRequireSessionSecret(t *testing.T) {
	cfg := Default()
	_, err := cfg.RequireSessionSecret()
	assert.ErrorIs(t, err, ErrMissingSessionSecret)

	cfg.Auth.SessionSecret = "s3cret"
	secret, err := cfg.RequireSessionSecret()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", secret)
}

func TestValidate_ClampsDisplayBounds(t *testing.T) {
	cfg := Default()
	cfg.Display.WrapWidth = 5
	cfg.Display.SidebarWidth = 2
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 40, cfg.Display.WrapWidth)
	assert.Equal(t, 20, cfg.Display.SidebarWidth)
}

func TestStoragePaths(t *testing.T) {
	cfg := Default()
	cfg.Storage.Dir = "/data/mentor"
	assert.Equal(t, filepath.Join("/data/mentor", "conversations"), cfg.ConversationsDir())
	assert.Equal(t, filepath.Join("/data/mentor", "progress.db"), cfg.ProgressDBPath())
	assert.Equal(t, filepath.Join("/data/mentor", "mentor.log"), cfg.LogPath())
}

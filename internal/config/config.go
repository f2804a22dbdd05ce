// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates mentor-tui configuration.
//
// Configuration comes from ~/.mentor/config.toml with MENTOR_* environment
// variables taking precedence. Secrets (session key, Google client secret)
// are normally supplied through the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultSessionMaxAge matches the platform's 7-day session lifetime.
const DefaultSessionMaxAge = 7 * 24 * time.Hour

var (
	ErrMissingSessionSecret = errors.New("session secret is not configured")
	ErrInvalidBackendURL    = errors.New("backend URL is not a valid absolute URL")
	ErrInvalidSiteURL       = errors.New("site URL is not a valid absolute URL")
)

// Config is the root configuration.
type Config struct {
	Backend Backend `toml:"backend"`
	Auth    Auth    `toml:"auth"`
	Gateway Gateway `toml:"gateway"`
	Display Display `toml:"display"`
	Storage Storage `toml:"storage"`
}

// Backend configures the external learning-platform API.
type Backend struct {
	// BaseURL may be empty: the client then runs in degraded mode and the
	// auth exchange becomes a logged no-op.
	BaseURL    string `toml:"base_url"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// Auth configures sign-in and the session artifact.
type Auth struct {
	GoogleClientID     string `toml:"google_client_id"`
	GoogleClientSecret string `toml:"google_client_secret"`
	SessionSecret      string `toml:"session_secret"`
	SessionMaxAgeHours int    `toml:"session_max_age_hours"`
	// TOTPSecret, when set, gates reuse of the on-disk session.
	TOTPSecret string `toml:"totp_secret"`
}

// Gateway configures the local HTTP gateway.
type Gateway struct {
	ListenAddr     string   `toml:"listen_addr"`
	SiteURL        string   `toml:"site_url"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RateLimitRPS   float64  `toml:"rate_limit_rps"`
	RateLimitBurst int      `toml:"rate_limit_burst"`
}

// Display configures UI behavior. These options are hot-reloadable.
type Display struct {
	Theme        string `toml:"theme"`
	SidebarWidth int    `toml:"sidebar_width"`
	WrapWidth    int    `toml:"wrap_width"`
	ShowSidebar  bool   `toml:"show_sidebar"`
}

// Storage configures on-disk state.
type Storage struct {
	Dir     string `toml:"dir"`
	LogFile string `toml:"log_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: Backend{
			TimeoutSec: 120,
		},
		Auth: Auth{
			SessionMaxAgeHours: int(DefaultSessionMaxAge / time.Hour),
		},
		Gateway: Gateway{
			ListenAddr:     "127.0.0.1:8940",
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		Display: Display{
			Theme:        "auto",
			SidebarWidth: 32,
			WrapWidth:    100,
			ShowSidebar:  true,
		},
		Storage: Storage{
			LogFile: "mentor.log",
		},
	}
}

// ConfigDir returns the mentor configuration directory (~/.mentor).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".mentor"), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads configuration from path, layering file values over defaults
// and environment overrides over both. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.Storage.Dir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		cfg.Storage.Dir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays MENTOR_* environment variables.
func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("MENTOR_BACKEND_URL", &c.Backend.BaseURL)
	setString("MENTOR_GOOGLE_CLIENT_ID", &c.Auth.GoogleClientID)
	setString("MENTOR_GOOGLE_CLIENT_SECRET", &c.Auth.GoogleClientSecret)
	setString("MENTOR_SESSION_SECRET", &c.Auth.SessionSecret)
	setString("MENTOR_TOTP_SECRET", &c.Auth.TOTPSecret)
	setString("MENTOR_SITE_URL", &c.Gateway.SiteURL)
	setString("MENTOR_LISTEN_ADDR", &c.Gateway.ListenAddr)
	setString("MENTOR_STORAGE_DIR", &c.Storage.Dir)

	if v := os.Getenv("MENTOR_SESSION_MAX_AGE_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			c.Auth.SessionMaxAgeHours = hours
		}
	}
}

// Validate checks cross-field consistency. The backend URL is optional;
// when present it must parse.
func (c *Config) Validate() error {
	if c.Backend.BaseURL != "" {
		if u, err := url.Parse(c.Backend.BaseURL); err != nil || !u.IsAbs() {
			return ErrInvalidBackendURL
		}
	}
	if c.Gateway.SiteURL != "" {
		if u, err := url.Parse(c.Gateway.SiteURL); err != nil || !u.IsAbs() {
			return ErrInvalidSiteURL
		}
	}
	if c.Auth.SessionMaxAgeHours <= 0 {
		c.Auth.SessionMaxAgeHours = int(DefaultSessionMaxAge / time.Hour)
	}
	if c.Backend.TimeoutSec <= 0 {
		c.Backend.TimeoutSec = 120
	}
	if c.Display.WrapWidth < 40 {
		c.Display.WrapWidth = 40
	}
	if c.Display.SidebarWidth < 20 {
		c.Display.SidebarWidth = 20
	}
	return nil
}

// SessionMaxAge returns the configured session lifetime.
func (c *Config) SessionMaxAge() time.Duration {
	return time.Duration(c.Auth.SessionMaxAgeHours) * time.Hour
}

// BackendTimeout returns the configured backend call timeout.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSec) * time.Second
}

// RequireSessionSecret returns the session secret or an error if unset.
// The gateway and sign-in flow refuse to run without one.
func (c *Config) RequireSessionSecret() (string, error) {
	if c.Auth.SessionSecret == "" {
		return "", ErrMissingSessionSecret
	}
	return c.Auth.SessionSecret, nil
}

// LogPath returns the absolute log file path under the storage directory.
func (c *Config) LogPath() string {
	if filepath.IsAbs(c.Storage.LogFile) {
		return c.Storage.LogFile
	}
	return filepath.Join(c.Storage.Dir, c.Storage.LogFile)
}

// ConversationsDir returns the conversation store directory.
func (c *Config) ConversationsDir() string {
	return filepath.Join(c.Storage.Dir, "conversations")
}

// ProgressDBPath returns the progress database path.
func (c *Config) ProgressDBPath() string {
	return filepath.Join(c.Storage.Dir, "progress.db")
}

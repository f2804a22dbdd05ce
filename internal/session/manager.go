// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/mentor-tui/internal/util"
)

// timeNow is swapped in tests.
var timeNow = time.Now

// tokenFileName is the on-disk session token, stored under the config dir.
const tokenFileName = "session.token"

// Manager holds the current session for the running process and persists
// the signed token to disk so sign-in survives restarts.
//
// Access renews the token transparently (sliding expiry); expiry surfaces
// through the onExpired callback so the UI can drop to the login screen.
type Manager struct {
	codec *Codec
	dir   string

	mu        sync.RWMutex
	current   *Session
	token     string
	onExpired func()
}

// NewManager creates a manager persisting tokens under dir.
func NewManager(codec *Codec, dir string) *Manager {
	return &Manager{codec: codec, dir: dir}
}

// SetOnExpired registers the expiry callback. Called at most once per
// session, from the goroutine that observed the expiry.
func (m *Manager) SetOnExpired(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpired = fn
}

// Restore loads the persisted token from disk. A missing, tampered, or
// expired token leaves the manager signed out without error.
func (m *Manager) Restore() error {
	data, err := os.ReadFile(m.tokenPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	sess, err := m.codec.Decode(strings.TrimSpace(string(data)))
	if err != nil {
		log.Printf("SESSION_RESTORE_REJECTED: %v", err)
		os.Remove(m.tokenPath())
		return nil
	}

	m.mu.Lock()
	m.current = sess
	m.token = strings.TrimSpace(string(data))
	m.mu.Unlock()
	log.Printf("SESSION_RESTORED: sid=%s user=%s", sess.ID, sess.User.Email)
	return nil
}

// Establish installs a freshly issued session and persists its token.
func (m *Manager) Establish(sess *Session, token string) error {
	m.mu.Lock()
	m.current = sess
	m.token = token
	m.mu.Unlock()

	log.Printf("SESSION_ESTABLISHED: sid=%s user=%s", sess.ID, sess.User.Email)
	return m.persist(token)
}

// Current returns the active session, renewing it transparently when past
// half its lifetime. Returns ErrNoSession when signed out or expired.
func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	sess := m.current
	m.mu.Unlock()

	if sess == nil {
		return nil, ErrNoSession
	}
	if sess.Expired(timeNow()) {
		m.expire()
		return nil, ErrNoSession
	}

	renewed, token, changed, err := m.codec.Renew(sess)
	if err != nil {
		return nil, err
	}
	if changed {
		m.mu.Lock()
		m.current = renewed
		m.token = token
		m.mu.Unlock()
		log.Printf("SESSION_RENEWED: sid=%s", renewed.ID)
		if err := m.persist(token); err != nil {
			log.Printf("SESSION_PERSIST_FAILED: %v", err)
		}
	}
	return renewed, nil
}

// Token returns the signed token for the active session.
func (m *Manager) Token() (string, error) {
	if _, err := m.Current(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

// AccessToken returns the backend access token, or ErrNoSession when signed
// out and empty string when the exchange never succeeded.
func (m *Manager) AccessToken() (string, error) {
	sess, err := m.Current()
	if err != nil {
		return "", err
	}
	return sess.AccessToken, nil
}

// SignedIn reports whether a live session exists.
func (m *Manager) SignedIn() bool {
	_, err := m.Current()
	return err == nil
}

// SignOut destroys the session and removes the persisted token.
func (m *Manager) SignOut() {
	m.mu.Lock()
	sid := ""
	if m.current != nil {
		sid = m.current.ID
	}
	m.current = nil
	m.token = ""
	m.mu.Unlock()

	os.Remove(m.tokenPath())
	if sid != "" {
		log.Printf("SESSION_SIGNED_OUT: sid=%s", sid)
	}
}

func (m *Manager) expire() {
	m.mu.Lock()
	sid := ""
	if m.current != nil {
		sid = m.current.ID
	}
	m.current = nil
	m.token = ""
	callback := m.onExpired
	m.mu.Unlock()

	os.Remove(m.tokenPath())
	if sid != "" {
		log.Printf("SESSION_EXPIRED: sid=%s", sid)
	}
	if callback != nil {
		callback()
	}
}

func (m *Manager) persist(token string) error {
	// 0600: the token grants access to the user's backend account.
	return util.AtomicWriteFile(m.tokenPath(), []byte(token+"\n"), 0600)
}

func (m *Manager) tokenPath() string {
	return filepath.Join(m.dir, tokenFileName)
}

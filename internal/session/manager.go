// Package session tracks the authenticated user and their credential.
//
// The displayed balance is never computed locally: it is whatever the
// backend last reported, applied through SetBalance after each settled
// wager or profile fetch.
package session

import (
	"sync"

	"github.com/rs/zerolog"
)

// Snapshot is the cached view of the signed-in user.
type Snapshot struct {
	ID                  string `json:"id"`
	Username            string `json:"username"`
	Balance             int64  `json:"balance"`
	Verified            bool   `json:"verified"`
	PendingVerification bool   `json:"pendingVerification"`
}

// Manager owns the session token and user snapshot.
type Manager struct {
	tokens TokenStore
	log    zerolog.Logger

	mu            sync.RWMutex
	snapshot      Snapshot
	authenticated bool
	onExpired     []func()
}

// NewManager creates a signed-out manager.
func NewManager(tokens TokenStore, log zerolog.Logger) *Manager {
	return &Manager{tokens: tokens, log: log}
}

// Establish installs the snapshot after a successful login or profile
// fetch and persists the credential. The backend has already accepted the
// token, so a failed save degrades to a memory-only session instead of
// blocking play; it just will not survive a restart.
func (m *Manager) Establish(token string, snap Snapshot) {
	m.mu.Lock()
	m.snapshot = snap
	m.authenticated = true
	m.mu.Unlock()

	if err := m.tokens.Save(token); err != nil {
		m.log.Warn().Err(err).Msg("persisting session token, session is memory-only")
	}
	m.log.Info().Str("user", snap.Username).Msg("session established")
}

// Restore returns the persisted token from a previous launch, if any.
func (m *Manager) Restore() (string, bool) {
	token, err := m.tokens.Load()
	if err != nil {
		return "", false
	}
	return token, true
}

// Authenticated reports whether a session is active.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// Snapshot returns the cached user view.
func (m *Manager) Snapshot() (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot, m.authenticated
}

// Balance returns the last authoritative balance.
func (m *Manager) Balance() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot.Balance
}

// SetBalance applies a backend-reported balance.
func (m *Manager) SetBalance(balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.Balance = balance
}

// OnExpired registers a callback fired when the session is invalidated by
// the backend. Callbacks run synchronously inside Expire.
func (m *Manager) OnExpired(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpired = append(m.onExpired, fn)
}

// Expire tears the session down after the backend rejected the credential:
// the token is cleared, the snapshot dropped and the expiry callbacks run.
func (m *Manager) Expire() {
	m.mu.Lock()
	if !m.authenticated {
		m.mu.Unlock()
		return
	}
	m.authenticated = false
	m.snapshot = Snapshot{}
	callbacks := append([]func(){}, m.onExpired...)
	m.mu.Unlock()

	if err := m.tokens.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("clearing expired session token")
	}
	m.log.Info().Msg("session expired")

	for _, fn := range callbacks {
		fn()
	}
}

// Logout clears the session without raising the expiry signal.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.authenticated = false
	m.snapshot = Snapshot{}
	m.mu.Unlock()

	if err := m.tokens.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("clearing session token on logout")
	}
}

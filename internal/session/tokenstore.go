package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
)

// ErrNoToken is returned when no session token has been stored.
var ErrNoToken = errors.New("session: no stored token")

// TokenStore persists the bearer credential between launches.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
}

const keyringAccount = "session-token"

// KeyringStore keeps the token in the OS keychain, with an optional file
// fallback for environments without a system keyring.
type KeyringStore struct {
	service      string
	fallbackPath string
	mu           sync.Mutex
}

// NewKeyringStore creates a keyring-backed token store.
func NewKeyringStore(serviceName, fallbackPath string) *KeyringStore {
	if strings.TrimSpace(serviceName) == "" {
		serviceName = "fortuna-desktop"
	}
	return &KeyringStore{service: serviceName, fallbackPath: fallbackPath}
}

func (k *KeyringStore) Save(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("session: token is required")
	}
	err := keyring.Set(k.service, keyringAccount, token)
	if err == nil {
		return nil
	}
	if !isKeyringUnavailable(err) {
		return fmt.Errorf("session: keyring set: %w", err)
	}
	return k.saveFallback(token)
}

func (k *KeyringStore) Load() (string, error) {
	val, err := keyring.Get(k.service, keyringAccount)
	if err == nil {
		return val, nil
	}
	if !isKeyringUnavailable(err) && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("session: keyring get: %w", err)
	}

	if fallback, ferr := k.loadFallback(); ferr == nil {
		return fallback, nil
	}
	return "", ErrNoToken
}

func (k *KeyringStore) Clear() error {
	err := keyring.Delete(k.service, keyringAccount)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) && !isKeyringUnavailable(err) {
		return fmt.Errorf("session: keyring delete: %w", err)
	}
	return k.clearFallback()
}

func isKeyringUnavailable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "secret service") ||
		strings.Contains(msg, "dbus") ||
		strings.Contains(msg, "no keychain") ||
		strings.Contains(msg, "keyring backend not available")
}

type fallbackFile struct {
	Token string `json:"token"`
}

func (k *KeyringStore) saveFallback(token string) error {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return fmt.Errorf("session: keyring unavailable and no fallback path configured")
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(k.fallbackPath), 0o700); err != nil {
		return fmt.Errorf("session: mkdir fallback dir: %w", err)
	}
	raw, err := json.Marshal(fallbackFile{Token: token})
	if err != nil {
		return fmt.Errorf("session: encode fallback: %w", err)
	}
	if err := os.WriteFile(k.fallbackPath, raw, 0o600); err != nil {
		return fmt.Errorf("session: write fallback: %w", err)
	}
	return nil
}

func (k *KeyringStore) loadFallback() (string, error) {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return "", ErrNoToken
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	raw, err := os.ReadFile(k.fallbackPath)
	if err != nil {
		return "", ErrNoToken
	}
	var f fallbackFile
	if err := json.Unmarshal(raw, &f); err != nil || f.Token == "" {
		return "", ErrNoToken
	}
	return f.Token, nil
}

func (k *KeyringStore) clearFallback() error {
	if strings.TrimSpace(k.fallbackPath) == "" {
		return nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := os.Remove(k.fallbackPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("session: remove fallback: %w", err)
	}
	return nil
}

// MemoryStore is an in-process token store for tests and headless runs.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

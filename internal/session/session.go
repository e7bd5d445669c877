// Package session tracks the active vault selected by each client session.
//
// State is an explicit injected dependency rather than package-level mutable
// state: one store instance is shared by every exposure layer. Entries live
// for the process lifetime; there is no eviction.
package session

import (
	"sync"

	"github.com/nbaradar/obsidian-mcp-server/internal/vault"
)

// DefaultKey is the session key used by callers that have no session
// identity (tests, single-client stdio without session tracking).
const DefaultKey = "default"

// Store maps opaque session tokens to the vault name each session selected.
type Store struct {
	registry *vault.Registry

	mu     sync.RWMutex
	active map[string]string
}

// NewStore creates a session store backed by the given registry.
func NewStore(registry *vault.Registry) *Store {
	return &Store{
		registry: registry,
		active:   make(map[string]string),
	}
}

// SetActive selects the named vault for a session. The name must be known to
// the registry.
func (s *Store) SetActive(token, vaultName string) (vault.Vault, error) {
	v, err := s.registry.Get(vaultName)
	if err != nil {
		return vault.Vault{}, err
	}
	s.mu.Lock()
	s.active[token] = v.Name
	s.mu.Unlock()
	return v, nil
}

// Active returns the vault selected by a session, or the registry default
// when the session has not selected one.
func (s *Store) Active(token string) vault.Vault {
	s.mu.RLock()
	name, ok := s.active[token]
	s.mu.RUnlock()
	if !ok {
		return s.registry.Default()
	}
	v, err := s.registry.Get(name)
	if err != nil {
		return s.registry.Default()
	}
	return v
}

// ActiveName returns the vault name a session selected, or "" if none.
func (s *Store) ActiveName(token string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[token]
}

// Resolve picks the vault for an operation: an explicit name wins, otherwise
// the session's active vault (falling back to the default).
func (s *Store) Resolve(explicit, token string) (vault.Vault, error) {
	if explicit != "" {
		return s.registry.Get(explicit)
	}
	return s.Active(token), nil
}

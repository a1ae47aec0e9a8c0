// Package registry holds the single piece of shared mutable state in the
// system: which backend instance clients should talk to. It is owned by
// the registry binary and injected into its handlers; the value lives for
// the process lifetime and resets to the primary on restart.
package registry

import (
	"errors"
	"net/url"
	"sync"
)

const (
	DefaultPrimary = "http://localhost:3001"
	DefaultBackup  = "http://localhost:3002"
)

var ErrInvalidEndpoint = errors.New("invalid server URL")

// Store is a synchronized single-value endpoint store. It is never empty:
// construction seeds it with the primary endpoint.
type Store struct {
	mu      sync.RWMutex
	current string
	backup  string
}

// NewStore seeds the store with primary and remembers backup as the
// failover target. Empty arguments fall back to the defaults.
func NewStore(primary, backup string) *Store {
	if primary == "" {
		primary = DefaultPrimary
	}
	if backup == "" {
		backup = DefaultBackup
	}
	return &Store{current: primary, backup: backup}
}

// Current returns the active endpoint.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the active endpoint. Last writer wins under concurrent calls.
func (s *Store) Set(endpoint string) error {
	if !validEndpoint(endpoint) {
		return ErrInvalidEndpoint
	}
	s.mu.Lock()
	s.current = endpoint
	s.mu.Unlock()
	return nil
}

// Failover unconditionally pins the backup endpoint, regardless of the
// current value or the actual health of the primary, and returns it.
// There is no automatic transition back.
func (s *Store) Failover() string {
	s.mu.Lock()
	s.current = s.backup
	s.mu.Unlock()
	return s.backup
}

func validEndpoint(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	u, err := url.ParseRequestURI(endpoint)
	return err == nil && u.Scheme != "" && u.Host != ""
}

package memory

// Package memory provides in-process adapters used in development mode and
// in tests, where the platform secret store is not available.

import (
	"context"
	"sync"

	"github.com/onepos/storefront/internal/ports"
)

// CredentialStore is a process-local credential store. Secrets do not
// survive a restart, so startup reconciliation always lands on Anonymous
// after a dev-mode restart.
type CredentialStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

// NewCredentialStore creates an empty in-memory credential store.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{values: make(map[string]string)}
}

func (s *CredentialStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", ports.ErrCredentialNotFound
	}
	return v, nil
}

func (s *CredentialStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *CredentialStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

package store

import (
	"sync"

	"brokersim/internal/account"
)

// Compile-time interface check.
var _ account.Store = (*MemStore)(nil)

// MemStore is a map-backed account store for tests and ephemeral runs. Like
// the durable stores, it hands out copies: an account mutated by a caller is
// only visible to later lookups once persisted again.
type MemStore struct {
	mu       sync.Mutex
	accounts map[string]account.Account
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{accounts: make(map[string]account.Account)}
}

// Lookup retrieves a copy of the account, or account.ErrNotFound.
func (s *MemStore) Lookup(name string) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.accounts[name]
	if !ok {
		return nil, account.ErrNotFound
	}
	return &stored, nil
}

// Persist stores a copy of the account.
func (s *MemStore) Persist(a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.Name] = *a
	return nil
}

// Delete removes the account. Deleting a missing account is a no-op.
func (s *MemStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, name)
	return nil
}

// Close is a no-op.
func (s *MemStore) Close() error {
	return nil
}

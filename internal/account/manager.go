package account

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
)

// Account creation rules, matching the brokerage's policy: names of at least
// eight characters, opening balance of at least $1000.
const (
	MinNameLen = 8
	MinBalance = 100_000 // cents
)

var (
	// ErrNotFound indicates no account exists under the given name.
	ErrNotFound = errors.New("account not found")

	// ErrBadCredentials indicates the account exists but the password is wrong.
	ErrBadCredentials = errors.New("invalid account credentials")

	// ErrExists indicates an account under the given name already exists.
	ErrExists = errors.New("account already exists")

	// ErrNameTooShort indicates the account name fails the minimum length.
	ErrNameTooShort = fmt.Errorf("account name must be at least %d characters", MinNameLen)

	// ErrBalanceTooLow indicates the opening balance fails the minimum.
	ErrBalanceTooLow = fmt.Errorf("initial balance must be at least %d cents", MinBalance)
)

// Store persists accounts. Implementations live in internal/store; lookups
// for missing accounts return ErrNotFound.
type Store interface {
	Lookup(name string) (*Account, error)
	Persist(a *Account) error
	Delete(name string) error
	Close() error
}

// Manager creates, authenticates, deletes, and persists accounts. Passwords
// are never stored; only their SHA-256 digests are.
type Manager struct {
	store Store
	log   *slog.Logger
}

// NewManager creates a manager backed by the given store.
func NewManager(store Store, log *slog.Logger) *Manager {
	return &Manager{store: store, log: log}
}

// Close releases the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}

// CreateAccount validates, creates, and persists a new account.
func (m *Manager) CreateAccount(name, password string, balance int) (*Account, error) {
	if len(name) < MinNameLen {
		return nil, ErrNameTooShort
	}
	if balance < MinBalance {
		return nil, ErrBalanceTooLow
	}
	if _, err := m.store.Lookup(name); err == nil {
		return nil, ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("create account %s: %w", name, err)
	}

	acct := &Account{
		Name:         name,
		PasswordHash: hashPassword(password),
		Balance:      balance,
	}
	acct.attach(m)
	if err := m.store.Persist(acct); err != nil {
		return nil, fmt.Errorf("create account %s: %w", name, err)
	}
	m.log.Info("account created", "name", name, "balance", balance)
	return acct, nil
}

// Account looks up an account by name without authenticating.
func (m *Manager) Account(name string) (*Account, error) {
	acct, err := m.store.Lookup(name)
	if err != nil {
		return nil, err
	}
	acct.attach(m)
	return acct, nil
}

// ValidateLogin checks the password against the stored hash. Returns
// ErrNotFound for a missing account, ErrBadCredentials on mismatch.
func (m *Manager) ValidateLogin(name, password string) error {
	acct, err := m.store.Lookup(name)
	if err != nil {
		return err
	}
	digest := hashPassword(password)
	if subtle.ConstantTimeCompare(digest, acct.PasswordHash) != 1 {
		return ErrBadCredentials
	}
	return nil
}

// DeleteAccount removes the account from the store.
func (m *Manager) DeleteAccount(name string) error {
	return m.store.Delete(name)
}

// Persist writes the account's current state to the store.
func (m *Manager) Persist(a *Account) error {
	return m.store.Persist(a)
}

func hashPassword(password string) []byte {
	digest := sha256.Sum256([]byte(password))
	return digest[:]
}

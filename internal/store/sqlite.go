// Package store provides the persistence layer: a SQLite-backed account
// store, an in-memory account store for tests and ephemeral runs, and a
// Parquet journal of executed trades.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"brokersim/internal/account"
)

// Compile-time interface check.
var _ account.Store = (*SQLiteStore)(nil)

const accountsSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	name          TEXT PRIMARY KEY,
	password_hash BLOB NOT NULL,
	balance       INTEGER NOT NULL
);`

// SQLiteStore implements account.Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, ensures the
// schema exists, and returns a ready-to-use store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open account db %s: %w", dbPath, err)
	}
	if _, err := db.Exec(accountsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create accounts schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Lookup retrieves the account by name, or account.ErrNotFound.
func (s *SQLiteStore) Lookup(name string) (*account.Account, error) {
	acct := &account.Account{}
	row := s.db.QueryRow(
		`SELECT name, password_hash, balance FROM accounts WHERE name = ?`, name)
	if err := row.Scan(&acct.Name, &acct.PasswordHash, &acct.Balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}
		return nil, fmt.Errorf("lookup account %s: %w", name, err)
	}
	return acct, nil
}

// Persist inserts or updates the account.
func (s *SQLiteStore) Persist(a *account.Account) error {
	_, err := s.db.Exec(
		`INSERT INTO accounts (name, password_hash, balance) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET password_hash = excluded.password_hash,
		                                 balance = excluded.balance`,
		a.Name, a.PasswordHash, a.Balance)
	if err != nil {
		return fmt.Errorf("persist account %s: %w", a.Name, err)
	}
	return nil
}

// Delete removes the account by name. Deleting a missing account is a no-op.
func (s *SQLiteStore) Delete(name string) error {
	if _, err := s.db.Exec(`DELETE FROM accounts WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete account %s: %w", name, err)
	}
	return nil
}

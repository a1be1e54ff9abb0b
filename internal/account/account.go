// Package account provides brokerage accounts and the manager that creates,
// authenticates, and persists them through a pluggable store.
package account

import (
	"errors"

	"brokersim/internal/domain"
)

// Account is a brokerage account. Balance is held in cents.
type Account struct {
	Name         string
	PasswordHash []byte
	Balance      int

	mgr *Manager
}

// ErrUnmanaged indicates the account has no manager attached and therefore
// cannot be persisted.
var ErrUnmanaged = errors.New("account has no manager attached")

// attach sets the owning manager. The first attachment wins; later calls are
// ignored so a loaded account cannot be re-homed.
func (a *Account) attach(m *Manager) {
	if a.mgr == nil {
		a.mgr = m
	}
}

// ReflectOrder applies the executed order's value to the balance and persists
// the account through the owning manager. The balance adjustment is made even
// if persistence fails; the caller decides how to surface that.
func (a *Account) ReflectOrder(order *domain.Order, executionPrice int) error {
	a.Balance += order.ValueAt(executionPrice)
	if a.mgr == nil {
		return ErrUnmanaged
	}
	return a.mgr.Persist(a)
}

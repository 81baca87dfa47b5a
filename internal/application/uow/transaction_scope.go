// Package uow defines the unit-of-work ports shared by the application
// services. A unit of work wraps a sequence of repository operations in
// one atomic store transaction.
package uow

import (
	"context"

	"github.com/shopstack/backend/internal/domain/audit"
	"github.com/shopstack/backend/internal/domain/catalog"
	"github.com/shopstack/backend/internal/domain/inventory"
	"github.com/shopstack/backend/internal/domain/warehouse"
)

// Repositories provides access to all repositories within a transaction.
// Every repository returned shares the same underlying store transaction.
type Repositories interface {
	Inventory() inventory.Repository
	Warehouses() warehouse.Repository
	Products() catalog.ProductRepository
	AuditLog() audit.Repository
}

// Transaction is an open unit of work. Repository writes are issued
// eagerly against the open transaction, so rows staged earlier in the
// workflow (and their client-generated ids) are visible to later steps
// such as the audit append.
type Transaction interface {
	Repositories
	// StageChanges surfaces any error the store has accumulated for
	// pending writes without ending the transaction.
	StageChanges() error
	// Commit makes all staged changes durable and ends the transaction.
	Commit() error
	// Rollback discards all staged changes and ends the transaction.
	// Rolling back an already-finished transaction is a no-op.
	Rollback() error
}

// UnitOfWork opens transactions against the shared store
type UnitOfWork interface {
	Begin(ctx context.Context) (Transaction, error)
}

// TransactionScope runs a function within a transaction. Every state-
// changing operation follows the same shape (begin, mutate, stage,
// audit, stage, commit) with rollback on any error.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Scope is the default TransactionScope over a UnitOfWork
type Scope struct {
	uow UnitOfWork
}

// NewScope creates a TransactionScope backed by the given UnitOfWork
func NewScope(uow UnitOfWork) *Scope {
	return &Scope{uow: uow}
}

// Execute runs fn inside a transaction. If fn returns an error, or the
// staged changes cannot be flushed or committed, the transaction is
// rolled back and the error returned; otherwise the transaction commits.
func (s *Scope) Execute(ctx context.Context, fn func(repos Repositories) error) error {
	tx, err := s.uow.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.StageChanges(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

var _ TransactionScope = (*Scope)(nil)

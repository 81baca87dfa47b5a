package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shopstack/backend/internal/application/uow"
	"github.com/shopstack/backend/internal/domain/audit"
	"github.com/shopstack/backend/internal/domain/catalog"
	"github.com/shopstack/backend/internal/domain/inventory"
	"github.com/shopstack/backend/internal/domain/warehouse"
)

// ErrTransactionFinished is returned when Commit or Rollback is called
// on a transaction that already ended. Rollback treats it as a no-op.
var ErrTransactionFinished = errors.New("transaction already finished")

// GormUnitOfWork opens GORM transactions against the shared connection
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Begin opens a transaction. All repositories obtained from the returned
// Transaction share it, so writes are staged eagerly against the open
// transaction and become visible to later reads within it.
func (u *GormUnitOfWork) Begin(ctx context.Context) (uow.Transaction, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &gormTransaction{tx: tx}, nil
}

// NewGormScope creates the standard TransactionScope over a GORM
// connection. This is what the application services are wired with.
func NewGormScope(db *gorm.DB) *uow.Scope {
	return uow.NewScope(NewGormUnitOfWork(db))
}

// gormTransaction is an open GORM transaction exposing the repositories
// bound to it.
type gormTransaction struct {
	tx       *gorm.DB
	finished bool
}

func (t *gormTransaction) Inventory() inventory.Repository {
	return NewGormInventoryRepository(t.tx)
}

func (t *gormTransaction) Warehouses() warehouse.Repository {
	return NewGormWarehouseRepository(t.tx)
}

func (t *gormTransaction) Products() catalog.ProductRepository {
	return NewGormProductRepository(t.tx)
}

func (t *gormTransaction) AuditLog() audit.Repository {
	return NewGormAuditLogRepository(t.tx)
}

// StageChanges surfaces any error GORM accumulated on the transaction
// without ending it.
func (t *gormTransaction) StageChanges() error {
	if t.finished {
		return ErrTransactionFinished
	}
	return t.tx.Error
}

// Commit makes all staged changes durable
func (t *gormTransaction) Commit() error {
	if t.finished {
		return ErrTransactionFinished
	}
	t.finished = true
	return t.tx.Commit().Error
}

// Rollback discards all staged changes. Rolling back a finished
// transaction is a no-op.
func (t *gormTransaction) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.tx.Rollback().Error
}

var (
	_ uow.UnitOfWork  = (*GormUnitOfWork)(nil)
	_ uow.Transaction = (*gormTransaction)(nil)
)

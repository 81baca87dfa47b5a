package uow

import (
	"context"

	"github.com/shopstack/backend/internal/domain/audit"
	"github.com/shopstack/backend/internal/domain/catalog"
	"github.com/shopstack/backend/internal/domain/inventory"
	"github.com/shopstack/backend/internal/domain/warehouse"
)

// StaticRepositories bundles fixed repository instances into a
// Repositories view. Useful for tests and tools that do not need
// transactional isolation.
type StaticRepositories struct {
	InventoryRepo inventory.Repository
	WarehouseRepo warehouse.Repository
	ProductRepo   catalog.ProductRepository
	AuditRepo     audit.Repository
}

func (r StaticRepositories) Inventory() inventory.Repository { return r.InventoryRepo }

func (r StaticRepositories) Warehouses() warehouse.Repository { return r.WarehouseRepo }

func (r StaticRepositories) Products() catalog.ProductRepository { return r.ProductRepo }

func (r StaticRepositories) AuditLog() audit.Repository { return r.AuditRepo }

// PassthroughScope executes the function directly against a fixed set
// of repositories without opening a store transaction.
type PassthroughScope struct {
	Repos Repositories
}

func (s PassthroughScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s.Repos)
}

var _ TransactionScope = PassthroughScope{}

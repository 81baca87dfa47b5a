package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence port for inventory records.
//
// Reads that serve the ledger operations see only non-deleted records
// unless stated otherwise; FindByID returns any state so the restore path
// can reach deleted rows.
type Repository interface {
	// FindByID returns the record in any lifecycle state, or
	// shared.ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryRecord, error)
	// FindActiveByPair returns the non-deleted record for the
	// (product, warehouse) pair, or shared.ErrNotFound.
	FindActiveByPair(ctx context.Context, productID, warehouseID uuid.UUID) (*InventoryRecord, error)
	// ExistsActivePair reports whether a non-deleted record exists for
	// the pair.
	ExistsActivePair(ctx context.Context, productID, warehouseID uuid.UUID) (bool, error)
	// FindByWarehouse lists non-deleted records owned by the warehouse.
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]InventoryRecord, error)
	// FindByProduct lists non-deleted records referencing the product.
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]InventoryRecord, error)
	// FindBelowThreshold lists non-deleted records with quantity strictly
	// below the threshold.
	FindBelowThreshold(ctx context.Context, threshold int64) ([]InventoryRecord, error)
	// CountActiveByWarehouse counts non-deleted records in the warehouse,
	// regardless of quantity.
	CountActiveByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int64, error)
	// CountNonEmptyByWarehouse counts non-deleted records in the
	// warehouse with quantity > 0.
	CountNonEmptyByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int64, error)
	// Create inserts a new record.
	Create(ctx context.Context, record *InventoryRecord) error
	// SaveWithLock persists the aggregate with an optimistic-concurrency
	// check on its version; returns shared.ErrConcurrencyConflict when
	// the stored version no longer matches.
	SaveWithLock(ctx context.Context, record *InventoryRecord) error
	// DecrementQuantity atomically executes
	// quantity = quantity - amount WHERE id = ? AND quantity >= amount
	// and returns shared.ErrInsufficientQuantity when no row qualified.
	// This closes the read-check-write race on the transfer source leg.
	DecrementQuantity(ctx context.Context, id uuid.UUID, amount int64) error
	// ReparentWarehouse moves every non-deleted record from one warehouse
	// to another in a single statement, returning the number moved.
	ReparentWarehouse(ctx context.Context, fromWarehouseID, toWarehouseID uuid.UUID) (int64, error)
}

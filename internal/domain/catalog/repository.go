package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository is the persistence port for the catalog aggregate.
// The ledger core uses it as an existence gate and to keep the mirrored
// quantity in sync; full catalog CRUD lives outside this core.
type ProductRepository interface {
	// FindByID returns the product or shared.ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// Exists reports whether a non-deleted product with the id exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// Save creates or updates a product.
	Save(ctx context.Context, product *Product) error
	// SyncQuantity recomputes the product's mirrored quantity as the sum
	// of its non-deleted inventory record quantities. Must be called
	// inside the transaction that mutated those records.
	SyncQuantity(ctx context.Context, id uuid.UUID) (int64, error)
}

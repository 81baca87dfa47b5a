package warehouse

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopstack/backend/internal/domain/shared"
)

// Repository is the persistence port for the warehouse aggregate
type Repository interface {
	// FindByID returns the warehouse in any lifecycle state, or
	// shared.ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	// FindActiveByID returns the warehouse only if it is not deleted.
	FindActiveByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	// ExistsByName reports whether a non-deleted warehouse already uses
	// the name (case-insensitive).
	ExistsByName(ctx context.Context, name string) (bool, error)
	// FindAll lists non-deleted warehouses matching the filter.
	FindAll(ctx context.Context, filter shared.Filter) ([]Warehouse, error)
	// Count counts non-deleted warehouses matching the filter.
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Create inserts a new warehouse.
	Create(ctx context.Context, w *Warehouse) error
	// Save persists the aggregate with an optimistic-concurrency check on
	// its version; returns shared.ErrConcurrencyConflict on a stale save.
	Save(ctx context.Context, w *Warehouse) error
}

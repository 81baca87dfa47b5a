package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopstack/backend/internal/domain/catalog"
	"github.com/shopstack/backend/internal/domain/shared"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Exists reports whether a non-deleted product with the id exists
func (r *GormProductRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ? AND state = ?", id, shared.LifecycleActive).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// SyncQuantity recomputes the product's mirrored quantity as the sum of
// its non-deleted inventory record quantities. The subquery runs in the
// caller's transaction, so the mirror always reflects the ledger state
// being committed.
func (r *GormProductRepository) SyncQuantity(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity": gorm.Expr(
				"COALESCE((SELECT SUM(quantity) FROM inventory_records WHERE product_id = ? AND state = ?), 0)",
				id, shared.LifecycleActive,
			),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, shared.ErrNotFound
	}

	var quantity int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ?", id).
		Pluck("quantity", &quantity).Error; err != nil {
		return 0, err
	}
	return quantity, nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

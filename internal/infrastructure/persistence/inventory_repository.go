package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopstack/backend/internal/domain/inventory"
	"github.com/shopstack/backend/internal/domain/shared"
)

// GormInventoryRepository implements inventory.Repository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindByID finds an inventory record by its ID, in any lifecycle state
func (r *GormInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryRecord, error) {
	var record inventory.InventoryRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindActiveByPair finds the non-deleted record for a product and warehouse
func (r *GormInventoryRepository) FindActiveByPair(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.InventoryRecord, error) {
	var record inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ? AND state = ?", productID, warehouseID, shared.LifecycleActive).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// ExistsActivePair reports whether a non-deleted record exists for the pair
func (r *GormInventoryRepository) ExistsActivePair(ctx context.Context, productID, warehouseID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.InventoryRecord{}).
		Where("product_id = ? AND warehouse_id = ? AND state = ?", productID, warehouseID, shared.LifecycleActive).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByWarehouse lists non-deleted records owned by the warehouse
func (r *GormInventoryRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]inventory.InventoryRecord, error) {
	var records []inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND state = ?", warehouseID, shared.LifecycleActive).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByProduct lists non-deleted records referencing the product
func (r *GormInventoryRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.InventoryRecord, error) {
	var records []inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND state = ?", productID, shared.LifecycleActive).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindBelowThreshold lists non-deleted records with quantity strictly
// below the threshold
func (r *GormInventoryRepository) FindBelowThreshold(ctx context.Context, threshold int64) ([]inventory.InventoryRecord, error) {
	var records []inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Where("quantity < ? AND state = ?", threshold, shared.LifecycleActive).
		Order("quantity ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CountActiveByWarehouse counts non-deleted records in the warehouse
func (r *GormInventoryRepository) CountActiveByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&inventory.InventoryRecord{}).
		Where("warehouse_id = ? AND state = ?", warehouseID, shared.LifecycleActive).
		Count(&count).Error
	return count, err
}

// CountNonEmptyByWarehouse counts non-deleted records with stock in the
// warehouse
func (r *GormInventoryRepository) CountNonEmptyByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&inventory.InventoryRecord{}).
		Where("warehouse_id = ? AND state = ? AND quantity > 0", warehouseID, shared.LifecycleActive).
		Count(&count).Error
	return count, err
}

// Create inserts a new inventory record
func (r *GormInventoryRepository) Create(ctx context.Context, record *inventory.InventoryRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// SaveWithLock saves with optimistic locking. The aggregate has already
// incremented its version, so the row must still hold the previous one.
func (r *GormInventoryRepository) SaveWithLock(ctx context.Context, record *inventory.InventoryRecord) error {
	result := r.db.WithContext(ctx).
		Model(record).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(map[string]interface{}{
			"quantity":     record.Quantity,
			"warehouse_id": record.WarehouseID,
			"state":        record.State,
			"deleted_at":   record.Lifecycle.DeletedAt,
			"version":      record.Version,
			"updated_at":   record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// DecrementQuantity atomically subtracts amount from the record's
// quantity, refusing to drive it negative. The guard lives in the WHERE
// clause so a concurrent deduction between read and write cannot
// oversell the record.
func (r *GormInventoryRepository) DecrementQuantity(ctx context.Context, id uuid.UUID, amount int64) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.InventoryRecord{}).
		Where("id = ? AND state = ? AND quantity >= ?", id, shared.LifecycleActive, amount).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", amount),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInsufficientQuantity
	}
	return nil
}

// ReparentWarehouse moves every non-deleted record from one warehouse to
// another in a single statement, returning the number moved
func (r *GormInventoryRepository) ReparentWarehouse(ctx context.Context, fromWarehouseID, toWarehouseID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&inventory.InventoryRecord{}).
		Where("warehouse_id = ? AND state = ?", fromWarehouseID, shared.LifecycleActive).
		Updates(map[string]interface{}{
			"warehouse_id": toWarehouseID,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

var _ inventory.Repository = (*GormInventoryRepository)(nil)

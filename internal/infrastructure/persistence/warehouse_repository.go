package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/domain/warehouse"
)

// GormWarehouseRepository implements warehouse.Repository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by its ID, in any lifecycle state
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	var w warehouse.Warehouse
	if err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// FindActiveByID finds a warehouse only if it is not deleted
func (r *GormWarehouseRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	var w warehouse.Warehouse
	if err := r.db.WithContext(ctx).
		Where("id = ? AND state = ?", id, shared.LifecycleActive).
		First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// ExistsByName reports whether a non-deleted warehouse already uses the
// name, compared case-insensitively
func (r *GormWarehouseRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&warehouse.Warehouse{}).
		Where("LOWER(name) = LOWER(?) AND state = ?", name, shared.LifecycleActive).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists non-deleted warehouses matching the filter
func (r *GormWarehouseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]warehouse.Warehouse, error) {
	var warehouses []warehouse.Warehouse
	query := r.applyFilter(r.db.WithContext(ctx).Model(&warehouse.Warehouse{}), filter)

	orderBy := ValidateSortField(filter.OrderBy, WarehouseSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}

// Count counts non-deleted warehouses matching the filter
func (r *GormWarehouseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&warehouse.Warehouse{}), filter)
	err := query.Count(&count).Error
	return count, err
}

// Create inserts a new warehouse
func (r *GormWarehouseRepository) Create(ctx context.Context, w *warehouse.Warehouse) error {
	return r.db.WithContext(ctx).Create(w).Error
}

// Save persists the aggregate with an optimistic-concurrency check on
// its version
func (r *GormWarehouseRepository) Save(ctx context.Context, w *warehouse.Warehouse) error {
	result := r.db.WithContext(ctx).
		Model(w).
		Where("id = ? AND version = ?", w.ID, w.Version-1).
		Updates(map[string]interface{}{
			"name":       w.Name,
			"address":    w.Address,
			"phone":      w.Phone,
			"state":      w.State,
			"deleted_at": w.Lifecycle.DeletedAt,
			"version":    w.Version,
			"updated_at": w.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormWarehouseRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = query.Where("state = ?", shared.LifecycleActive)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR address ILIKE ?", pattern, pattern)
	}
	return query
}

var _ warehouse.Repository = (*GormWarehouseRepository)(nil)

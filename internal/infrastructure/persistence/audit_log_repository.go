package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shopstack/backend/internal/domain/audit"
	"github.com/shopstack/backend/internal/domain/shared"
)

// GormAuditLogRepository implements audit.Repository using GORM.
// Create is expected to run on a transaction-scoped instance; entries
// are never updated or deleted.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Create appends an entry to the audit log
func (r *GormAuditLogRepository) Create(ctx context.Context, entry *audit.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindAll lists audit entries matching the filter
func (r *GormAuditLogRepository) FindAll(ctx context.Context, filter shared.Filter) ([]audit.Entry, error) {
	var entries []audit.Entry
	query := r.applyFilter(r.db.WithContext(ctx).Model(&audit.Entry{}), filter)

	orderBy := ValidateSortField(filter.OrderBy, AuditSortFields, "timestamp")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Count counts audit entries matching the filter
func (r *GormAuditLogRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&audit.Entry{}), filter)
	err := query.Count(&count).Error
	return count, err
}

func (r *GormAuditLogRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if v, ok := filter.Filters["actor_id"]; ok {
		query = query.Where("actor_id = ?", v)
	}
	if v, ok := filter.Filters["operation"]; ok {
		query = query.Where("operation = ?", v)
	}
	if v, ok := filter.Filters["target_item_id"]; ok {
		query = query.Where("target_item_id = ?", v)
	}
	if v, ok := filter.Filters["timestamp_from"]; ok {
		query = query.Where("timestamp >= ?", v)
	}
	if v, ok := filter.Filters["timestamp_to"]; ok {
		query = query.Where("timestamp <= ?", v)
	}
	return query
}

var _ audit.Repository = (*GormAuditLogRepository)(nil)

package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopstack/backend/internal/application/uow"
	"github.com/shopstack/backend/internal/domain/audit"
	"github.com/shopstack/backend/internal/domain/inventory"
	"github.com/shopstack/backend/internal/domain/shared"
)

const (
	// DefaultTxTimeout bounds every state-changing transaction
	DefaultTxTimeout = 5 * time.Second
	// DefaultCacheTTL is the lifetime of read-model cache entries
	DefaultCacheTTL = 5 * time.Minute
)

// Service handles the inventory ledger operations. Every state-changing
// operation runs inside one transaction that also appends its audit
// entry and resynchronizes the product quantity mirror; cache tags are
// invalidated only after the transaction has committed.
type Service struct {
	scope     uow.TransactionScope
	records   inventory.Repository
	cache     shared.Cache
	notifier  shared.ErrorNotifier
	logger    *zap.Logger
	txTimeout time.Duration
	cacheTTL  time.Duration
}

// NewService creates a new inventory Service. The records repository
// serves the read paths; writes go through the transaction scope.
func NewService(
	scope uow.TransactionScope,
	records inventory.Repository,
	cache shared.Cache,
	notifier shared.ErrorNotifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		scope:     scope,
		records:   records,
		cache:     cache,
		notifier:  notifier,
		logger:    logger,
		txTimeout: DefaultTxTimeout,
		cacheTTL:  DefaultCacheTTL,
	}
}

// SetTxTimeout overrides the transaction deadline
func (s *Service) SetTxTimeout(d time.Duration) {
	if d > 0 {
		s.txTimeout = d
	}
}

// SetCacheTTL overrides the read-model cache entry lifetime
func (s *Service) SetCacheTTL(d time.Duration) {
	if d > 0 {
		s.cacheTTL = d
	}
}

// CreateInventory opens a stock record for a product in a warehouse.
// Fails with a conflict if an active record for the pair already exists.
func (s *Service) CreateInventory(ctx context.Context, actorID uuid.UUID, req CreateInventoryRequest) (*InventoryRecordResponse, error) {
	var record *inventory.InventoryRecord

	err := s.execute(ctx, "inventory.create", func(repos uow.Repositories) error {
		ok, err := repos.Products().Exists(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if !ok {
			return shared.NewDomainError("NOT_FOUND", "Product not found")
		}

		if _, err := repos.Warehouses().FindActiveByID(ctx, req.WarehouseID); err != nil {
			return err
		}

		exists, err := repos.Inventory().ExistsActivePair(ctx, req.ProductID, req.WarehouseID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Inventory record already exists for this product and warehouse")
		}

		record, err = inventory.NewInventoryRecord(req.ProductID, req.WarehouseID, req.Quantity)
		if err != nil {
			return err
		}
		if err := repos.Inventory().Create(ctx, record); err != nil {
			return err
		}

		if _, err := repos.Products().SyncQuantity(ctx, req.ProductID); err != nil {
			return err
		}

		desc := fmt.Sprintf("Created inventory record for product %s in warehouse %s with quantity %d",
			req.ProductID, req.WarehouseID, req.Quantity)
		return s.appendAudit(ctx, repos, actorID, audit.OperationAdd, record.ID, desc)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, shared.CacheTagInventory, shared.CacheTagProduct)
	return ToRecordResponse(record), nil
}

// IncreaseQuantity adds stock to an existing active inventory record
func (s *Service) IncreaseQuantity(ctx context.Context, actorID, recordID uuid.UUID, req IncreaseQuantityRequest) (*InventoryRecordResponse, error) {
	var record *inventory.InventoryRecord

	err := s.execute(ctx, "inventory.increase", func(repos uow.Repositories) error {
		var err error
		record, err = repos.Inventory().FindByID(ctx, recordID)
		if err != nil {
			return err
		}
		if record.IsDeleted() {
			return shared.NewDomainError("NOT_FOUND", "Inventory record not found")
		}

		if err := record.Increase(req.Amount); err != nil {
			return err
		}
		if err := repos.Inventory().SaveWithLock(ctx, record); err != nil {
			return err
		}
		if _, err := repos.Products().SyncQuantity(ctx, record.ProductID); err != nil {
			return err
		}

		desc := fmt.Sprintf("Increased inventory %s by %d to %d", record.ID, req.Amount, record.Quantity)
		return s.appendAudit(ctx, repos, actorID, audit.OperationUpdate, record.ID, desc)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, shared.CacheTagInventory, shared.CacheTagProduct)
	return ToRecordResponse(record), nil
}

// TransferQuantity moves stock of one product between two inventory
// records. Both legs commit atomically and produce a single audit entry;
// total stock across the two records is unchanged.
func (s *Service) TransferQuantity(ctx context.Context, actorID uuid.UUID, req TransferQuantityRequest) (*TransferQuantityResponse, error) {
	if req.Amount <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Transfer amount must be positive")
	}

	var resp *TransferQuantityResponse

	err := s.execute(ctx, "inventory.transfer", func(repos uow.Repositories) error {
		source, err := repos.Inventory().FindByID(ctx, req.SourceID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if err != nil || source.IsDeleted() {
			return shared.NewDomainError("NOT_FOUND", "Source inventory record not found")
		}
		target, err := repos.Inventory().FindByID(ctx, req.TargetID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if err != nil || target.IsDeleted() {
			return shared.NewDomainError("NOT_FOUND", "Target inventory record not found")
		}

		if source.ProductID != req.ProductID || target.ProductID != req.ProductID {
			return shared.NewDomainError("PRODUCT_MISMATCH", "Both records must hold the requested product")
		}
		if source.ID == target.ID {
			return shared.NewDomainError("SELF_TRANSFER", "Cannot transfer a record onto itself")
		}
		if source.WarehouseID == target.WarehouseID {
			return shared.NewDomainError("SAME_WAREHOUSE", "Cannot transfer within the same warehouse")
		}
		if source.Quantity < req.Amount {
			return shared.ErrInsufficientQuantity
		}

		// Conditional decrement, so a concurrent deduction between the
		// read above and this write cannot drive the source negative.
		if err := repos.Inventory().DecrementQuantity(ctx, source.ID, req.Amount); err != nil {
			return err
		}
		if err := target.Receive(req.Amount); err != nil {
			return err
		}
		if err := repos.Inventory().SaveWithLock(ctx, target); err != nil {
			return err
		}
		if _, err := repos.Products().SyncQuantity(ctx, req.ProductID); err != nil {
			return err
		}

		desc := fmt.Sprintf("Transferred %d of product %s from inventory %s (warehouse %s) to inventory %s (warehouse %s)",
			req.Amount, req.ProductID, source.ID, source.WarehouseID, target.ID, target.WarehouseID)
		if err := s.appendAudit(ctx, repos, actorID, audit.OperationUpdate, source.ID, desc); err != nil {
			return err
		}

		resp = &TransferQuantityResponse{
			SourceID:       source.ID,
			TargetID:       target.ID,
			ProductID:      req.ProductID,
			Amount:         req.Amount,
			SourceQuantity: source.Quantity - req.Amount,
			TargetQuantity: target.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, shared.CacheTagInventory)
	return resp, nil
}

// DeleteInventory soft-deletes an empty inventory record. Deleting an
// already-deleted record is a no-op and leaves no audit trail.
func (s *Service) DeleteInventory(ctx context.Context, actorID, recordID uuid.UUID) error {
	noop := false

	err := s.execute(ctx, "inventory.delete", func(repos uow.Repositories) error {
		record, err := repos.Inventory().FindByID(ctx, recordID)
		if err != nil {
			return err
		}
		if record.IsDeleted() {
			noop = true
			return nil
		}

		if err := record.Delete(); err != nil {
			return err
		}
		if err := repos.Inventory().SaveWithLock(ctx, record); err != nil {
			return err
		}
		if _, err := repos.Products().SyncQuantity(ctx, record.ProductID); err != nil {
			return err
		}

		desc := fmt.Sprintf("Deleted inventory record %s (product %s, warehouse %s)",
			record.ID, record.ProductID, record.WarehouseID)
		return s.appendAudit(ctx, repos, actorID, audit.OperationDelete, record.ID, desc)
	})
	if err != nil {
		return err
	}

	if !noop {
		s.invalidate(ctx, shared.CacheTagInventory, shared.CacheTagProduct)
	}
	return nil
}

// RestoreInventory reverses a soft delete. Restoring an active record is
// a no-op; restoring fails with a conflict when another active record
// for the same product and warehouse has appeared since the delete.
func (s *Service) RestoreInventory(ctx context.Context, actorID, recordID uuid.UUID) (*InventoryRecordResponse, error) {
	var record *inventory.InventoryRecord
	noop := false

	err := s.execute(ctx, "inventory.restore", func(repos uow.Repositories) error {
		var err error
		record, err = repos.Inventory().FindByID(ctx, recordID)
		if err != nil {
			return err
		}
		if !record.IsDeleted() {
			noop = true
			return nil
		}

		exists, err := repos.Inventory().ExistsActivePair(ctx, record.ProductID, record.WarehouseID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "An active inventory record already exists for this product and warehouse")
		}

		record.Undelete()
		if err := repos.Inventory().SaveWithLock(ctx, record); err != nil {
			return err
		}
		if _, err := repos.Products().SyncQuantity(ctx, record.ProductID); err != nil {
			return err
		}

		desc := fmt.Sprintf("Restored inventory record %s (product %s, warehouse %s)",
			record.ID, record.ProductID, record.WarehouseID)
		return s.appendAudit(ctx, repos, actorID, audit.OperationUndoDelete, record.ID, desc)
	})
	if err != nil {
		return nil, err
	}

	if !noop {
		s.invalidate(ctx, shared.CacheTagInventory, shared.CacheTagProduct)
	}
	return ToRecordResponse(record), nil
}

// GetByID returns a single inventory record in any lifecycle state
func (s *Service) GetByID(ctx context.Context, recordID uuid.UUID) (*InventoryRecordResponse, error) {
	record, err := s.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return ToRecordResponse(record), nil
}

// GetByWarehouse lists the active inventory records of a warehouse,
// cache-aside.
func (s *Service) GetByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]InventoryRecordResponse, error) {
	key := fmt.Sprintf("inventory:warehouse:%s", warehouseID)
	return s.cachedList(ctx, key, func(ctx context.Context) ([]inventory.InventoryRecord, error) {
		return s.records.FindByWarehouse(ctx, warehouseID)
	})
}

// GetByProduct lists the active inventory records holding a product,
// cache-aside.
func (s *Service) GetByProduct(ctx context.Context, productID uuid.UUID) ([]InventoryRecordResponse, error) {
	key := fmt.Sprintf("inventory:product:%s", productID)
	return s.cachedList(ctx, key, func(ctx context.Context) ([]inventory.InventoryRecord, error) {
		return s.records.FindByProduct(ctx, productID)
	})
}

// GetLowStock lists active records with quantity strictly below the
// threshold, cache-aside.
func (s *Service) GetLowStock(ctx context.Context, threshold int64) ([]InventoryRecordResponse, error) {
	if threshold < 0 {
		return nil, shared.NewDomainError("INVALID_THRESHOLD", "Threshold cannot be negative")
	}
	key := fmt.Sprintf("inventory:low-stock:%d", threshold)
	return s.cachedList(ctx, key, func(ctx context.Context) ([]inventory.InventoryRecord, error) {
		return s.records.FindBelowThreshold(ctx, threshold)
	})
}

// execute runs fn within a deadline-bounded transaction and translates
// unexpected failures into domain errors after notifying operations.
func (s *Service) execute(ctx context.Context, operation string, fn func(repos uow.Repositories) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	err := s.scope.Execute(ctx, fn)
	if err == nil {
		return nil
	}

	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.logger.Error("transaction deadline exceeded",
			zap.String("operation", operation),
			zap.Duration("timeout", s.txTimeout),
			zap.Error(err))
		s.notifier.NotifyError(ctx, operation, err)
		return shared.ErrTransactionTimeout
	}

	s.logger.Error("operation failed",
		zap.String("operation", operation),
		zap.Error(err))
	s.notifier.NotifyError(ctx, operation, err)
	return shared.NewDomainError("INTERNAL_ERROR", "An unexpected error occurred")
}

// appendAudit writes the audit entry for a mutation inside its
// transaction. A failed append aborts the whole operation.
func (s *Service) appendAudit(ctx context.Context, repos uow.Repositories, actorID uuid.UUID, op audit.OperationKind, targetID uuid.UUID, description string) error {
	entry, err := audit.NewEntry(actorID, op, targetID, description)
	if err != nil {
		return err
	}
	return repos.AuditLog().Create(ctx, entry)
}

// cachedList serves a list read through the cache, falling back to the
// store on miss or on any cache failure.
func (s *Service) cachedList(ctx context.Context, key string, load func(ctx context.Context) ([]inventory.InventoryRecord, error)) ([]InventoryRecordResponse, error) {
	if raw, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if raw != nil {
		var cached []InventoryRecordResponse
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		s.logger.Warn("cache entry corrupt, reloading", zap.String("key", key))
	}

	records, err := load(ctx)
	if err != nil {
		return nil, err
	}
	out := ToRecordResponses(records)

	if raw, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cacheTTL, shared.CacheTagInventory); err != nil {
			s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

// invalidate drops cache tag groups after a successful commit. Failures
// are logged and swallowed; stale entries expire by TTL.
func (s *Service) invalidate(ctx context.Context, tags ...string) {
	for _, tag := range tags {
		if err := s.cache.RemoveByTag(ctx, tag); err != nil {
			s.logger.Warn("cache invalidation failed", zap.String("tag", tag), zap.Error(err))
		}
	}
}

package warehouse

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
	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/domain/warehouse"
)

// DeleteGuardPolicy decides which inventory blocks a warehouse delete
type DeleteGuardPolicy string

const (
	// DeleteGuardAnyRecord blocks deletion while any active inventory
	// record exists in the warehouse, even an empty one.
	DeleteGuardAnyRecord DeleteGuardPolicy = "any_record"
	// DeleteGuardNonzeroOnly blocks deletion only while records with
	// stock remain; empty records are soft-deleted along with the
	// warehouse.
	DeleteGuardNonzeroOnly DeleteGuardPolicy = "nonzero_only"
)

// IsValid reports whether the policy is a known delete guard policy
func (p DeleteGuardPolicy) IsValid() bool {
	return p == DeleteGuardAnyRecord || p == DeleteGuardNonzeroOnly
}

const (
	// DefaultTxTimeout bounds every state-changing transaction
	DefaultTxTimeout = 5 * time.Second
	// DefaultCacheTTL is the lifetime of read-model cache entries
	DefaultCacheTTL = 5 * time.Minute
)

// Service handles warehouse management operations. Mutations run inside
// one transaction together with their audit entry; deletion is guarded
// by the inventory the warehouse still owns.
type Service struct {
	scope       uow.TransactionScope
	warehouses  warehouse.Repository
	cache       shared.Cache
	notifier    shared.ErrorNotifier
	logger      *zap.Logger
	deleteGuard DeleteGuardPolicy
	txTimeout   time.Duration
	cacheTTL    time.Duration
}

// NewService creates a new warehouse Service
func NewService(
	scope uow.TransactionScope,
	warehouses warehouse.Repository,
	cache shared.Cache,
	notifier shared.ErrorNotifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		scope:       scope,
		warehouses:  warehouses,
		cache:       cache,
		notifier:    notifier,
		logger:      logger,
		deleteGuard: DeleteGuardAnyRecord,
		txTimeout:   DefaultTxTimeout,
		cacheTTL:    DefaultCacheTTL,
	}
}

// SetDeleteGuard overrides the delete guard policy
func (s *Service) SetDeleteGuard(p DeleteGuardPolicy) {
	if p.IsValid() {
		s.deleteGuard = p
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

// Create registers a new warehouse. Names are unique among non-deleted
// warehouses, compared case-insensitively.
func (s *Service) Create(ctx context.Context, actorID uuid.UUID, req CreateWarehouseRequest) (*WarehouseResponse, error) {
	var w *warehouse.Warehouse

	err := s.execute(ctx, "warehouse.create", func(repos uow.Repositories) error {
		taken, err := repos.Warehouses().ExistsByName(ctx, req.Name)
		if err != nil {
			return err
		}
		if taken {
			return shared.NewDomainError("ALREADY_EXISTS", "A warehouse with this name already exists")
		}

		w, err = warehouse.NewWarehouse(req.Name, req.Address, req.Phone)
		if err != nil {
			return err
		}
		if err := repos.Warehouses().Create(ctx, w); err != nil {
			return err
		}

		desc := fmt.Sprintf("Created warehouse %q at %q", w.Name, w.Address)
		return s.appendAudit(ctx, repos, actorID, audit.OperationAdd, w.ID, desc)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, shared.CacheTagWarehouse)
	return ToWarehouseResponse(w), nil
}

// Update applies a partial update to an active warehouse. Fields are
// applied in order (name, address, phone) and the update short-circuits
// on the first field that fails validation, leaving nothing persisted.
func (s *Service) Update(ctx context.Context, actorID, warehouseID uuid.UUID, req UpdateWarehouseRequest) (*WarehouseResponse, error) {
	var w *warehouse.Warehouse

	err := s.execute(ctx, "warehouse.update", func(repos uow.Repositories) error {
		var err error
		w, err = repos.Warehouses().FindActiveByID(ctx, warehouseID)
		if err != nil {
			return err
		}

		changed := false
		if req.Name != nil {
			taken, err := repos.Warehouses().ExistsByName(ctx, *req.Name)
			if err != nil {
				return err
			}
			if taken {
				return shared.NewDomainError("ALREADY_EXISTS", "A warehouse with this name already exists")
			}
			if err := w.Rename(*req.Name); err != nil {
				return err
			}
			changed = true
		}
		if req.Address != nil {
			if err := w.Relocate(*req.Address); err != nil {
				return err
			}
			changed = true
		}
		if req.Phone != nil {
			w.SetPhone(*req.Phone)
			changed = true
		}
		if !changed {
			return shared.NewDomainError("EMPTY_UPDATE", "No fields to update")
		}

		if err := repos.Warehouses().Save(ctx, w); err != nil {
			return err
		}

		desc := fmt.Sprintf("Updated warehouse %s (%q)", w.ID, w.Name)
		return s.appendAudit(ctx, repos, actorID, audit.OperationUpdate, w.ID, desc)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, shared.CacheTagWarehouse)
	return ToWarehouseResponse(w), nil
}

// SoftDelete marks a warehouse deleted. The guard policy decides whether
// lingering inventory blocks the delete; deleting an already-deleted
// warehouse is a no-op and leaves no audit trail.
func (s *Service) SoftDelete(ctx context.Context, actorID, warehouseID uuid.UUID) error {
	noop := false

	err := s.execute(ctx, "warehouse.delete", func(repos uow.Repositories) error {
		w, err := repos.Warehouses().FindByID(ctx, warehouseID)
		if err != nil {
			return err
		}
		if w.IsDeleted() {
			noop = true
			return nil
		}

		if err := s.guardDelete(ctx, repos, w.ID); err != nil {
			return err
		}

		w.Delete()
		if err := repos.Warehouses().Save(ctx, w); err != nil {
			return err
		}

		desc := fmt.Sprintf("Deleted warehouse %s (%q)", w.ID, w.Name)
		return s.appendAudit(ctx, repos, actorID, audit.OperationDelete, w.ID, desc)
	})
	if err != nil {
		return err
	}

	if !noop {
		s.invalidate(ctx, shared.CacheTagWarehouse, shared.CacheTagInventory)
	}
	return nil
}

// guardDelete enforces the configured inventory guard before deletion.
// Under the nonzero_only policy, surviving empty records are soft-deleted
// along with the warehouse so nothing active points at a deleted owner.
func (s *Service) guardDelete(ctx context.Context, repos uow.Repositories, warehouseID uuid.UUID) error {
	switch s.deleteGuard {
	case DeleteGuardNonzeroOnly:
		n, err := repos.Inventory().CountNonEmptyByWarehouse(ctx, warehouseID)
		if err != nil {
			return err
		}
		if n > 0 {
			return shared.NewDomainError("CONTAINS_PRODUCTS", "Warehouse still contains stock")
		}
		records, err := repos.Inventory().FindByWarehouse(ctx, warehouseID)
		if err != nil {
			return err
		}
		for i := range records {
			r := &records[i]
			if err := r.Delete(); err != nil {
				return err
			}
			if err := repos.Inventory().SaveWithLock(ctx, r); err != nil {
				return err
			}
		}
		return nil
	default:
		n, err := repos.Inventory().CountActiveByWarehouse(ctx, warehouseID)
		if err != nil {
			return err
		}
		if n > 0 {
			return shared.NewDomainError("CONTAINS_PRODUCTS", "Warehouse still contains inventory records")
		}
		return nil
	}
}

// Restore reverses a soft delete. Restoring an active warehouse is a
// no-op; restoring fails with a conflict when another active warehouse
// has since taken the name.
func (s *Service) Restore(ctx context.Context, actorID, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	var w *warehouse.Warehouse
	noop := false

	err := s.execute(ctx, "warehouse.restore", func(repos uow.Repositories) error {
		var err error
		w, err = repos.Warehouses().FindByID(ctx, warehouseID)
		if err != nil {
			return err
		}
		if !w.IsDeleted() {
			noop = true
			return nil
		}

		taken, err := repos.Warehouses().ExistsByName(ctx, w.Name)
		if err != nil {
			return err
		}
		if taken {
			return shared.NewDomainError("ALREADY_EXISTS", "An active warehouse with this name already exists")
		}

		w.Undelete()
		if err := repos.Warehouses().Save(ctx, w); err != nil {
			return err
		}

		desc := fmt.Sprintf("Restored warehouse %s (%q)", w.ID, w.Name)
		return s.appendAudit(ctx, repos, actorID, audit.OperationUndoDelete, w.ID, desc)
	})
	if err != nil {
		return nil, err
	}

	if !noop {
		s.invalidate(ctx, shared.CacheTagWarehouse)
	}
	return ToWarehouseResponse(w), nil
}

// TransferInventory re-parents every active inventory record from one
// warehouse to another in a single transaction with one audit entry.
func (s *Service) TransferInventory(ctx context.Context, actorID, sourceID uuid.UUID, req TransferInventoryRequest) (*TransferInventoryResponse, error) {
	var resp *TransferInventoryResponse

	err := s.execute(ctx, "warehouse.transfer-inventory", func(repos uow.Repositories) error {
		source, err := repos.Warehouses().FindActiveByID(ctx, sourceID)
		if err != nil {
			return err
		}
		target, err := repos.Warehouses().FindActiveByID(ctx, req.TargetWarehouseID)
		if err != nil {
			return err
		}
		if source.ID == target.ID {
			return shared.NewDomainError("SAME_WAREHOUSE", "Source and target warehouses are identical")
		}

		count, err := repos.Inventory().CountActiveByWarehouse(ctx, source.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			return shared.NewDomainError("EMPTY_WAREHOUSE", "Source warehouse has no inventory to transfer")
		}

		moved, err := repos.Inventory().ReparentWarehouse(ctx, source.ID, target.ID)
		if err != nil {
			return err
		}

		desc := fmt.Sprintf("Moved %d inventory records from warehouse %s (%q) to warehouse %s (%q)",
			moved, source.ID, source.Name, target.ID, target.Name)
		if err := s.appendAudit(ctx, repos, actorID, audit.OperationUpdate, source.ID, desc); err != nil {
			return err
		}

		resp = &TransferInventoryResponse{
			SourceWarehouseID: source.ID,
			TargetWarehouseID: target.ID,
			RecordsMoved:      moved,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, shared.CacheTagWarehouse, shared.CacheTagInventory)
	return resp, nil
}

// GetByID returns a single warehouse in any lifecycle state
func (s *Service) GetByID(ctx context.Context, warehouseID uuid.UUID) (*WarehouseResponse, error) {
	w, err := s.warehouses.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return ToWarehouseResponse(w), nil
}

// List pages through non-deleted warehouses. The unfiltered first page
// is served cache-aside; filtered queries always hit the store.
func (s *Service) List(ctx context.Context, filter ListFilter) (*shared.Paginated[WarehouseResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search

	cacheable := f.Search == "" && f.Page == 1
	key := fmt.Sprintf("warehouse:list:%d:%s:%s", f.PageSize, f.OrderBy, f.OrderDir)
	if cacheable {
		if raw, err := s.cache.Get(ctx, key); err != nil {
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		} else if raw != nil {
			var cached shared.Paginated[WarehouseResponse]
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	warehouses, err := s.warehouses.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.warehouses.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToWarehouseResponses(warehouses), total, f.Page, f.PageSize)

	if cacheable {
		if raw, err := json.Marshal(page); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL, shared.CacheTagWarehouse); err != nil {
				s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return &page, nil
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

func (s *Service) appendAudit(ctx context.Context, repos uow.Repositories, actorID uuid.UUID, op audit.OperationKind, targetID uuid.UUID, description string) error {
	entry, err := audit.NewEntry(actorID, op, targetID, description)
	if err != nil {
		return err
	}
	return repos.AuditLog().Create(ctx, entry)
}

func (s *Service) invalidate(ctx context.Context, tags ...string) {
	for _, tag := range tags {
		if err := s.cache.RemoveByTag(ctx, tag); err != nil {
			s.logger.Warn("cache invalidation failed", zap.String("tag", tag), zap.Error(err))
		}
	}
}

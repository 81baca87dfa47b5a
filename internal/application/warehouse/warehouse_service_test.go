package warehouse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopstack/backend/internal/application/uow"
	"github.com/shopstack/backend/internal/domain/audit"
	"github.com/shopstack/backend/internal/domain/catalog"
	"github.com/shopstack/backend/internal/domain/inventory"
	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/domain/warehouse"
)

// MockWarehouseRepository is a mock implementation of warehouse.Repository
type MockWarehouseRepository struct {
	mock.Mock
}

func (m *MockWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*warehouse.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*warehouse.Warehouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*warehouse.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockWarehouseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]warehouse.Warehouse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]warehouse.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWarehouseRepository) Create(ctx context.Context, w *warehouse.Warehouse) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWarehouseRepository) Save(ctx context.Context, w *warehouse.Warehouse) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

// MockInventoryRepository is a mock implementation of inventory.Repository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.InventoryRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) FindActiveByPair(ctx context.Context, productID, warehouseID uuid.UUID) (*inventory.InventoryRecord, error) {
	args := m.Called(ctx, productID, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) ExistsActivePair(ctx context.Context, productID, warehouseID uuid.UUID) (bool, error) {
	args := m.Called(ctx, productID, warehouseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInventoryRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]inventory.InventoryRecord, error) {
	args := m.Called(ctx, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.InventoryRecord, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) FindBelowThreshold(ctx context.Context, threshold int64) ([]inventory.InventoryRecord, error) {
	args := m.Called(ctx, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) CountActiveByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int64, error) {
	args := m.Called(ctx, warehouseID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInventoryRepository) CountNonEmptyByWarehouse(ctx context.Context, warehouseID uuid.UUID) (int64, error) {
	args := m.Called(ctx, warehouseID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInventoryRepository) Create(ctx context.Context, record *inventory.InventoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockInventoryRepository) SaveWithLock(ctx context.Context, record *inventory.InventoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockInventoryRepository) DecrementQuantity(ctx context.Context, id uuid.UUID, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockInventoryRepository) ReparentWarehouse(ctx context.Context, fromWarehouseID, toWarehouseID uuid.UUID) (int64, error) {
	args := m.Called(ctx, fromWarehouseID, toWarehouseID)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SyncQuantity(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditRepository is a mock implementation of audit.Repository
type MockAuditRepository struct {
	mock.Mock
	mu      sync.Mutex
	entries []*audit.Entry
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	if args.Error(0) == nil {
		m.mu.Lock()
		m.entries = append(m.entries, entry)
		m.mu.Unlock()
	}
	return args.Error(0)
}

func (m *MockAuditRepository) FindAll(ctx context.Context, filter shared.Filter) ([]audit.Entry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Entry), args.Error(1)
}

func (m *MockAuditRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditRepository) Entries() []*audit.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*audit.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// stubCache is an in-memory shared.Cache recording tag invalidations
type stubCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	removedTags []string
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]byte)}
}

func (c *stubCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *stubCache) Set(_ context.Context, key string, value []byte, _ time.Duration, _ ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *stubCache) RemoveByTag(_ context.Context, tag string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removedTags = append(c.removedTags, tag)
	return nil
}

func (c *stubCache) Close() error { return nil }

func (c *stubCache) RemovedTags() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.removedTags))
	copy(out, c.removedTags)
	return out
}

type serviceFixture struct {
	svc       *Service
	warehouse *MockWarehouseRepository
	inventory *MockInventoryRepository
	auditLog  *MockAuditRepository
	cache     *stubCache
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		warehouse: new(MockWarehouseRepository),
		inventory: new(MockInventoryRepository),
		auditLog:  new(MockAuditRepository),
		cache:     newStubCache(),
	}
	scope := uow.PassthroughScope{Repos: uow.StaticRepositories{
		InventoryRepo: f.inventory,
		WarehouseRepo: f.warehouse,
		ProductRepo:   new(MockProductRepository),
		AuditRepo:     f.auditLog,
	}}
	f.svc = NewService(scope, f.warehouse, f.cache, shared.NopNotifier{}, zap.NewNop())
	return f
}

func newTestWarehouse(t *testing.T, name string) *warehouse.Warehouse {
	t.Helper()
	w, err := warehouse.NewWarehouse(name, "12 Harbor Street, Hamburg", "+49 40 1234")
	require.NoError(t, err)
	return w
}

func TestService_Create_Success(t *testing.T) {
	f := newServiceFixture()
	actorID := uuid.New()

	f.warehouse.On("ExistsByName", mock.Anything, "North Depot").Return(false, nil)
	f.warehouse.On("Create", mock.Anything, mock.AnythingOfType("*warehouse.Warehouse")).Return(nil)
	f.auditLog.On("Create", mock.Anything, mock.AnythingOfType("*audit.Entry")).Return(nil)

	resp, err := f.svc.Create(context.Background(), actorID, CreateWarehouseRequest{
		Name:    "North Depot",
		Address: "12 Harbor Street, Hamburg",
	})

	require.NoError(t, err)
	assert.Equal(t, "North Depot", resp.Name)
	assert.Equal(t, "active", resp.Status)

	entries := f.auditLog.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.OperationAdd, entries[0].Operation)
	assert.Equal(t, resp.ID, entries[0].TargetItemID)
	assert.Contains(t, f.cache.RemovedTags(), shared.CacheTagWarehouse)
}

func TestService_Create_DuplicateName(t *testing.T) {
	f := newServiceFixture()

	f.warehouse.On("ExistsByName", mock.Anything, "North Depot").Return(true, nil)

	_, err := f.svc.Create(context.Background(), uuid.New(), CreateWarehouseRequest{
		Name:    "North Depot",
		Address: "12 Harbor Street, Hamburg",
	})

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ALREADY_EXISTS", de.Code)
	f.warehouse.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Create_NameTooShort(t *testing.T) {
	f := newServiceFixture()

	f.warehouse.On("ExistsByName", mock.Anything, "Hub").Return(false, nil)

	_, err := f.svc.Create(context.Background(), uuid.New(), CreateWarehouseRequest{
		Name:    "Hub",
		Address: "12 Harbor Street, Hamburg",
	})

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_NAME", de.Code)
}

func TestService_Update_ShortCircuitsOnFirstInvalidField(t *testing.T) {
	f := newServiceFixture()
	w := newTestWarehouse(t, "North Depot")
	badName := "x"
	newAddr := "99 New Quay Road, Antwerp"

	f.warehouse.On("FindActiveByID", mock.Anything, w.ID).Return(w, nil)
	f.warehouse.On("ExistsByName", mock.Anything, badName).Return(false, nil)

	_, err := f.svc.Update(context.Background(), uuid.New(), w.ID, UpdateWarehouseRequest{
		Name:    &badName,
		Address: &newAddr,
	})

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_NAME", de.Code)
	// The later address change must not have been applied or saved.
	assert.Equal(t, "12 Harbor Street, Hamburg", w.Address)
	f.warehouse.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestService_Update_RenameToSameNameRejected(t *testing.T) {
	f := newServiceFixture()
	w := newTestWarehouse(t, "North Depot")
	same := "north depot"

	f.warehouse.On("FindActiveByID", mock.Anything, w.ID).Return(w, nil)
	f.warehouse.On("ExistsByName", mock.Anything, same).Return(false, nil)

	_, err := f.svc.Update(context.Background(), uuid.New(), w.ID, UpdateWarehouseRequest{Name: &same})

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "SAME_NAME", de.Code)
}

func TestService_Update_Success(t *testing.T) {
	f := newServiceFixture()
	w := newTestWarehouse(t, "North Depot")
	newName := "South Depot"
	newPhone := "+31 10 5678"

	f.warehouse.On("FindActiveByID", mock.Anything, w.ID).Return(w, nil)
	f.warehouse.On("ExistsByName", mock.Anything, newName).Return(false, nil)
	f.warehouse.On("Save", mock.Anything, w).Return(nil)
	f.auditLog.On("Create", mock.Anything, mock.AnythingOfType("*audit.Entry")).Return(nil)

	resp, err := f.svc.Update(context.Background(), uuid.New(), w.ID, UpdateWarehouseRequest{
		Name:  &newName,
		Phone: &newPhone,
	})

	require.NoError(t, err)
	assert.Equal(t, "South Depot", resp.Name)
	assert.Equal(t, "+31 10 5678", resp.Phone)
	require.Len(t, f.auditLog.Entries(), 1)
}

func TestService_SoftDelete_GuardAnyRecordBlocksEmptyRecords(t *testing.T) {
	f := newServiceFixture()
	w := newTestWarehouse(t, "North Depot")

	f.warehouse.On("FindByID", mock.Anything, w.ID).Return(w, nil)
	f.inventory.On("CountActiveByWarehouse", mock.Anything, w.ID).Return(int64(2), nil)

	err := f.svc.SoftDelete(context.Background(), uuid.New(), w.ID)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "CONTAINS_PRODUCTS", de.Code)
	assert.False(t, w.IsDeleted())
}

func TestService_SoftDelete_GuardNonzeroOnlyCascadesEmptyRecords(t *testing.T) {
	f := newServiceFixture()
	f.svc.SetDeleteGuard(DeleteGuardNonzeroOnly)
	w := newTestWarehouse(t, "North Depot")

	empty, err := inventory.NewInventoryRecord(uuid.New(), w.ID, 0)
	require.NoError(t, err)

	f.warehouse.On("FindByID", mock.Anything, w.ID).Return(w, nil)
	f.inventory.On("CountNonEmptyByWarehouse", mock.Anything, w.ID).Return(int64(0), nil)
	f.inventory.On("FindByWarehouse", mock.Anything, w.ID).Return([]inventory.InventoryRecord{*empty}, nil)
	f.inventory.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*inventory.InventoryRecord")).Return(nil)
	f.warehouse.On("Save", mock.Anything, w).Return(nil)
	f.auditLog.On("Create", mock.Anything, mock.AnythingOfType("*audit.Entry")).Return(nil)

	err = f.svc.SoftDelete(context.Background(), uuid.New(), w.ID)

	require.NoError(t, err)
	assert.True(t, w.IsDeleted())
	f.inventory.AssertCalled(t, "SaveWithLock", mock.Anything, mock.AnythingOfType("*inventory.InventoryRecord"))

	entries := f.auditLog.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.OperationDelete, entries[0].Operation)
}

func TestService_SoftDelete_GuardNonzeroOnlyBlocksStock(t *testing.T) {
	f := newServiceFixture()
	f.svc.SetDeleteGuard(DeleteGuardNonzeroOnly)
	w := newTestWarehouse(t, "North Depot")

	f.warehouse.On("FindByID", mock.Anything, w.ID).Return(w, nil)
	f.inventory.On("CountNonEmptyByWarehouse", mock.Anything, w.ID).Return(int64(1), nil)

	err := f.svc.SoftDelete(context.Background(), uuid.New(), w.ID)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "CONTAINS_PRODUCTS", de.Code)
}

func TestService_SoftDelete_AlreadyDeletedIsNoop(t *testing.T) {
	f := newServiceFixture()
	w := newTestWarehouse(t, "North Depot")
	w.Delete()

	f.warehouse.On("FindByID", mock.Anything, w.ID).Return(w, nil)

	err := f.svc.SoftDelete(context.Background(), uuid.New(), w.ID)

	require.NoError(t, err)
	assert.Empty(t, f.auditLog.Entries())
	assert.Empty(t, f.cache.RemovedTags())
}

func TestService_Restore_Success(t *testing.T) {
	f := newServiceFixture()
	w := newTestWarehouse(t, "North Depot")
	w.Delete()

	f.warehouse.On("FindByID", mock.Anything, w.ID).Return(w, nil)
	f.warehouse.On("ExistsByName", mock.Anything, w.Name).Return(false, nil)
	f.warehouse.On("Save", mock.Anything, w).Return(nil)
	f.auditLog.On("Create", mock.Anything, mock.AnythingOfType("*audit.Entry")).Return(nil)

	resp, err := f.svc.Restore(context.Background(), uuid.New(), w.ID)

	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)

	entries := f.auditLog.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.OperationUndoDelete, entries[0].Operation)
}

func TestService_Restore_NameTakenConflict(t *testing.T) {
	f := newServiceFixture()
	w := newTestWarehouse(t, "North Depot")
	w.Delete()

	f.warehouse.On("FindByID", mock.Anything, w.ID).Return(w, nil)
	f.warehouse.On("ExistsByName", mock.Anything, w.Name).Return(true, nil)

	_, err := f.svc.Restore(context.Background(), uuid.New(), w.ID)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ALREADY_EXISTS", de.Code)
	assert.True(t, w.IsDeleted())
}

func TestService_TransferInventory_Success(t *testing.T) {
	f := newServiceFixture()
	source := newTestWarehouse(t, "North Depot")
	target := newTestWarehouse(t, "South Depot")

	f.warehouse.On("FindActiveByID", mock.Anything, source.ID).Return(source, nil)
	f.warehouse.On("FindActiveByID", mock.Anything, target.ID).Return(target, nil)
	f.inventory.On("CountActiveByWarehouse", mock.Anything, source.ID).Return(int64(3), nil)
	f.inventory.On("ReparentWarehouse", mock.Anything, source.ID, target.ID).Return(int64(3), nil)
	f.auditLog.On("Create", mock.Anything, mock.AnythingOfType("*audit.Entry")).Return(nil)

	resp, err := f.svc.TransferInventory(context.Background(), uuid.New(), source.ID, TransferInventoryRequest{
		TargetWarehouseID: target.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.RecordsMoved)

	entries := f.auditLog.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, audit.OperationUpdate, entries[0].Operation)
	assert.Equal(t, source.ID, entries[0].TargetItemID)

	assert.Contains(t, f.cache.RemovedTags(), shared.CacheTagWarehouse)
	assert.Contains(t, f.cache.RemovedTags(), shared.CacheTagInventory)
}

func TestService_TransferInventory_SameWarehouse(t *testing.T) {
	f := newServiceFixture()
	source := newTestWarehouse(t, "North Depot")

	f.warehouse.On("FindActiveByID", mock.Anything, source.ID).Return(source, nil)

	_, err := f.svc.TransferInventory(context.Background(), uuid.New(), source.ID, TransferInventoryRequest{
		TargetWarehouseID: source.ID,
	})

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "SAME_WAREHOUSE", de.Code)
}

func TestService_TransferInventory_EmptySource(t *testing.T) {
	f := newServiceFixture()
	source := newTestWarehouse(t, "North Depot")
	target := newTestWarehouse(t, "South Depot")

	f.warehouse.On("FindActiveByID", mock.Anything, source.ID).Return(source, nil)
	f.warehouse.On("FindActiveByID", mock.Anything, target.ID).Return(target, nil)
	f.inventory.On("CountActiveByWarehouse", mock.Anything, source.ID).Return(int64(0), nil)

	_, err := f.svc.TransferInventory(context.Background(), uuid.New(), source.ID, TransferInventoryRequest{
		TargetWarehouseID: target.ID,
	})

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "EMPTY_WAREHOUSE", de.Code)
	f.inventory.AssertNotCalled(t, "ReparentWarehouse", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_List_CachesFirstUnfilteredPage(t *testing.T) {
	f := newServiceFixture()
	warehouses := []warehouse.Warehouse{*newTestWarehouse(t, "North Depot")}

	f.warehouse.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(warehouses, nil).Once()
	f.warehouse.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil).Once()

	first, err := f.svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, first.Items, 1)

	// Timestamps lose their location on the cache's JSON round trip, so
	// they are compared as instants.
	second, err := f.svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, first.Items[0].ID, second.Items[0].ID)
	assert.Equal(t, first.Items[0].Name, second.Items[0].Name)
	assert.Equal(t, first.Items[0].Status, second.Items[0].Status)
	assert.True(t, first.Items[0].CreatedAt.Equal(second.Items[0].CreatedAt))
	f.warehouse.AssertNumberOfCalls(t, "FindAll", 1)
}

func TestService_UnexpectedErrorMasked(t *testing.T) {
	f := newServiceFixture()
	warehouseID := uuid.New()

	f.warehouse.On("FindByID", mock.Anything, warehouseID).Return(nil, errors.New("connection reset"))

	err := f.svc.SoftDelete(context.Background(), uuid.New(), warehouseID)

	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
}

package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	auditapp "github.com/shopstack/backend/internal/application/audit"
	inventoryapp "github.com/shopstack/backend/internal/application/inventory"
	warehouseapp "github.com/shopstack/backend/internal/application/warehouse"
	"github.com/shopstack/backend/internal/domain/audit"
	"github.com/shopstack/backend/internal/domain/catalog"
	"github.com/shopstack/backend/internal/domain/inventory"
	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/domain/warehouse"
	"github.com/shopstack/backend/internal/infrastructure/auth"
	"github.com/shopstack/backend/internal/infrastructure/cache"
	"github.com/shopstack/backend/internal/infrastructure/config"
	"github.com/shopstack/backend/internal/infrastructure/persistence"
	"github.com/shopstack/backend/internal/interfaces/http/handler"
	"github.com/shopstack/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	engine *gin.Engine
	db     *gorm.DB
	token  string
}

// newTestAPI wires the full HTTP stack over an in-memory database.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalog.Product{},
		&warehouse.Warehouse{},
		&inventory.InventoryRecord{},
		&audit.Entry{},
	))

	store := cache.NewInMemoryCache()
	t.Cleanup(func() { _ = store.Close() })

	scope := persistence.NewGormScope(db)
	logger := zap.NewNop()
	notifier := shared.NopNotifier{}

	inventoryService := inventoryapp.NewService(
		scope, persistence.NewGormInventoryRepository(db), store, notifier, logger)
	warehouseService := warehouseapp.NewService(
		scope, persistence.NewGormWarehouseRepository(db), store, notifier, logger)
	auditService := auditapp.NewService(persistence.NewGormAuditLogRepository(db))

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-at-least-32-characters!!",
		AccessTokenExpiration: time.Hour,
		Issuer:                "shopstack-test",
	})
	token, _, err := jwtService.GenerateToken(auth.GenerateTokenInput{ActorID: uuid.New()})
	require.NoError(t, err)

	engine := gin.New()
	engine.Use(middleware.RequestID())

	NewRouter(engine, WithMiddleware(middleware.JWTAuth(jwtService))).
		Register(handler.NewInventoryHandler(inventoryService, 10)).
		Register(handler.NewWarehouseHandler(warehouseService)).
		Register(handler.NewAuditHandler(auditService)).
		Setup()

	return &testAPI{engine: engine, db: db, token: token}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func seedTestProduct(t *testing.T, db *gorm.DB) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Mechanical Keyboard", "87-key, brown switches", decimal.NewFromInt(89))
	require.NoError(t, err)
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/warehouses", nil)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_InventoryLifecycle(t *testing.T) {
	api := newTestAPI(t)
	product := seedTestProduct(t, api.db)

	w := api.do(t, http.MethodPost, "/api/v1/warehouses", gin.H{
		"name":    "North Depot",
		"address": "12 Harbor Street, Hamburg",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	warehouseID := decodeData(t, w)["id"].(string)

	w = api.do(t, http.MethodPost, "/api/v1/inventory", gin.H{
		"product_id":   product.ID.String(),
		"warehouse_id": warehouseID,
		"quantity":     40,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recordID := decodeData(t, w)["id"].(string)

	w = api.do(t, http.MethodGet, "/api/v1/inventory/"+recordID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(40), decodeData(t, w)["quantity"])

	w = api.do(t, http.MethodPost, "/api/v1/inventory/"+recordID+"/increase", gin.H{
		"amount": 15,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(55), decodeData(t, w)["quantity"])

	// The product mirror follows the record quantity.
	var storedProduct catalog.Product
	require.NoError(t, api.db.First(&storedProduct, "id = ?", product.ID).Error)
	assert.Equal(t, int64(55), storedProduct.Quantity)

	// A warehouse holding records cannot be deleted under the default guard.
	w = api.do(t, http.MethodDelete, "/api/v1/warehouses/"+warehouseID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CONTAINS_PRODUCTS")

	// Every successful mutation appended an audit entry.
	w = api.do(t, http.MethodGet, "/api/v1/audit-log", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var auditEnvelope struct {
		Data []map[string]any `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auditEnvelope))
	assert.Equal(t, int64(3), auditEnvelope.Meta.Total)
}

func TestAPI_TransferBetweenWarehouses(t *testing.T) {
	api := newTestAPI(t)
	product := seedTestProduct(t, api.db)

	createWarehouse := func(name string) string {
		w := api.do(t, http.MethodPost, "/api/v1/warehouses", gin.H{
			"name":    name,
			"address": "12 Harbor Street, Hamburg",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return decodeData(t, w)["id"].(string)
	}
	createRecord := func(warehouseID string, quantity int64) string {
		w := api.do(t, http.MethodPost, "/api/v1/inventory", gin.H{
			"product_id":   product.ID.String(),
			"warehouse_id": warehouseID,
			"quantity":     quantity,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		return decodeData(t, w)["id"].(string)
	}

	sourceID := createRecord(createWarehouse("North Depot"), 30)
	targetID := createRecord(createWarehouse("South Depot"), 5)

	w := api.do(t, http.MethodPost, "/api/v1/inventory/transfer", gin.H{
		"source_id":  sourceID,
		"target_id":  targetID,
		"product_id": product.ID.String(),
		"amount":     20,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeData(t, w)
	assert.Equal(t, float64(10), data["source_quantity"])
	assert.Equal(t, float64(25), data["target_quantity"])

	// More than available is refused with 400.
	w = api.do(t, http.MethodPost, "/api/v1/inventory/transfer", gin.H{
		"source_id":  sourceID,
		"target_id":  targetID,
		"product_id": product.ID.String(),
		"amount":     100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_QUANTITY")
}

func TestAPI_DeleteReturnsOKWithID(t *testing.T) {
	api := newTestAPI(t)
	product := seedTestProduct(t, api.db)

	w := api.do(t, http.MethodPost, "/api/v1/warehouses", gin.H{
		"name":    "North Depot",
		"address": "12 Harbor Street, Hamburg",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	warehouseID := decodeData(t, w)["id"].(string)

	w = api.do(t, http.MethodPost, "/api/v1/inventory", gin.H{
		"product_id":   product.ID.String(),
		"warehouse_id": warehouseID,
		"quantity":     0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recordID := decodeData(t, w)["id"].(string)

	w = api.do(t, http.MethodDelete, "/api/v1/inventory/"+recordID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, recordID, decodeData(t, w)["id"])

	w = api.do(t, http.MethodDelete, "/api/v1/warehouses/"+warehouseID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, warehouseID, decodeData(t, w)["id"])
}

func TestAPI_LowStockThresholdBinding(t *testing.T) {
	api := newTestAPI(t)
	product := seedTestProduct(t, api.db)

	w := api.do(t, http.MethodPost, "/api/v1/warehouses", gin.H{
		"name":    "North Depot",
		"address": "12 Harbor Street, Hamburg",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	warehouseID := decodeData(t, w)["id"].(string)

	w = api.do(t, http.MethodPost, "/api/v1/inventory", gin.H{
		"product_id":   product.ID.String(),
		"warehouse_id": warehouseID,
		"quantity":     3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recordID := decodeData(t, w)["id"].(string)

	// The configured default threshold of 10 picks up the record.
	w = api.do(t, http.MethodGet, "/api/v1/inventory/low-stock", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), recordID)

	// An explicit threshold below the quantity excludes it.
	w = api.do(t, http.MethodGet, "/api/v1/inventory/low-stock?threshold=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), recordID)

	w = api.do(t, http.MethodGet, "/api/v1/inventory/low-stock?threshold=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_ValidationFailuresReturn400(t *testing.T) {
	api := newTestAPI(t)

	// Name below the 5 character minimum.
	w := api.do(t, http.MethodPost, "/api/v1/warehouses", gin.H{
		"name":    "ND",
		"address": "12 Harbor Street, Hamburg",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/v1/inventory/%s", "not-a-uuid"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

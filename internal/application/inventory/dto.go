package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopstack/backend/internal/domain/inventory"
)

// InventoryRecordResponse represents an inventory record in API responses
type InventoryRecordResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   uuid.UUID  `json:"product_id"`
	WarehouseID uuid.UUID  `json:"warehouse_id"`
	Quantity    int64      `json:"quantity"`
	Status      string     `json:"status"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// CreateInventoryRequest represents a request to open a product's stock
// record in a warehouse
type CreateInventoryRequest struct {
	ProductID   uuid.UUID `json:"product_id" binding:"required"`
	WarehouseID uuid.UUID `json:"warehouse_id" binding:"required"`
	Quantity    int64     `json:"quantity" binding:"min=0"`
}

// IncreaseQuantityRequest represents a request to add stock to an
// existing inventory record
type IncreaseQuantityRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// TransferQuantityRequest represents a request to move stock of one
// product between two inventory records
type TransferQuantityRequest struct {
	SourceID  uuid.UUID `json:"source_id" binding:"required"`
	TargetID  uuid.UUID `json:"target_id" binding:"required"`
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Amount    int64     `json:"amount" binding:"required"`
}

// TransferQuantityResponse reports both legs of a completed transfer
type TransferQuantityResponse struct {
	SourceID       uuid.UUID `json:"source_id"`
	TargetID       uuid.UUID `json:"target_id"`
	ProductID      uuid.UUID `json:"product_id"`
	Amount         int64     `json:"amount"`
	SourceQuantity int64     `json:"source_quantity"`
	TargetQuantity int64     `json:"target_quantity"`
}

// LowStockFilter represents filter options for the low-stock report.
// A nil threshold means the configured default applies.
type LowStockFilter struct {
	Threshold *int64 `form:"threshold" binding:"omitempty,min=0"`
}

// ToRecordResponse converts a domain inventory record to its API shape
func ToRecordResponse(r *inventory.InventoryRecord) *InventoryRecordResponse {
	return &InventoryRecordResponse{
		ID:          r.ID,
		ProductID:   r.ProductID,
		WarehouseID: r.WarehouseID,
		Quantity:    r.Quantity,
		Status:      string(r.Lifecycle.State),
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		DeletedAt:   r.Lifecycle.DeletedAt,
	}
}

// ToRecordResponses converts a slice of domain records
func ToRecordResponses(records []inventory.InventoryRecord) []InventoryRecordResponse {
	out := make([]InventoryRecordResponse, 0, len(records))
	for i := range records {
		out = append(out, *ToRecordResponse(&records[i]))
	}
	return out
}

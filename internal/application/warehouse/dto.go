package warehouse

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopstack/backend/internal/domain/warehouse"
)

// WarehouseResponse represents a warehouse in API responses
type WarehouseResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Address   string     `json:"address"`
	Phone     string     `json:"phone,omitempty"`
	Status    string     `json:"status"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// CreateWarehouseRequest represents a request to register a warehouse
type CreateWarehouseRequest struct {
	Name    string `json:"name" binding:"required,min=5,max=20"`
	Address string `json:"address" binding:"required,min=10,max=50"`
	Phone   string `json:"phone"`
}

// UpdateWarehouseRequest represents a partial warehouse update. Nil
// fields are left untouched; present fields are applied in order and the
// update stops at the first field that fails validation.
type UpdateWarehouseRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

// ListFilter represents filter options for the warehouse list
type ListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TransferInventoryRequest represents a request to move every inventory
// record from one warehouse to another
type TransferInventoryRequest struct {
	TargetWarehouseID uuid.UUID `json:"target_warehouse_id" binding:"required"`
}

// TransferInventoryResponse reports the outcome of a bulk move
type TransferInventoryResponse struct {
	SourceWarehouseID uuid.UUID `json:"source_warehouse_id"`
	TargetWarehouseID uuid.UUID `json:"target_warehouse_id"`
	RecordsMoved      int64     `json:"records_moved"`
}

// ToWarehouseResponse converts a domain warehouse to its API shape
func ToWarehouseResponse(w *warehouse.Warehouse) *WarehouseResponse {
	return &WarehouseResponse{
		ID:        w.ID,
		Name:      w.Name,
		Address:   w.Address,
		Phone:     w.Phone,
		Status:    string(w.Lifecycle.State),
		Version:   w.Version,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
		DeletedAt: w.Lifecycle.DeletedAt,
	}
}

// ToWarehouseResponses converts a slice of domain warehouses
func ToWarehouseResponses(warehouses []warehouse.Warehouse) []WarehouseResponse {
	out := make([]WarehouseResponse, 0, len(warehouses))
	for i := range warehouses {
		out = append(out, *ToWarehouseResponse(&warehouses[i]))
	}
	return out
}

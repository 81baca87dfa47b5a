package inventory

import (
	"github.com/google/uuid"
	"github.com/shopstack/backend/internal/domain/shared"
)

// InventoryRecord is the ledger line tying one product to one warehouse
// with a non-negative quantity. The composite business identifier is
// (ProductID, WarehouseID): at most one non-deleted record may exist per
// pair.
type InventoryRecord struct {
	shared.BaseAggregateRoot
	shared.Lifecycle `gorm:"embedded"`
	ProductID        uuid.UUID `gorm:"type:uuid;not null;index"`
	WarehouseID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity         int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// NewInventoryRecord creates a new active ledger line
func NewInventoryRecord(productID, warehouseID uuid.UUID, quantity int64) (*InventoryRecord, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	return &InventoryRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Lifecycle:         shared.NewLifecycle(),
		ProductID:         productID,
		WarehouseID:       warehouseID,
		Quantity:          quantity,
	}, nil
}

// Increase adds delta units to the record. Delta must be positive and the
// record must not be deleted.
func (r *InventoryRecord) Increase(delta int64) error {
	if delta <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Increase amount must be positive")
	}
	if r.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Cannot increase quantity of a deleted inventory record")
	}
	r.Quantity += delta
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Receive adds amount units as the incoming leg of a transfer
func (r *InventoryRecord) Receive(amount int64) error {
	return r.Increase(amount)
}

// Deduct removes amount units, refusing to go negative
func (r *InventoryRecord) Deduct(amount int64) error {
	if amount <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Deduct amount must be positive")
	}
	if r.IsDeleted() {
		return shared.NewDomainError("INVALID_STATE", "Cannot deduct quantity from a deleted inventory record")
	}
	if r.Quantity < amount {
		return shared.ErrInsufficientQuantity
	}
	r.Quantity -= amount
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Delete soft-deletes the record. Only an empty record may be deleted.
func (r *InventoryRecord) Delete() error {
	if r.Quantity != 0 {
		return shared.NewDomainError("CONTAINS_STOCK", "Cannot delete inventory containing stock")
	}
	r.MarkDeleted()
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Undelete restores a soft-deleted record
func (r *InventoryRecord) Undelete() {
	r.Lifecycle.Restore()
	r.Touch()
	r.IncrementVersion()
}

// MoveTo re-parents the record to another warehouse, keeping its identity
// and quantity. Used by the bulk warehouse transfer.
func (r *InventoryRecord) MoveTo(warehouseID uuid.UUID) error {
	if warehouseID == uuid.Nil {
		return shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if warehouseID == r.WarehouseID {
		return shared.NewDomainError("SAME_WAREHOUSE", "Record already belongs to this warehouse")
	}
	r.WarehouseID = warehouseID
	r.Touch()
	r.IncrementVersion()
	return nil
}

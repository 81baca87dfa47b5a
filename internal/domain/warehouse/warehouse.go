package warehouse

import (
	"strings"

	"github.com/shopstack/backend/internal/domain/shared"
)

// Name and address length bounds enforced on creation and update
const (
	NameMinLen    = 5
	NameMaxLen    = 20
	AddressMinLen = 10
	AddressMaxLen = 50
)

// Warehouse is the aggregate root owning inventory records. It is never
// hard-deleted: deletion is a lifecycle transition guarded by the
// inventory it still owns.
type Warehouse struct {
	shared.BaseAggregateRoot
	shared.Lifecycle `gorm:"embedded"`
	Name             string `gorm:"type:varchar(20);not null"`
	Address          string `gorm:"type:varchar(50);not null"`
	Phone            string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new active warehouse
func NewWarehouse(name, address, phone string) (*Warehouse, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	return &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Lifecycle:         shared.NewLifecycle(),
		Name:              strings.TrimSpace(name),
		Address:           strings.TrimSpace(address),
		Phone:             strings.TrimSpace(phone),
	}, nil
}

// Rename changes the warehouse name. The new name must differ from the
// current one and satisfy the length bounds.
func (w *Warehouse) Rename(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if strings.EqualFold(strings.TrimSpace(name), w.Name) {
		return shared.NewDomainError("SAME_NAME", "New name is identical to the current name")
	}
	w.Name = strings.TrimSpace(name)
	w.Touch()
	w.IncrementVersion()
	return nil
}

// Relocate changes the warehouse address
func (w *Warehouse) Relocate(address string) error {
	if err := ValidateAddress(address); err != nil {
		return err
	}
	w.Address = strings.TrimSpace(address)
	w.Touch()
	w.IncrementVersion()
	return nil
}

// SetPhone changes the warehouse contact phone
func (w *Warehouse) SetPhone(phone string) {
	w.Phone = strings.TrimSpace(phone)
	w.Touch()
	w.IncrementVersion()
}

// Delete soft-deletes the warehouse. The inventory guard is enforced by
// the application service, which sees the owned records.
func (w *Warehouse) Delete() {
	w.MarkDeleted()
	w.Touch()
	w.IncrementVersion()
}

// Undelete restores a soft-deleted warehouse
func (w *Warehouse) Undelete() {
	w.Lifecycle.Restore()
	w.Touch()
	w.IncrementVersion()
}

// ValidateName checks the warehouse name length bounds
func ValidateName(name string) error {
	n := len(strings.TrimSpace(name))
	if n < NameMinLen || n > NameMaxLen {
		return shared.NewDomainError("INVALID_NAME", "Warehouse name must be between 5 and 20 characters")
	}
	return nil
}

// ValidateAddress checks the warehouse address length bounds
func ValidateAddress(address string) error {
	n := len(strings.TrimSpace(address))
	if n < AddressMinLen || n > AddressMaxLen {
		return shared.NewDomainError("INVALID_ADDRESS", "Warehouse address must be between 10 and 50 characters")
	}
	return nil
}

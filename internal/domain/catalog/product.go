package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shopstack/backend/internal/domain/shared"
)

// Product is the catalog aggregate referenced by inventory records.
// The ledger core does not own the product lifecycle; it only checks
// existence and maintains the denormalized Quantity mirror.
type Product struct {
	shared.BaseAggregateRoot
	shared.Lifecycle `gorm:"embedded"`
	Name             string          `gorm:"type:varchar(200);not null"`
	Description      string          `gorm:"type:text"`
	Price            decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	// Quantity mirrors the sum of the product's non-deleted inventory
	// record quantities. It is recomputed inside the same transaction as
	// every ledger mutation that touches one of those records.
	Quantity int64 `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with zero mirrored quantity
func NewProduct(name, description string, price decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Lifecycle:         shared.NewLifecycle(),
		Name:              name,
		Description:       description,
		Price:             price,
	}, nil
}

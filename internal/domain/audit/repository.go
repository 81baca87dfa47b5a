package audit

import (
	"context"

	"github.com/shopstack/backend/internal/domain/shared"
)

// Repository is the append-only persistence port for the audit log.
// Create must run inside the caller's open transaction so the business
// mutation and its audit trail commit or roll back together; a failed
// append is fatal to the whole operation.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	FindAll(ctx context.Context, filter shared.Filter) ([]Entry, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

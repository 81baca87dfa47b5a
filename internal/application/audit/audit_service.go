// Package audit exposes the read side of the audit log. Entries are
// written by the inventory and warehouse services inside their own
// transactions; this service only queries them.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shopstack/backend/internal/domain/audit"
	"github.com/shopstack/backend/internal/domain/shared"
)

// EntryResponse represents an audit entry in API responses
type EntryResponse struct {
	ID           uuid.UUID `json:"id"`
	ActorID      uuid.UUID `json:"actor_id"`
	Operation    string    `json:"operation"`
	TargetItemID uuid.UUID `json:"target_item_id"`
	Description  string    `json:"description"`
	Timestamp    time.Time `json:"timestamp"`
}

// ListFilter represents filter options for the audit log
type ListFilter struct {
	ActorID   *uuid.UUID `form:"actor_id"`
	Operation string     `form:"operation" binding:"omitempty,oneof=add update delete undo_delete"`
	TargetID  *uuid.UUID `form:"target_id"`
	From      *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=100"`
}

// Service queries the audit log
type Service struct {
	entries audit.Repository
}

// NewService creates a new audit Service
func NewService(entries audit.Repository) *Service {
	return &Service{entries: entries}
}

// List pages through audit entries, newest first
func (s *Service) List(ctx context.Context, filter ListFilter) (*shared.Paginated[EntryResponse], error) {
	f := shared.DefaultFilter()
	f.OrderBy = "timestamp"
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.ActorID != nil {
		f.Filters["actor_id"] = *filter.ActorID
	}
	if filter.Operation != "" {
		if !audit.OperationKind(filter.Operation).IsValid() {
			return nil, shared.NewDomainError("INVALID_OPERATION", "Unknown audit operation kind")
		}
		f.Filters["operation"] = filter.Operation
	}
	if filter.TargetID != nil {
		f.Filters["target_item_id"] = *filter.TargetID
	}
	if filter.From != nil {
		f.Filters["timestamp_from"] = *filter.From
	}
	if filter.To != nil {
		f.Filters["timestamp_to"] = *filter.To
	}

	entries, err := s.entries.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.entries.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, EntryResponse{
			ID:           e.ID,
			ActorID:      e.ActorID,
			Operation:    string(e.Operation),
			TargetItemID: e.TargetItemID,
			Description:  e.Description,
			Timestamp:    e.Timestamp,
		})
	}

	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopstack/backend/internal/domain/shared"
)

// OperationKind classifies a state-changing admin operation
type OperationKind string

const (
	OperationAdd        OperationKind = "add"
	OperationUpdate     OperationKind = "update"
	OperationDelete     OperationKind = "delete"
	OperationUndoDelete OperationKind = "undo_delete"
)

// IsValid reports whether the kind is a known operation kind
func (k OperationKind) IsValid() bool {
	switch k {
	case OperationAdd, OperationUpdate, OperationDelete, OperationUndoDelete:
		return true
	}
	return false
}

// Entry is an immutable record of who did what to which entity and when.
// Entries are written inside the transaction of the mutation they
// describe and are never updated or deleted afterwards.
type Entry struct {
	ID           uuid.UUID     `gorm:"type:uuid;primary_key"`
	ActorID      uuid.UUID     `gorm:"type:uuid;not null;index"`
	Operation    OperationKind `gorm:"type:varchar(20);not null;index"`
	TargetItemID uuid.UUID     `gorm:"type:uuid;not null;index"`
	Description  string        `gorm:"type:text;not null"`
	Timestamp    time.Time     `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "audit_log"
}

// NewEntry creates a new audit log entry
func NewEntry(actorID uuid.UUID, operation OperationKind, targetItemID uuid.UUID, description string) (*Entry, error) {
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Acting user ID cannot be empty")
	}
	if !operation.IsValid() {
		return nil, shared.NewDomainError("INVALID_OPERATION", "Invalid audit operation kind")
	}
	if targetItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TARGET", "Target item ID cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Audit description cannot be empty")
	}

	return &Entry{
		ID:           uuid.New(),
		ActorID:      actorID,
		Operation:    operation,
		TargetItemID: targetItemID,
		Description:  description,
		Timestamp:    time.Now(),
	}, nil
}

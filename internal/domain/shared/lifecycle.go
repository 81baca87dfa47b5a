package shared

import "time"

// LifecycleState is the soft-delete state of an entity.
// Entities are never hard-deleted; they transition between Active and
// Deleted, and queries filter on the state rather than on a timestamp.
type LifecycleState string

const (
	LifecycleActive  LifecycleState = "active"
	LifecycleDeleted LifecycleState = "deleted"
)

// IsValid reports whether the state is a known lifecycle state
func (s LifecycleState) IsValid() bool {
	return s == LifecycleActive || s == LifecycleDeleted
}

// Lifecycle carries the soft-delete state plus the moment the entity
// was marked deleted. DeletedAt is informational; State is authoritative.
type Lifecycle struct {
	State     LifecycleState `gorm:"type:varchar(20);not null;default:'active';index"`
	DeletedAt *time.Time
}

// NewLifecycle returns an active lifecycle
func NewLifecycle() Lifecycle {
	return Lifecycle{State: LifecycleActive}
}

// IsDeleted reports whether the entity has been soft-deleted
func (l *Lifecycle) IsDeleted() bool {
	return l.State == LifecycleDeleted
}

// IsActive reports whether the entity is live
func (l *Lifecycle) IsActive() bool {
	return l.State == LifecycleActive
}

// MarkDeleted transitions the entity to the deleted state.
// Deleting an already-deleted entity is a no-op.
func (l *Lifecycle) MarkDeleted() {
	if l.IsDeleted() {
		return
	}
	now := time.Now()
	l.State = LifecycleDeleted
	l.DeletedAt = &now
}

// Restore transitions the entity back to the active state.
// Restoring an active entity is a no-op.
func (l *Lifecycle) Restore() {
	if l.IsActive() {
		return
	}
	l.State = LifecycleActive
	l.DeletedAt = nil
}

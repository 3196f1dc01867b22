package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingSync is a durable record of a failed push, replayed by the offline
// queue. It references its target entity weakly, by (type, id): the entity is
// looked up at replay time and may no longer exist.
type PendingSync struct {
	ID           string
	EntityType   Entity
	EntityID     string
	Operation    Operation
	CreatedAt    time.Time
	RetryCount   int
	LastAttempt  *time.Time
	ErrorMessage *string
}

// NewPendingSync constructs a fresh queue record with a zero retry count.
func NewPendingSync(entityType Entity, entityID string, op Operation) *PendingSync {
	return &PendingSync{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   NormalizeID(entityID),
		Operation:  op,
		CreatedAt:  NormalizeTime(time.Now()),
	}
}

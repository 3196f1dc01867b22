package pending

import (
	"context"

	"familystock/internal/models"
)

// Repository describes persistence operations for pending sync records,
// the durable storage behind the offline queue.
type Repository interface {
	// Insert durably persists a new record.
	Insert(ctx context.Context, rec *models.PendingSync) error

	// ListOldestFirst returns every record ordered by creation time
	// ascending, so replay preserves per-entity FIFO order.
	ListOldestFirst(ctx context.Context) ([]models.PendingSync, error)

	// Update persists the mutable fields of a record: retry count,
	// last attempt, error message.
	Update(ctx context.Context, rec *models.PendingSync) error

	// Delete removes a record by id.
	Delete(ctx context.Context, id string) error

	// Count returns the number of queued records.
	Count(ctx context.Context) (int, error)

	// DeleteExhausted removes every record whose retry count has reached cap.
	DeleteExhausted(ctx context.Context, cap int) error
}

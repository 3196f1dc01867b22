package receipts

import (
	"context"

	"familystock/internal/models"
)

// Repository describes persistence operations for receipts and their items.
// The parent owns its children: an upsert replaces the item collection with
// exactly the incoming set, and a delete cascades to the items.
type Repository interface {
	// Upsert inserts or fully replaces a receipt by id, then reconciles its
	// item collection against receipt.Items: local items absent from the
	// incoming set are removed, the rest are updated or created in order.
	Upsert(ctx context.Context, receipt *models.Receipt) error

	// GetByID returns a receipt with its items in insertion order,
	// or shared.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Receipt, error)

	// List returns all receipts, newest purchase first, items included.
	List(ctx context.Context) ([]models.Receipt, error)

	// Delete removes a receipt and all of its items.
	Delete(ctx context.Context, id string) error
}

package shopping

import (
	"context"

	"familystock/internal/models"
)

// Repository describes persistence operations for shopping-list entries.
type Repository interface {
	// Upsert inserts a new entry or fully replaces an existing one by id.
	Upsert(ctx context.Context, entry *models.ShoppingEntry) error

	// GetByID returns an entry by its normalized id, or shared.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.ShoppingEntry, error)

	// List returns entries that are not soft-deleted, oldest first.
	List(ctx context.Context) ([]models.ShoppingEntry, error)

	// Delete removes an entry. The normal retirement path is the is_deleted
	// flag; this is only for the explicit delete flow.
	Delete(ctx context.Context, id string) error
}

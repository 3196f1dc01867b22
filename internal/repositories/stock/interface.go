package stock

import (
	"context"

	"familystock/internal/models"
)

// Repository describes persistence operations for stock items.
// Implementations are backed by the local SQLite database.
type Repository interface {
	// Upsert inserts a new item or fully replaces an existing one by id.
	Upsert(ctx context.Context, item *models.StockItem) error

	// GetByID returns an item by its normalized id, or shared.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.StockItem, error)

	// List returns items ordered by name. Archived items are included only
	// when includeArchived is set.
	List(ctx context.Context, includeArchived bool) ([]models.StockItem, error)

	// Delete removes an item. Used only by the explicit delete flow;
	// archival is the normal way to retire an item.
	Delete(ctx context.Context, id string) error
}

package remote

import (
	"context"
	"time"

	"familystock/internal/wire"
)

// StockRepository is the remote side of stock item sync.
type StockRepository interface {
	// FetchSince returns the caller's rows with updated_at >= since,
	// ordered ascending. A nil since fetches everything.
	FetchSince(ctx context.Context, since *time.Time) ([]wire.StockItem, error)

	// Upsert writes the row remotely, overwriting its owner id with the
	// authenticated user and resolving against a newer stored version.
	// The saved representation is returned.
	Upsert(ctx context.Context, item wire.StockItem) (wire.StockItem, error)

	Delete(ctx context.Context, id string) error
}

// ShoppingRepository is the remote side of shopping entry sync.
type ShoppingRepository interface {
	FetchSince(ctx context.Context, since *time.Time) ([]wire.ShoppingEntry, error)
	Upsert(ctx context.Context, entry wire.ShoppingEntry) (wire.ShoppingEntry, error)
	Delete(ctx context.Context, id string) error
}

// ReceiptWithItems pairs a receipt row with its child item rows.
type ReceiptWithItems struct {
	Receipt wire.Receipt
	Items   []wire.ReceiptItem
}

// ReceiptRepository is the remote side of receipt sync. Items ride with
// their parent receipt; they are never synced independently.
type ReceiptRepository interface {
	FetchSince(ctx context.Context, since *time.Time) ([]ReceiptWithItems, error)
	Upsert(ctx context.Context, receipt wire.Receipt, items []wire.ReceiptItem) (wire.Receipt, error)
	Delete(ctx context.Context, id string) error
}

// Pinger reports remote reachability, for the online watcher.
type Pinger interface {
	Ping(ctx context.Context) error
}

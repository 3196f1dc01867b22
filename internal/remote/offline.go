package remote

import (
	"context"
	"time"

	"familystock/internal/shared"
	"familystock/internal/wire"
)

// Disabled is the remote side of offline-only mode: every operation reports
// ErrNotAuthenticated, which the sync layer treats as "do not attempt, do not
// queue". Local data stays device-only.
type Disabled struct{}

func NewDisabled() Disabled { return Disabled{} }

func (Disabled) FetchSince(ctx context.Context, since *time.Time) ([]wire.StockItem, error) {
	return nil, shared.ErrNotAuthenticated
}

func (Disabled) Upsert(ctx context.Context, item wire.StockItem) (wire.StockItem, error) {
	return wire.StockItem{}, shared.ErrNotAuthenticated
}

func (Disabled) Delete(ctx context.Context, id string) error {
	return shared.ErrNotAuthenticated
}

func (Disabled) Ping(ctx context.Context) error {
	return shared.ErrServerUnavailable
}

// DisabledShopping and DisabledReceipts mirror Disabled for the other two
// entity types.
type DisabledShopping struct{ Disabled }

func (DisabledShopping) FetchSince(ctx context.Context, since *time.Time) ([]wire.ShoppingEntry, error) {
	return nil, shared.ErrNotAuthenticated
}

func (DisabledShopping) Upsert(ctx context.Context, entry wire.ShoppingEntry) (wire.ShoppingEntry, error) {
	return wire.ShoppingEntry{}, shared.ErrNotAuthenticated
}

type DisabledReceipts struct{ Disabled }

func (DisabledReceipts) FetchSince(ctx context.Context, since *time.Time) ([]ReceiptWithItems, error) {
	return nil, shared.ErrNotAuthenticated
}

func (DisabledReceipts) Upsert(ctx context.Context, receipt wire.Receipt, items []wire.ReceiptItem) (wire.Receipt, error) {
	return wire.Receipt{}, shared.ErrNotAuthenticated
}

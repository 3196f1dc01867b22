package remote

import (
	"context"
	"net/url"
	"time"

	"familystock/internal/logging"
	"familystock/internal/session"
	"familystock/internal/sync/conflict"
	"familystock/internal/wire"
)

const (
	receiptsTable     = "receipts"
	receiptItemsTable = "receipt_items"
)

type receiptRepository struct {
	client   *Client
	creds    session.Credentials
	resolver conflict.Resolver
	log      logging.Logger
}

func NewReceiptRepository(client *Client, creds session.Credentials, log logging.Logger) ReceiptRepository {
	return &receiptRepository{
		client:   client,
		creds:    creds,
		resolver: conflict.NewResolver(conflict.LastWriteWins),
		log:      log,
	}
}

// FetchSince returns the caller's receipts with their items. The item table
// carries no owner column, so all item rows are fetched and filtered here by
// the fetched receipt id set before anything is returned.
func (r *receiptRepository) FetchSince(ctx context.Context, since *time.Time) ([]ReceiptWithItems, error) {
	userID, err := r.creds.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	var receipts []wire.Receipt
	if err := r.client.Get(ctx, receiptsTable, selectQuery(userID, "timestamp", since), &receipts); err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("select", "*")
	var items []wire.ReceiptItem
	if err := r.client.Get(ctx, receiptItemsTable, q, &items); err != nil {
		return nil, err
	}

	byReceipt := make(map[string][]wire.ReceiptItem, len(receipts))
	for _, rec := range receipts {
		byReceipt[rec.ID] = nil
	}
	for _, it := range items {
		if _, mine := byReceipt[it.ReceiptID]; mine {
			byReceipt[it.ReceiptID] = append(byReceipt[it.ReceiptID], it)
		}
	}

	out := make([]ReceiptWithItems, 0, len(receipts))
	for _, rec := range receipts {
		out = append(out, ReceiptWithItems{Receipt: rec, Items: byReceipt[rec.ID]})
	}
	return out, nil
}

// Upsert saves the receipt row first, then each item. Items carry no
// revision of their own; the parent timestamp governs, so item writes are a
// plain existence check followed by insert or update.
func (r *receiptRepository) Upsert(ctx context.Context, receipt wire.Receipt, items []wire.ReceiptItem) (wire.Receipt, error) {
	userID, err := r.creds.CurrentUserID(ctx)
	if err != nil {
		return wire.Receipt{}, err
	}
	receipt.UserID = userID

	existing, found, err := fetchByID[wire.Receipt](ctx, r.client, receiptsTable, receipt.ID)
	if err != nil {
		return wire.Receipt{}, err
	}
	saved, err := saveRow(ctx, r.client, r.resolver, r.log, receiptsTable, receipt.ID, receipt, existing, found)
	if err != nil {
		return wire.Receipt{}, err
	}

	for _, item := range items {
		item.ReceiptID = receipt.ID
		if err := r.saveItem(ctx, item); err != nil {
			return wire.Receipt{}, err
		}
	}
	return saved, nil
}

func (r *receiptRepository) saveItem(ctx context.Context, item wire.ReceiptItem) error {
	_, found, err := fetchByID[wire.ReceiptItem](ctx, r.client, receiptItemsTable, item.ID)
	if err != nil {
		return err
	}

	if !found {
		var created []wire.ReceiptItem
		return r.client.Post(ctx, receiptItemsTable, item, &created)
	}

	q := url.Values{}
	q.Set("id", "eq."+item.ID)
	var updated []wire.ReceiptItem
	return r.client.Patch(ctx, receiptItemsTable, q, item, &updated)
}

// Delete removes the items before the parent row, so a failure in between
// never leaves orphaned children behind a deleted receipt.
func (r *receiptRepository) Delete(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("receipt_id", "eq."+id)
	if err := r.client.Delete(ctx, receiptItemsTable, q); err != nil {
		return err
	}

	q = url.Values{}
	q.Set("id", "eq."+id)
	return r.client.Delete(ctx, receiptsTable, q)
}

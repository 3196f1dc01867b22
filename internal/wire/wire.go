// Package wire defines the row representations exchanged with the PostgREST
// backend. Field names and json tags mirror the remote table columns.
//
// Timestamps travel as ISO-8601; only second precision is guaranteed to
// survive a round trip, so producers truncate before encoding.
package wire

import "time"

// Row is implemented by every synced row type and exposes the timestamp
// used as the conflict-resolution axis.
type Row interface {
	Revision() time.Time
}

// StockItem is a row of the stock_items table.
type StockItem struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Name              string    `json:"name"`
	Category          *string   `json:"category"`
	UpdatedAt         time.Time `json:"updated_at"`
	IsArchived        bool      `json:"is_archived"`
	QuantityInStock   float64   `json:"quantity_in_stock"`
	QuantityFullStock float64   `json:"quantity_full_stock"`
}

func (s StockItem) Revision() time.Time { return s.UpdatedAt }

// ShoppingEntry is a row of the shopping_entries table.
type ShoppingEntry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ItemID          string    `json:"item_id"`
	DesiredQuantity float64   `json:"desired_quantity"`
	Unit            string    `json:"unit"`
	Note            *string   `json:"note"`
	UpdatedAt       time.Time `json:"updated_at"`
	IsDeleted       bool      `json:"is_deleted"`
	IsCompleted     bool      `json:"is_completed"`
}

func (s ShoppingEntry) Revision() time.Time { return s.UpdatedAt }

// Receipt is a row of the receipts table. Receipts carry no updated_at;
// the purchase timestamp plays that role during conflict resolution.
type Receipt struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ShopName  string    `json:"shop_name"`
	Timestamp time.Time `json:"timestamp"`
	Amount    *float64  `json:"amount"`
}

func (r Receipt) Revision() time.Time { return r.Timestamp }

// ReceiptItem is a row of the receipt_items table. Items ride with their
// parent receipt and have no revision of their own.
type ReceiptItem struct {
	ID        string  `json:"id"`
	ReceiptID string  `json:"receipt_id"`
	ItemName  string  `json:"item_name"`
	Quantity  float64 `json:"quantity"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"familystock/internal/wire"
)

// Receipt records a purchase and owns an ordered collection of line items.
// The purchase timestamp doubles as the revision for conflict resolution.
// Deleting a receipt cascades to its items.
type Receipt struct {
	ID        string
	UserID    string
	ShopName  string
	Timestamp time.Time
	Amount    *float64
	Items     []ReceiptItem
}

// ReceiptItem is one line of a receipt. Items carry no revision of their own;
// they ride with their parent. Position preserves payload order.
type ReceiptItem struct {
	ID        string
	ReceiptID string
	ItemName  string
	Quantity  float64
	Position  int
}

// NewReceipt constructs a locally created receipt.
func NewReceipt(userID, shopName string, amount *float64) *Receipt {
	return &Receipt{
		ID:        uuid.NewString(),
		UserID:    userID,
		ShopName:  shopName,
		Timestamp: NormalizeTime(time.Now()),
		Amount:    amount,
	}
}

// AddItem appends a new line item at the end of the receipt.
func (r *Receipt) AddItem(name string, quantity float64) {
	r.Items = append(r.Items, ReceiptItem{
		ID:        uuid.NewString(),
		ReceiptID: r.ID,
		ItemName:  name,
		Quantity:  quantity,
		Position:  len(r.Items),
	})
}

// ReceiptFromWire builds a local receipt, with items, from wire rows.
func ReceiptFromWire(row wire.Receipt, items []wire.ReceiptItem) *Receipt {
	r := &Receipt{}
	r.ApplyWire(row, items)
	return r
}

// ApplyWire overwrites the receipt's fields and replaces its item collection
// with exactly the incoming set: items absent from the payload are dropped,
// matching items are updated in payload order.
func (r *Receipt) ApplyWire(row wire.Receipt, items []wire.ReceiptItem) {
	r.ID = NormalizeID(row.ID)
	r.UserID = row.UserID
	r.ShopName = row.ShopName
	r.Timestamp = NormalizeTime(row.Timestamp)
	r.Amount = row.Amount

	replaced := make([]ReceiptItem, 0, len(items))
	for i, it := range items {
		replaced = append(replaced, ReceiptItem{
			ID:        NormalizeID(it.ID),
			ReceiptID: r.ID,
			ItemName:  it.ItemName,
			Quantity:  it.Quantity,
			Position:  i,
		})
	}
	r.Items = replaced
}

// ToWire projects the receipt row to its wire shape. Item Position is local
// bookkeeping and is not wire-representable.
func (r *Receipt) ToWire() wire.Receipt {
	return wire.Receipt{
		ID:        r.ID,
		UserID:    r.UserID,
		ShopName:  r.ShopName,
		Timestamp: NormalizeTime(r.Timestamp),
		Amount:    r.Amount,
	}
}

// ItemsToWire projects the receipt's items, in insertion order.
func (r *Receipt) ItemsToWire() []wire.ReceiptItem {
	rows := make([]wire.ReceiptItem, 0, len(r.Items))
	for _, it := range r.Items {
		rows = append(rows, wire.ReceiptItem{
			ID:        it.ID,
			ReceiptID: r.ID,
			ItemName:  it.ItemName,
			Quantity:  it.Quantity,
		})
	}
	return rows
}

package models

import (
	"time"

	"github.com/google/uuid"

	"familystock/internal/wire"
)

// ShoppingEntry is a line on the shopping list, referencing a stock item by id.
// Entries are soft-deleted and completed via flags, never removed locally
// outside the explicit delete flow.
type ShoppingEntry struct {
	ID              string
	UserID          string
	ItemID          string
	DesiredQuantity float64
	Unit            string
	Note            *string
	UpdatedAt       time.Time
	IsDeleted       bool
	IsCompleted     bool
}

// NewShoppingEntry constructs a locally created entry for the given item.
func NewShoppingEntry(userID, itemID string, quantity float64, unit string) *ShoppingEntry {
	if unit == "" {
		unit = "pcs"
	}
	return &ShoppingEntry{
		ID:              uuid.NewString(),
		UserID:          userID,
		ItemID:          NormalizeID(itemID),
		DesiredQuantity: quantity,
		Unit:            unit,
		UpdatedAt:       NormalizeTime(time.Now()),
	}
}

// ShoppingEntryFromWire builds a local entry from a wire row.
func ShoppingEntryFromWire(row wire.ShoppingEntry) *ShoppingEntry {
	e := &ShoppingEntry{}
	e.ApplyWire(row)
	return e
}

// ApplyWire overwrites every mutable field from the wire row. The item_id
// foreign key is normalized along with the entry's own id.
func (e *ShoppingEntry) ApplyWire(row wire.ShoppingEntry) {
	e.ID = NormalizeID(row.ID)
	e.UserID = row.UserID
	e.ItemID = NormalizeID(row.ItemID)
	e.DesiredQuantity = row.DesiredQuantity
	e.Unit = row.Unit
	e.Note = row.Note
	e.UpdatedAt = NormalizeTime(row.UpdatedAt)
	e.IsDeleted = row.IsDeleted
	e.IsCompleted = row.IsCompleted
}

// ToWire projects the entry to its wire shape.
func (e *ShoppingEntry) ToWire() wire.ShoppingEntry {
	return wire.ShoppingEntry{
		ID:              e.ID,
		UserID:          e.UserID,
		ItemID:          e.ItemID,
		DesiredQuantity: e.DesiredQuantity,
		Unit:            e.Unit,
		Note:            e.Note,
		UpdatedAt:       NormalizeTime(e.UpdatedAt),
		IsDeleted:       e.IsDeleted,
		IsCompleted:     e.IsCompleted,
	}
}

// Touch stamps the entry as modified now.
func (e *ShoppingEntry) Touch() {
	e.UpdatedAt = NormalizeTime(time.Now())
}

package models

import (
	"time"

	"github.com/google/uuid"

	"familystock/internal/wire"
)

// StockItem is a pantry item with current and full stock quantities.
type StockItem struct {
	ID                string
	UserID            string
	Name              string
	Category          *string
	UpdatedAt         time.Time
	IsArchived        bool
	QuantityInStock   float64
	QuantityFullStock float64
}

// NewStockItem constructs a locally created stock item owned by userID.
func NewStockItem(userID, name string, category *string) *StockItem {
	return &StockItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Category:  category,
		UpdatedAt: NormalizeTime(time.Now()),
	}
}

// StockItemFromWire builds a local stock item from a wire row,
// normalizing identity and revision.
func StockItemFromWire(row wire.StockItem) *StockItem {
	s := &StockItem{}
	s.ApplyWire(row)
	return s
}

// ApplyWire overwrites every mutable field from the wire row. This is a full
// field-by-field replace, not a merge.
func (s *StockItem) ApplyWire(row wire.StockItem) {
	s.ID = NormalizeID(row.ID)
	s.UserID = row.UserID
	s.Name = row.Name
	s.Category = row.Category
	s.UpdatedAt = NormalizeTime(row.UpdatedAt)
	s.IsArchived = row.IsArchived
	s.QuantityInStock = row.QuantityInStock
	s.QuantityFullStock = row.QuantityFullStock
}

// ToWire projects the item to its wire shape. Pure; no side effects.
func (s *StockItem) ToWire() wire.StockItem {
	return wire.StockItem{
		ID:                s.ID,
		UserID:            s.UserID,
		Name:              s.Name,
		Category:          s.Category,
		UpdatedAt:         NormalizeTime(s.UpdatedAt),
		IsArchived:        s.IsArchived,
		QuantityInStock:   s.QuantityInStock,
		QuantityFullStock: s.QuantityFullStock,
	}
}

// Touch stamps the item as modified now.
func (s *StockItem) Touch() {
	s.UpdatedAt = NormalizeTime(time.Now())
}

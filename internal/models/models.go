// Package models defines the locally persisted entities of familystock and
// their mapping to and from the wire representation.
//
// Identity is a globally unique string id, normalized to lowercase so that
// remote-generated and locally-generated ids compare equal. Revision
// timestamps are kept in UTC at second precision, matching what survives an
// ISO-8601 round trip.
package models

import (
	"strings"
	"time"
)

// Entity names a synced entity type, as stored on pending sync records.
type Entity string

const (
	EntityStockItem     Entity = "StockItem"
	EntityShoppingEntry Entity = "ShoppingEntry"
	EntityReceipt       Entity = "Receipt"
)

// Operation is the kind of remote write a pending sync record replays.
type Operation string

const (
	OpUpsert Operation = "upsert"
	OpDelete Operation = "delete"
)

// NormalizeID lowercases an entity id. Applied to every id crossing the wire
// boundary, including foreign keys, so lookups by either casing converge on
// one local record.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// NormalizeTime converts t to UTC and drops sub-second precision.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

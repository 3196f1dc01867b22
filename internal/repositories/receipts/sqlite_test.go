package receipts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familystock/internal/models"
	"familystock/internal/shared"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE receipts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL DEFAULT '',
  shop_name TEXT NOT NULL,
  timestamp TEXT NOT NULL,
  amount REAL
);
CREATE TABLE receipt_items (
  id TEXT PRIMARY KEY,
  receipt_id TEXT NOT NULL,
  item_name TEXT NOT NULL,
  quantity REAL NOT NULL DEFAULT 0,
  position INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

	return db
}

func testReceipt(id string, itemIDs ...string) *models.Receipt {
	r := &models.Receipt{
		ID:        id,
		UserID:    "user-1",
		ShopName:  "Corner Shop",
		Timestamp: models.NormalizeTime(time.Now()),
	}
	for i, itemID := range itemIDs {
		r.Items = append(r.Items, models.ReceiptItem{
			ID:        itemID,
			ReceiptID: id,
			ItemName:  "Item " + itemID,
			Quantity:  float64(i + 1),
			Position:  i,
		})
	}
	return r
}

func TestUpsert_InsertWithItems(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, testReceipt("r-1", "a", "b")))

	got, err := r.GetByID(ctx, "r-1")
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "a", got.Items[0].ID)
	assert.Equal(t, "b", got.Items[1].ID)
}

func TestUpsert_ReplacesItemSet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, testReceipt("r-1", "a", "b")))

	// Second upsert carries only item a; b must be removed, not left stale.
	require.NoError(t, r.Upsert(ctx, testReceipt("r-1", "a")))

	got, err := r.GetByID(ctx, "r-1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "a", got.Items[0].ID)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM receipt_items`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestUpsert_EmptyItemSetClearsChildren(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, testReceipt("r-1", "a")))
	require.NoError(t, r.Upsert(ctx, testReceipt("r-1")))

	got, err := r.GetByID(ctx, "r-1")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestUpsert_PreservesPayloadOrder(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	receipt := testReceipt("r-1", "c", "a", "b")
	require.NoError(t, r.Upsert(ctx, receipt))

	got, err := r.GetByID(ctx, "r-1")
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, []string{"c", "a", "b"},
		[]string{got.Items[0].ID, got.Items[1].ID, got.Items[2].ID})
}

func TestDelete_CascadesToItems(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, testReceipt("r-1", "a", "b")))
	require.NoError(t, r.Delete(ctx, "r-1"))

	_, err := r.GetByID(ctx, "r-1")
	assert.ErrorIs(t, err, shared.ErrorNotFound)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM receipt_items`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestList_NewestFirst(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	older := testReceipt("r-1")
	older.Timestamp = models.NormalizeTime(time.Now().Add(-time.Hour))
	newer := testReceipt("r-2")
	require.NoError(t, r.Upsert(ctx, older))
	require.NoError(t, r.Upsert(ctx, newer))

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r-2", got[0].ID)
}

package shopping

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
CREATE TABLE shopping_entries (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL DEFAULT '',
  item_id TEXT NOT NULL,
  desired_quantity REAL NOT NULL DEFAULT 1,
  unit TEXT NOT NULL DEFAULT 'pcs',
  note TEXT,
  updated_at TEXT NOT NULL,
  is_deleted INTEGER NOT NULL DEFAULT 0,
  is_completed INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

	return db
}

func testEntry(id string) *models.ShoppingEntry {
	return &models.ShoppingEntry{
		ID:              id,
		UserID:          "user-1",
		ItemID:          "item-1",
		DesiredQuantity: 2,
		Unit:            "pcs",
		UpdatedAt:       models.NormalizeTime(time.Now()),
	}
}

func TestUpsert_InsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	entry := testEntry("e-1")
	require.NoError(t, r.Upsert(ctx, entry))

	entry.IsCompleted = true
	entry.DesiredQuantity = 5
	require.NoError(t, r.Upsert(ctx, entry))

	got, err := r.GetByID(ctx, "e-1")
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, 5.0, got.DesiredQuantity)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM shopping_entries`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestUpsert_NormalizesForeignKey(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	entry := testEntry("E-1")
	entry.ItemID = "ITEM-1"
	require.NoError(t, r.Upsert(ctx, entry))

	got, err := r.GetByID(ctx, "e-1")
	require.NoError(t, err)
	assert.Equal(t, "item-1", got.ItemID)
}

func TestList_ExcludesSoftDeleted(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	live := testEntry("e-1")
	gone := testEntry("e-2")
	gone.IsDeleted = true
	require.NoError(t, r.Upsert(ctx, live))
	require.NoError(t, r.Upsert(ctx, gone))

	entries, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e-1", entries[0].ID)
}

func TestDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, testEntry("e-1")))
	require.NoError(t, r.Delete(ctx, "e-1"))

	_, err := r.GetByID(ctx, "e-1")
	assert.ErrorIs(t, err, shared.ErrorNotFound)
}

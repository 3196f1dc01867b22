package pending

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familystock/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE pending_sync (
  id TEXT PRIMARY KEY,
  entity_type TEXT NOT NULL,
  entity_id TEXT NOT NULL,
  operation TEXT NOT NULL,
  created_at TEXT NOT NULL,
  retry_count INTEGER NOT NULL DEFAULT 0,
  last_attempt TEXT,
  error_message TEXT
);
`)
	require.NoError(t, err)

	return db
}

func TestInsertAndList_OldestFirst(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	newer := models.NewPendingSync(models.EntityStockItem, "id-2", models.OpUpsert)
	older := models.NewPendingSync(models.EntityStockItem, "id-1", models.OpUpsert)
	older.CreatedAt = newer.CreatedAt.Add(-time.Minute)

	require.NoError(t, r.Insert(ctx, newer))
	require.NoError(t, r.Insert(ctx, older))

	got, err := r.ListOldestFirst(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "id-1", got[0].EntityID)
	assert.Equal(t, "id-2", got[1].EntityID)
}

func TestUpdate_PersistsRetryState(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	rec := models.NewPendingSync(models.EntityReceipt, "r-1", models.OpDelete)
	require.NoError(t, r.Insert(ctx, rec))

	now := models.NormalizeTime(time.Now())
	msg := "network unreachable"
	rec.RetryCount = 3
	rec.LastAttempt = &now
	rec.ErrorMessage = &msg
	require.NoError(t, r.Update(ctx, rec))

	got, err := r.ListOldestFirst(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].RetryCount)
	require.NotNil(t, got[0].LastAttempt)
	assert.True(t, got[0].LastAttempt.Equal(now))
	require.NotNil(t, got[0].ErrorMessage)
	assert.Equal(t, msg, *got[0].ErrorMessage)
}

func TestCountAndDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	rec := models.NewPendingSync(models.EntityShoppingEntry, "e-1", models.OpUpsert)
	require.NoError(t, r.Insert(ctx, rec))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, r.Delete(ctx, rec.ID))

	n, err = r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDeleteExhausted(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	fresh := models.NewPendingSync(models.EntityStockItem, "id-1", models.OpUpsert)
	spent := models.NewPendingSync(models.EntityStockItem, "id-2", models.OpUpsert)
	spent.RetryCount = 5
	require.NoError(t, r.Insert(ctx, fresh))
	require.NoError(t, r.Insert(ctx, spent))

	require.NoError(t, r.DeleteExhausted(ctx, 5))

	got, err := r.ListOldestFirst(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "id-1", got[0].EntityID)
}

package stock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"familystock/internal/dbx"
	"familystock/internal/models"
	"familystock/internal/shared"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts an item or replaces every mutable column on conflict.
// The id is normalized so that two casings of the same id converge on one row.
func (r *SQLiteRepository) Upsert(ctx context.Context, item *models.StockItem) error {
	query := `INSERT INTO stock_items
			(id, user_id, name, category, updated_at, is_archived, quantity_in_stock, quantity_full_stock)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id,
				name = excluded.name,
				category = excluded.category,
				updated_at = excluded.updated_at,
				is_archived = excluded.is_archived,
				quantity_in_stock = excluded.quantity_in_stock,
				quantity_full_stock = excluded.quantity_full_stock
	`
	_, err := r.db.ExecContext(ctx, query,
		models.NormalizeID(item.ID), item.UserID, item.Name, item.Category,
		item.UpdatedAt.UTC().Format(time.RFC3339), item.IsArchived,
		item.QuantityInStock, item.QuantityFullStock)
	if err != nil {
		return fmt.Errorf("failed to upsert stock item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.StockItem, error) {
	query := `SELECT id, user_id, name, category, updated_at, is_archived, quantity_in_stock, quantity_full_stock
			FROM stock_items WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, models.NormalizeID(id))

	item, err := scanStockItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock item: %w", err)
	}
	return item, nil
}

func (r *SQLiteRepository) List(ctx context.Context, includeArchived bool) ([]models.StockItem, error) {
	query := `SELECT id, user_id, name, category, updated_at, is_archived, quantity_in_stock, quantity_full_stock
			FROM stock_items`
	if !includeArchived {
		query += ` WHERE is_archived = 0`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select stock items: %w", err)
	}
	defer rows.Close()

	var result []models.StockItem
	for rows.Next() {
		item, err := scanStockItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM stock_items WHERE id = ?`, models.NormalizeID(id))
	if err != nil {
		return fmt.Errorf("failed to delete stock item: %w", err)
	}
	return nil
}

func scanStockItem(scan func(dest ...any) error) (*models.StockItem, error) {
	var item models.StockItem
	var updatedAt string
	if err := scan(&item.ID, &item.UserID, &item.Name, &item.Category,
		&updatedAt, &item.IsArchived, &item.QuantityInStock, &item.QuantityFullStock); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	item.UpdatedAt = ts.UTC()
	return &item, nil
}

package receipts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"familystock/internal/dbx"
	"familystock/internal/models"
	"familystock/internal/shared"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
// Callers that need the receipt row and its items committed atomically should
// bind the repository to a transaction via dbx.WithTx.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, receipt *models.Receipt) error {
	query := `INSERT INTO receipts (id, user_id, shop_name, timestamp, amount)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id,
				shop_name = excluded.shop_name,
				timestamp = excluded.timestamp,
				amount = excluded.amount
	`
	id := models.NormalizeID(receipt.ID)
	_, err := r.db.ExecContext(ctx, query,
		id, receipt.UserID, receipt.ShopName,
		receipt.Timestamp.UTC().Format(time.RFC3339), receipt.Amount)
	if err != nil {
		return fmt.Errorf("failed to upsert receipt: %w", err)
	}

	return r.replaceItems(ctx, id, receipt.Items)
}

// replaceItems makes the stored item set equal to the incoming one:
// rows not present in the incoming id set are deleted, the rest upserted.
func (r *SQLiteRepository) replaceItems(ctx context.Context, receiptID string, items []models.ReceiptItem) error {
	if len(items) == 0 {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM receipt_items WHERE receipt_id = ?`, receiptID); err != nil {
			return fmt.Errorf("failed to clear receipt items: %w", err)
		}
		return nil
	}

	ids := make([]string, 0, len(items))
	args := []any{receiptID}
	for _, it := range items {
		id := models.NormalizeID(it.ID)
		ids = append(ids, "?")
		args = append(args, id)
	}

	del := fmt.Sprintf(`DELETE FROM receipt_items WHERE receipt_id = ? AND id NOT IN (%s)`,
		strings.Join(ids, ", "))
	if _, err := r.db.ExecContext(ctx, del, args...); err != nil {
		return fmt.Errorf("failed to prune receipt items: %w", err)
	}

	upsert := `INSERT INTO receipt_items (id, receipt_id, item_name, quantity, position)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET receipt_id = excluded.receipt_id,
				item_name = excluded.item_name,
				quantity = excluded.quantity,
				position = excluded.position
	`
	for i, it := range items {
		_, err := r.db.ExecContext(ctx, upsert,
			models.NormalizeID(it.ID), receiptID, it.ItemName, it.Quantity, i)
		if err != nil {
			return fmt.Errorf("failed to upsert receipt item: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Receipt, error) {
	query := `SELECT id, user_id, shop_name, timestamp, amount FROM receipts WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, models.NormalizeID(id))

	receipt, err := scanReceipt(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	items, err := r.itemsFor(ctx, receipt.ID)
	if err != nil {
		return nil, err
	}
	receipt.Items = items
	return receipt, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Receipt, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, shop_name, timestamp, amount FROM receipts ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select receipts: %w", err)
	}
	defer rows.Close()

	var result []models.Receipt
	for rows.Next() {
		receipt, err := scanReceipt(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		items, err := r.itemsFor(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	// Children first; FK enforcement is not assumed to be on.
	nid := models.NormalizeID(id)
	if _, err := r.db.ExecContext(ctx, `DELETE FROM receipt_items WHERE receipt_id = ?`, nid); err != nil {
		return fmt.Errorf("failed to delete receipt items: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = ?`, nid); err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) itemsFor(ctx context.Context, receiptID string) ([]models.ReceiptItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, receipt_id, item_name, quantity, position FROM receipt_items
		 WHERE receipt_id = ? ORDER BY position`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to select receipt items: %w", err)
	}
	defer rows.Close()

	var items []models.ReceiptItem
	for rows.Next() {
		var it models.ReceiptItem
		if err := rows.Scan(&it.ID, &it.ReceiptID, &it.ItemName, &it.Quantity, &it.Position); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanReceipt(scan func(dest ...any) error) (*models.Receipt, error) {
	var receipt models.Receipt
	var ts string
	if err := scan(&receipt.ID, &receipt.UserID, &receipt.ShopName, &ts, &receipt.Amount); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	receipt.Timestamp = parsed.UTC()
	return &receipt, nil
}

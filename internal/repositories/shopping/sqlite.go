package shopping

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

func (r *SQLiteRepository) Upsert(ctx context.Context, e *models.ShoppingEntry) error {
	query := `INSERT INTO shopping_entries
			(id, user_id, item_id, desired_quantity, unit, note, updated_at, is_deleted, is_completed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id,
				item_id = excluded.item_id,
				desired_quantity = excluded.desired_quantity,
				unit = excluded.unit,
				note = excluded.note,
				updated_at = excluded.updated_at,
				is_deleted = excluded.is_deleted,
				is_completed = excluded.is_completed
	`
	_, err := r.db.ExecContext(ctx, query,
		models.NormalizeID(e.ID), e.UserID, models.NormalizeID(e.ItemID),
		e.DesiredQuantity, e.Unit, e.Note,
		e.UpdatedAt.UTC().Format(time.RFC3339), e.IsDeleted, e.IsCompleted)
	if err != nil {
		return fmt.Errorf("failed to upsert shopping entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.ShoppingEntry, error) {
	query := `SELECT id, user_id, item_id, desired_quantity, unit, note, updated_at, is_deleted, is_completed
			FROM shopping_entries WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, models.NormalizeID(id))

	entry, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping entry: %w", err)
	}
	return entry, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.ShoppingEntry, error) {
	query := `SELECT id, user_id, item_id, desired_quantity, unit, note, updated_at, is_deleted, is_completed
			FROM shopping_entries WHERE is_deleted = 0 ORDER BY updated_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select shopping entries: %w", err)
	}
	defer rows.Close()

	var result []models.ShoppingEntry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM shopping_entries WHERE id = ?`, models.NormalizeID(id))
	if err != nil {
		return fmt.Errorf("failed to delete shopping entry: %w", err)
	}
	return nil
}

func scanEntry(scan func(dest ...any) error) (*models.ShoppingEntry, error) {
	var e models.ShoppingEntry
	var updatedAt string
	if err := scan(&e.ID, &e.UserID, &e.ItemID, &e.DesiredQuantity, &e.Unit,
		&e.Note, &updatedAt, &e.IsDeleted, &e.IsCompleted); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	e.UpdatedAt = ts.UTC()
	return &e, nil
}

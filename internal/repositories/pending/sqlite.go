package pending

import (
	"context"
	"fmt"
	"time"

	"familystock/internal/dbx"
	"familystock/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, rec *models.PendingSync) error {
	query := `INSERT INTO pending_sync
			(id, entity_type, entity_id, operation, created_at, retry_count, last_attempt, error_message)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, string(rec.EntityType), rec.EntityID, string(rec.Operation),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano), rec.RetryCount,
		fmtNullableTime(rec.LastAttempt), rec.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to insert pending sync: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListOldestFirst(ctx context.Context) ([]models.PendingSync, error) {
	query := `SELECT id, entity_type, entity_id, operation, created_at, retry_count, last_attempt, error_message
			FROM pending_sync ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending syncs: %w", err)
	}
	defer rows.Close()

	var result []models.PendingSync
	for rows.Next() {
		var rec models.PendingSync
		var entityType, op, createdAt string
		var lastAttempt *string
		if err := rows.Scan(&rec.ID, &entityType, &rec.EntityID, &op,
			&createdAt, &rec.RetryCount, &lastAttempt, &rec.ErrorMessage); err != nil {
			return nil, err
		}
		rec.EntityType = models.Entity(entityType)
		rec.Operation = models.Operation(op)

		created, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		rec.CreatedAt = created.UTC()

		if lastAttempt != nil {
			la, err := time.Parse(time.RFC3339Nano, *lastAttempt)
			if err != nil {
				return nil, fmt.Errorf("failed to parse last_attempt: %w", err)
			}
			la = la.UTC()
			rec.LastAttempt = &la
		}

		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, rec *models.PendingSync) error {
	query := `UPDATE pending_sync SET retry_count = ?, last_attempt = ?, error_message = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		rec.RetryCount, fmtNullableTime(rec.LastAttempt), rec.ErrorMessage, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update pending sync: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_sync WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending sync: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_sync`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending syncs: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) DeleteExhausted(ctx context.Context, cap int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM pending_sync WHERE retry_count >= ?`, cap)
	if err != nil {
		return fmt.Errorf("failed to purge exhausted pending syncs: %w", err)
	}
	return nil
}

func fmtNullableTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

// Package sync drives bidirectional synchronization between the local store
// and the PostgREST backend: pulls (remote to local, remote authoritative),
// fire-and-forget pushes, and the durable offline queue that replays pushes
// which could not be delivered.
package sync

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"familystock/internal/dbx"
	"familystock/internal/logging"
	"familystock/internal/models"
	"familystock/internal/remote"
	"familystock/internal/repositories/metadata"
	"familystock/internal/repositories/receipts"
	"familystock/internal/repositories/shopping"
	"familystock/internal/repositories/stock"
	"familystock/internal/shared"
)

// Service orchestrates pull and push for every entity type. It holds no
// entity data of its own; it wires the remote repositories, the local
// repositories and the offline queue together.
//
// Pull and push failures are handled here and never surface to callers:
// a failed pull leaves the watermark untouched and heals on the next
// trigger, a failed push is durably queued for replay.
type Service struct {
	db *sql.DB

	stockRemote    remote.StockRepository
	shoppingRemote remote.ShoppingRepository
	receiptRemote  remote.ReceiptRepository

	stockLocal    stock.Repository
	shoppingLocal shopping.Repository
	receiptLocal  receipts.Repository
	meta          metadata.Repository

	queue *Queue
	log   logging.Logger
	now   func() time.Time
}

func NewService(
	db *sql.DB,
	stockRemote remote.StockRepository,
	shoppingRemote remote.ShoppingRepository,
	receiptRemote remote.ReceiptRepository,
	log logging.Logger,
) *Service {
	return &Service{
		db:             db,
		stockRemote:    stockRemote,
		shoppingRemote: shoppingRemote,
		receiptRemote:  receiptRemote,
		stockLocal:     stock.NewSQLiteRepository(db),
		shoppingLocal:  shopping.NewSQLiteRepository(db),
		receiptLocal:   receipts.NewSQLiteRepository(db),
		meta:           metadata.NewSQLiteRepository(db),
		log:            log,
		now:            time.Now,
	}
}

// AttachQueue wires the offline queue in. Called once during startup, after
// the queue is constructed over this service.
func (s *Service) AttachQueue(q *Queue) { s.queue = q }

// PullAll pulls the three entity types in a fixed order. The order carries
// no dependency; it is fixed so runs are deterministic.
func (s *Service) PullAll(ctx context.Context) {
	s.PullStockItems(ctx)
	s.PullShoppingEntries(ctx)
	s.PullReceipts(ctx)
}

// PullStockItems fetches remote stock item changes since the stored
// watermark and applies them locally in one transaction.
func (s *Service) PullStockItems(ctx context.Context) {
	err := s.pullBatch(ctx, metadata.KeyLastPullStockItems, func(ctx context.Context, since *time.Time) (func(ctx context.Context, tx dbx.DBTX) error, error) {
		rows, err := s.stockRemote.FetchSince(ctx, since)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, tx dbx.DBTX) error {
			repo := stock.NewSQLiteRepository(tx)
			for _, row := range rows {
				if err := repo.Upsert(ctx, models.StockItemFromWire(row)); err != nil {
					return err
				}
			}
			return nil
		}, nil
	})
	s.logPull(ctx, "stock items", err)
}

// PullShoppingEntries fetches remote shopping entry changes since the stored
// watermark and applies them locally in one transaction.
func (s *Service) PullShoppingEntries(ctx context.Context) {
	err := s.pullBatch(ctx, metadata.KeyLastPullShopping, func(ctx context.Context, since *time.Time) (func(ctx context.Context, tx dbx.DBTX) error, error) {
		rows, err := s.shoppingRemote.FetchSince(ctx, since)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, tx dbx.DBTX) error {
			repo := shopping.NewSQLiteRepository(tx)
			for _, row := range rows {
				if err := repo.Upsert(ctx, models.ShoppingEntryFromWire(row)); err != nil {
					return err
				}
			}
			return nil
		}, nil
	})
	s.logPull(ctx, "shopping entries", err)
}

// PullReceipts fetches remote receipts, each grouped with its items, and
// applies them locally in one transaction.
func (s *Service) PullReceipts(ctx context.Context) {
	err := s.pullBatch(ctx, metadata.KeyLastPullReceipts, func(ctx context.Context, since *time.Time) (func(ctx context.Context, tx dbx.DBTX) error, error) {
		rows, err := s.receiptRemote.FetchSince(ctx, since)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, tx dbx.DBTX) error {
			repo := receipts.NewSQLiteRepository(tx)
			for _, row := range rows {
				if err := repo.Upsert(ctx, models.ReceiptFromWire(row.Receipt, row.Items)); err != nil {
					return err
				}
			}
			return nil
		}, nil
	})
	s.logPull(ctx, "receipts", err)
}

// pullBatch runs one pull cycle: read the watermark, fetch, commit the whole
// batch in one transaction, and advance the watermark to the wall clock at
// pull start. Advancing to "now" instead of the max revision seen means a row
// whose revision equals the previous watermark exactly is re-pulled rather
// than missed; the local upsert is idempotent so the re-apply is harmless.
// The watermark moves only after a clean commit.
func (s *Service) pullBatch(ctx context.Context, watermarkKey string, fetch func(ctx context.Context, since *time.Time) (func(ctx context.Context, tx dbx.DBTX) error, error)) error {
	since, err := s.watermark(ctx, watermarkKey)
	if err != nil {
		return err
	}
	pulledAt := models.NormalizeTime(s.now())

	apply, err := fetch(ctx, since)
	if err != nil {
		return err
	}
	if err := dbx.WithTx(ctx, s.db, nil, apply); err != nil {
		return err
	}
	return s.setWatermark(ctx, watermarkKey, pulledAt)
}

func (s *Service) logPull(ctx context.Context, what string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNotAuthenticated):
		s.log.Info(ctx, "pull skipped, not signed in", "entity", what)
	default:
		s.log.Warn(ctx, "pull failed, will retry on next trigger", "entity", what, "error", err)
	}
}

// PushStockItem sends the item to the remote store. Fire and forget: a
// failed push is queued for replay, never reported to the caller.
func (s *Service) PushStockItem(ctx context.Context, item *models.StockItem) {
	_, err := s.stockRemote.Upsert(ctx, item.ToWire())
	s.afterPush(ctx, models.EntityStockItem, item.ID, models.OpUpsert, err)
}

// PushShoppingEntry sends the entry to the remote store, fire and forget.
func (s *Service) PushShoppingEntry(ctx context.Context, entry *models.ShoppingEntry) {
	_, err := s.shoppingRemote.Upsert(ctx, entry.ToWire())
	s.afterPush(ctx, models.EntityShoppingEntry, entry.ID, models.OpUpsert, err)
}

// PushReceipt sends the receipt and its items to the remote store, fire and
// forget.
func (s *Service) PushReceipt(ctx context.Context, receipt *models.Receipt) {
	_, err := s.receiptRemote.Upsert(ctx, receipt.ToWire(), receipt.ItemsToWire())
	s.afterPush(ctx, models.EntityReceipt, receipt.ID, models.OpUpsert, err)
}

// Delete removes the entity from the remote store. A failed delete is queued
// for replay.
func (s *Service) Delete(ctx context.Context, entityType models.Entity, id string) {
	err := s.deleteDirect(ctx, entityType, id)
	s.afterPush(ctx, entityType, id, models.OpDelete, err)
}

// afterPush classifies a push outcome. Success needs nothing further. With
// no signed-in user the operation silently no-ops: there is no owner to
// attribute the write to and nothing to replay later. Everything else,
// including an expired token, is queued so the write survives until
// connectivity or authentication recovers.
func (s *Service) afterPush(ctx context.Context, entityType models.Entity, id string, op models.Operation, err error) {
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNotAuthenticated):
		s.log.Info(ctx, "push skipped, not signed in", "entity", entityType, "id", id)
	default:
		s.log.Warn(ctx, "push failed, queued for replay",
			"entity", entityType, "id", id, "op", op, "error", err)
		if s.queue != nil {
			s.queue.Enqueue(ctx, entityType, id, op, err)
		}
	}
}

func (s *Service) deleteDirect(ctx context.Context, entityType models.Entity, id string) error {
	switch entityType {
	case models.EntityStockItem:
		return s.stockRemote.Delete(ctx, id)
	case models.EntityShoppingEntry:
		return s.shoppingRemote.Delete(ctx, id)
	case models.EntityReceipt:
		return s.receiptRemote.Delete(ctx, id)
	default:
		return shared.ErrEntityNotFound
	}
}

// replay re-attempts a queued operation. For an upsert the target entity is
// looked up locally first; a missing entity is reported as
// shared.ErrEntityNotFound so the record keeps its retry budget in case the
// entity appears later. Replay never enqueues again; the queue already owns
// this record.
func (s *Service) replay(ctx context.Context, rec models.PendingSync) error {
	if rec.Operation == models.OpDelete {
		return s.deleteDirect(ctx, rec.EntityType, rec.EntityID)
	}

	switch rec.EntityType {
	case models.EntityStockItem:
		item, err := s.stockLocal.GetByID(ctx, rec.EntityID)
		if errors.Is(err, shared.ErrorNotFound) {
			return shared.ErrEntityNotFound
		}
		if err != nil {
			return err
		}
		_, err = s.stockRemote.Upsert(ctx, item.ToWire())
		return err

	case models.EntityShoppingEntry:
		entry, err := s.shoppingLocal.GetByID(ctx, rec.EntityID)
		if errors.Is(err, shared.ErrorNotFound) {
			return shared.ErrEntityNotFound
		}
		if err != nil {
			return err
		}
		_, err = s.shoppingRemote.Upsert(ctx, entry.ToWire())
		return err

	case models.EntityReceipt:
		receipt, err := s.receiptLocal.GetByID(ctx, rec.EntityID)
		if errors.Is(err, shared.ErrorNotFound) {
			return shared.ErrEntityNotFound
		}
		if err != nil {
			return err
		}
		_, err = s.receiptRemote.Upsert(ctx, receipt.ToWire(), receipt.ItemsToWire())
		return err

	default:
		return shared.ErrEntityNotFound
	}
}

// watermark reads the stored pull timestamp for key. nil means never pulled,
// which fetches everything.
func (s *Service) watermark(ctx context.Context, key string) (*time.Time, error) {
	v, err := s.meta.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, string(v))
	if err != nil {
		// an unreadable watermark degrades to a full pull
		s.log.Warn(ctx, "discarding unreadable watermark", "key", key, "value", string(v))
		return nil, nil
	}
	return &t, nil
}

func (s *Service) setWatermark(ctx context.Context, key string, t time.Time) error {
	return s.meta.Set(ctx, key, []byte(t.Format(time.RFC3339)))
}

package sync

import (
	"context"
	"sync/atomic"
	"time"

	"familystock/internal/logging"
	"familystock/internal/models"
	"familystock/internal/repositories/pending"
)

// maxRetries is the per-record retry budget. A record that reaches the cap
// is dropped without another attempt. Hardcoded policy value, not tuned.
const maxRetries = 5

// Queue is the durable offline queue of failed pushes. Records replay oldest
// first, preserving the order of one entity's successive mutations; ordering
// across entities is not guaranteed.
//
// Drain is single-flight per process: a drain requested while one is running
// is a no-op. The next trigger (an enqueue, a connectivity recovery, an
// explicit sync) picks up whatever that drain did not see.
type Queue struct {
	pending  pending.Repository
	dispatch dispatcher
	log      logging.Logger
	now      func() time.Time

	draining atomic.Bool
}

// dispatcher replays one queued record against the remote store.
// Implemented by Service.
type dispatcher interface {
	replay(ctx context.Context, rec models.PendingSync) error
}

func NewQueue(pendingRepo pending.Repository, dispatch dispatcher, log logging.Logger) *Queue {
	return &Queue{
		pending:  pendingRepo,
		dispatch: dispatch,
		log:      log,
		now:      time.Now,
	}
}

// Enqueue durably records a failed operation, then immediately attempts a
// drain. The drain is best effort; if one is already running the record
// simply waits for the next trigger.
func (q *Queue) Enqueue(ctx context.Context, entityType models.Entity, entityID string, op models.Operation, cause error) {
	rec := models.NewPendingSync(entityType, entityID, op)
	if cause != nil {
		msg := cause.Error()
		rec.ErrorMessage = &msg
	}
	if err := q.pending.Insert(ctx, rec); err != nil {
		q.log.Error(ctx, "failed to persist queue record",
			"entity", entityType, "id", entityID, "op", op, "error", err)
		return
	}
	q.Drain(ctx)
}

// Drain replays every pending record once, oldest first. Per record:
// a record at the retry cap is deleted without an attempt; a record whose
// (entity type, operation) pair has no handler is deleted without consuming
// a retry; otherwise the consumed retry is persisted before the attempt, so
// a crash mid-attempt still counts against the budget.
func (q *Queue) Drain(ctx context.Context) {
	if !q.draining.CompareAndSwap(false, true) {
		return
	}
	defer q.draining.Store(false)

	recs, err := q.pending.ListOldestFirst(ctx)
	if err != nil {
		q.log.Error(ctx, "failed to list queue records", "error", err)
		return
	}

	for i := range recs {
		q.drainOne(ctx, &recs[i])
	}
}

func (q *Queue) drainOne(ctx context.Context, rec *models.PendingSync) {
	if rec.RetryCount >= maxRetries {
		q.log.Warn(ctx, "retry budget exhausted, dropping record",
			"entity", rec.EntityType, "id", rec.EntityID, "op", rec.Operation)
		if err := q.pending.Delete(ctx, rec.ID); err != nil {
			q.log.Error(ctx, "failed to drop queue record", "id", rec.ID, "error", err)
		}
		return
	}

	if !replayable(rec.EntityType, rec.Operation) {
		// no handler exists and never will; retrying cannot succeed
		q.log.Warn(ctx, "dropping record with unknown operation",
			"entity", rec.EntityType, "op", rec.Operation)
		if err := q.pending.Delete(ctx, rec.ID); err != nil {
			q.log.Error(ctx, "failed to drop queue record", "id", rec.ID, "error", err)
		}
		return
	}

	attemptedAt := models.NormalizeTime(q.now())
	rec.RetryCount++
	rec.LastAttempt = &attemptedAt
	if err := q.pending.Update(ctx, rec); err != nil {
		q.log.Error(ctx, "failed to stamp queue record", "id", rec.ID, "error", err)
		return
	}

	if err := q.dispatch.replay(ctx, *rec); err != nil {
		msg := err.Error()
		rec.ErrorMessage = &msg
		if uerr := q.pending.Update(ctx, rec); uerr != nil {
			q.log.Error(ctx, "failed to record replay failure", "id", rec.ID, "error", uerr)
		}
		q.log.Warn(ctx, "replay failed",
			"entity", rec.EntityType, "id", rec.EntityID, "op", rec.Operation,
			"retry", rec.RetryCount, "error", err)
		return
	}

	if err := q.pending.Delete(ctx, rec.ID); err != nil {
		q.log.Error(ctx, "failed to remove replayed record", "id", rec.ID, "error", err)
		return
	}
	q.log.Info(ctx, "replay succeeded",
		"entity", rec.EntityType, "id", rec.EntityID, "op", rec.Operation)
}

// PendingCount returns the number of queued records.
func (q *Queue) PendingCount(ctx context.Context) (int, error) {
	return q.pending.Count(ctx)
}

// PurgeExhausted removes every record at or past the retry cap. Maintenance
// sweep, independent of drain.
func (q *Queue) PurgeExhausted(ctx context.Context) error {
	return q.pending.DeleteExhausted(ctx, maxRetries)
}

func replayable(entity models.Entity, op models.Operation) bool {
	switch entity {
	case models.EntityStockItem, models.EntityShoppingEntry, models.EntityReceipt:
	default:
		return false
	}
	switch op {
	case models.OpUpsert, models.OpDelete:
		return true
	default:
		return false
	}
}

package remote

import (
	"context"
	"net/url"
	"time"

	"familystock/internal/logging"
	"familystock/internal/shared"
	"familystock/internal/sync/conflict"
	"familystock/internal/wire"
)

// selectQuery builds the common PostgREST filter set: all columns, scoped to
// the owner, optionally bounded by revision, ordered ascending so records
// apply oldest first.
func selectQuery(userID, revisionColumn string, since *time.Time) url.Values {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("user_id", "eq."+userID)
	if since != nil {
		q.Set(revisionColumn, "gte."+since.UTC().Format(time.RFC3339))
	}
	q.Set("order", revisionColumn+".asc")
	return q
}

func eqID(id string) url.Values {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+id)
	return q
}

// fetchByID reads a single row by id, unscoped. found is false when the row
// does not exist remotely.
func fetchByID[R any](ctx context.Context, c *Client, table, id string) (row R, found bool, err error) {
	var rows []R
	if err := c.Get(ctx, table, eqID(id), &rows); err != nil {
		return row, false, err
	}
	if len(rows) == 0 {
		return row, false, nil
	}
	return rows[0], true, nil
}

// saveRow is the existence-check-then-insert-or-update core of every upsert.
// When the stored revision is newer than the outgoing one the update payload
// is the resolved winner, so a racing writer's newer state is kept instead of
// clobbered. The stored-read and the write are two requests; a third party
// can still slip between them, which the wire protocol offers no token to
// prevent.
func saveRow[R wire.Row](ctx context.Context, c *Client, res conflict.Resolver, log logging.Logger, table, id string, outgoing R, existing R, found bool) (R, error) {
	var zero R

	if !found {
		var created []R
		if err := c.Post(ctx, table, outgoing, &created); err != nil {
			return zero, err
		}
		if len(created) == 0 {
			return zero, shared.ErrEmptyResponse
		}
		return created[0], nil
	}

	payload := outgoing
	if res.HasConflict(outgoing.Revision(), existing.Revision()) {
		payload = conflict.Resolve(res, outgoing, existing)
		log.Info(ctx, "push conflict resolved",
			"table", table, "id", id,
			"local_revision", outgoing.Revision(),
			"remote_revision", existing.Revision())
	}

	q := url.Values{}
	q.Set("id", "eq."+id)

	var updated []R
	if err := c.Patch(ctx, table, q, payload, &updated); err != nil {
		return zero, err
	}
	if len(updated) == 0 {
		return zero, shared.ErrEmptyResponse
	}
	return updated[0], nil
}

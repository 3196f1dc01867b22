package remote

import (
	"context"
	"net/url"
	"time"

	"familystock/internal/logging"
	"familystock/internal/session"
	"familystock/internal/sync/conflict"
	"familystock/internal/wire"
)

const shoppingTable = "shopping_entries"

type shoppingRepository struct {
	client   *Client
	creds    session.Credentials
	resolver conflict.Resolver
	log      logging.Logger
}

func NewShoppingRepository(client *Client, creds session.Credentials, log logging.Logger) ShoppingRepository {
	return &shoppingRepository{
		client:   client,
		creds:    creds,
		resolver: conflict.NewResolver(conflict.LastWriteWins),
		log:      log,
	}
}

func (r *shoppingRepository) FetchSince(ctx context.Context, since *time.Time) ([]wire.ShoppingEntry, error) {
	userID, err := r.creds.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	var rows []wire.ShoppingEntry
	if err := r.client.Get(ctx, shoppingTable, selectQuery(userID, "updated_at", since), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *shoppingRepository) Upsert(ctx context.Context, entry wire.ShoppingEntry) (wire.ShoppingEntry, error) {
	userID, err := r.creds.CurrentUserID(ctx)
	if err != nil {
		return wire.ShoppingEntry{}, err
	}
	entry.UserID = userID

	existing, found, err := fetchByID[wire.ShoppingEntry](ctx, r.client, shoppingTable, entry.ID)
	if err != nil {
		return wire.ShoppingEntry{}, err
	}
	return saveRow(ctx, r.client, r.resolver, r.log, shoppingTable, entry.ID, entry, existing, found)
}

func (r *shoppingRepository) Delete(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return r.client.Delete(ctx, shoppingTable, q)
}

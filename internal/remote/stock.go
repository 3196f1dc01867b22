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

const stockTable = "stock_items"

type stockRepository struct {
	client   *Client
	creds    session.Credentials
	resolver conflict.Resolver
	log      logging.Logger
}

func NewStockRepository(client *Client, creds session.Credentials, log logging.Logger) StockRepository {
	return &stockRepository{
		client:   client,
		creds:    creds,
		resolver: conflict.NewResolver(conflict.LastWriteWins),
		log:      log,
	}
}

func (r *stockRepository) FetchSince(ctx context.Context, since *time.Time) ([]wire.StockItem, error) {
	userID, err := r.creds.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	var rows []wire.StockItem
	if err := r.client.Get(ctx, stockTable, selectQuery(userID, "updated_at", since), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *stockRepository) Upsert(ctx context.Context, item wire.StockItem) (wire.StockItem, error) {
	userID, err := r.creds.CurrentUserID(ctx)
	if err != nil {
		return wire.StockItem{}, err
	}
	item.UserID = userID

	existing, found, err := fetchByID[wire.StockItem](ctx, r.client, stockTable, item.ID)
	if err != nil {
		return wire.StockItem{}, err
	}
	return saveRow(ctx, r.client, r.resolver, r.log, stockTable, item.ID, item, existing, found)
}

func (r *stockRepository) Delete(ctx context.Context, id string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return r.client.Delete(ctx, stockTable, q)
}

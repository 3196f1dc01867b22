// Package services implements the UI-facing mutation flows: validate, commit
// to the local store, then hand the record to the sync layer. The local
// commit is the source of truth; the push that follows is fire and forget.
package services

import (
	"context"
	"errors"
	"fmt"

	"familystock/internal/models"
	"familystock/internal/repositories/stock"
	"familystock/internal/session"
	"familystock/internal/shared"
	"familystock/internal/sync"
)

type StockService interface {
	List(ctx context.Context, includeArchived bool) ([]models.StockItem, error)
	Add(ctx context.Context, name string, category *string, inStock, fullStock float64) (*models.StockItem, error)
	SetQuantities(ctx context.Context, id string, inStock, fullStock float64) error
	SetArchived(ctx context.Context, id string, archived bool) error
	Delete(ctx context.Context, id string) error
}

type stockService struct {
	repo   stock.Repository
	creds  session.Credentials
	syncer *sync.Service
}

func NewStockService(repo stock.Repository, creds session.Credentials, syncer *sync.Service) StockService {
	return &stockService{repo: repo, creds: creds, syncer: syncer}
}

func (s *stockService) List(ctx context.Context, includeArchived bool) ([]models.StockItem, error) {
	return s.repo.List(ctx, includeArchived)
}

func (s *stockService) Add(ctx context.Context, name string, category *string, inStock, fullStock float64) (*models.StockItem, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}

	userID, err := s.creds.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	item := models.NewStockItem(userID, name, category)
	item.QuantityInStock = inStock
	item.QuantityFullStock = fullStock

	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, fmt.Errorf("saving stock item: %w", err)
	}
	s.syncer.PushStockItem(ctx, item)
	return item, nil
}

func (s *stockService) SetQuantities(ctx context.Context, id string, inStock, fullStock float64) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	item.QuantityInStock = inStock
	item.QuantityFullStock = fullStock
	item.Touch()

	if err := s.repo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("saving stock item: %w", err)
	}
	s.syncer.PushStockItem(ctx, item)
	return nil
}

func (s *stockService) SetArchived(ctx context.Context, id string, archived bool) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	item.IsArchived = archived
	item.Touch()

	if err := s.repo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("saving stock item: %w", err)
	}
	s.syncer.PushStockItem(ctx, item)
	return nil
}

// Delete is the explicit hard-delete flow: the local row goes first, then the
// remote delete is attempted (and queued on failure).
func (s *stockService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("loading stock item: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting stock item: %w", err)
	}
	s.syncer.Delete(ctx, models.EntityStockItem, id)
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"familystock/internal/models"
	"familystock/internal/repositories/shopping"
	"familystock/internal/session"
	"familystock/internal/sync"
)

type ShoppingService interface {
	List(ctx context.Context) ([]models.ShoppingEntry, error)
	Add(ctx context.Context, itemID string, quantity float64, unit string, note *string) (*models.ShoppingEntry, error)
	SetCompleted(ctx context.Context, id string, completed bool) error

	// Remove soft-deletes the entry. The row stays local with is_deleted
	// set and syncs as an upsert, so other devices see the removal.
	Remove(ctx context.Context, id string) error
}

type shoppingService struct {
	repo   shopping.Repository
	creds  session.Credentials
	syncer *sync.Service
}

func NewShoppingService(repo shopping.Repository, creds session.Credentials, syncer *sync.Service) ShoppingService {
	return &shoppingService{repo: repo, creds: creds, syncer: syncer}
}

func (s *shoppingService) List(ctx context.Context) ([]models.ShoppingEntry, error) {
	return s.repo.List(ctx)
}

func (s *shoppingService) Add(ctx context.Context, itemID string, quantity float64, unit string, note *string) (*models.ShoppingEntry, error) {
	if itemID == "" {
		return nil, errors.New("item id is required")
	}
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}

	userID, err := s.creds.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	entry := models.NewShoppingEntry(userID, itemID, quantity, unit)
	entry.Note = note
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("saving shopping entry: %w", err)
	}
	s.syncer.PushShoppingEntry(ctx, entry)
	return entry, nil
}

func (s *shoppingService) SetCompleted(ctx context.Context, id string, completed bool) error {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	entry.IsCompleted = completed
	entry.Touch()

	if err := s.repo.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("saving shopping entry: %w", err)
	}
	s.syncer.PushShoppingEntry(ctx, entry)
	return nil
}

func (s *shoppingService) Remove(ctx context.Context, id string) error {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	entry.IsDeleted = true
	entry.Touch()

	if err := s.repo.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("saving shopping entry: %w", err)
	}
	s.syncer.PushShoppingEntry(ctx, entry)
	return nil
}

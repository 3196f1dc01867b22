package services

import (
	"context"
	"errors"
	"fmt"

	"familystock/internal/models"
	"familystock/internal/repositories/receipts"
	"familystock/internal/session"
	"familystock/internal/shared"
	"familystock/internal/sync"
)

// ReceiptLine is one purchase line as entered by the user.
type ReceiptLine struct {
	Name     string
	Quantity float64
}

type ReceiptService interface {
	List(ctx context.Context) ([]models.Receipt, error)
	Add(ctx context.Context, shopName string, amount *float64, lines []ReceiptLine) (*models.Receipt, error)

	// Delete removes the receipt and its items locally, then remotely.
	Delete(ctx context.Context, id string) error
}

type receiptService struct {
	repo   receipts.Repository
	creds  session.Credentials
	syncer *sync.Service
}

func NewReceiptService(repo receipts.Repository, creds session.Credentials, syncer *sync.Service) ReceiptService {
	return &receiptService{repo: repo, creds: creds, syncer: syncer}
}

func (s *receiptService) List(ctx context.Context) ([]models.Receipt, error) {
	return s.repo.List(ctx)
}

func (s *receiptService) Add(ctx context.Context, shopName string, amount *float64, lines []ReceiptLine) (*models.Receipt, error) {
	if shopName == "" {
		return nil, errors.New("shop name is required")
	}

	userID, err := s.creds.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	receipt := models.NewReceipt(userID, shopName, amount)
	for _, line := range lines {
		receipt.AddItem(line.Name, line.Quantity)
	}

	if err := s.repo.Upsert(ctx, receipt); err != nil {
		return nil, fmt.Errorf("saving receipt: %w", err)
	}
	s.syncer.PushReceipt(ctx, receipt)
	return receipt, nil
}

func (s *receiptService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("loading receipt: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting receipt: %w", err)
	}
	s.syncer.Delete(ctx, models.EntityReceipt, id)
	return nil
}

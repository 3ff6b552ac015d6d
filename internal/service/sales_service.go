package service

import (
	"fmt"
	"time"

	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/repository"

	"github.com/google/uuid"
)

type SalesService struct {
	saleRepo      repository.SaleRepository
	inventoryRepo repository.InventoryRepository
}

func NewSalesService(saleRepo repository.SaleRepository, inventoryRepo repository.InventoryRepository) *SalesService {
	return &SalesService{
		saleRepo:      saleRepo,
		inventoryRepo: inventoryRepo,
	}
}

// Record stores a sale and, when it is completed, decrements stock for each
// line.
func (s *SalesService) Record(cashierID string, req *domain.RecordSaleRequest) (*domain.Sale, error) {
	var total float64
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("line quantity must be positive")
		}
		total += float64(line.Quantity) * line.UnitPrice
	}

	now := time.Now()
	sale := &domain.Sale{
		ID:         uuid.New().String(),
		CashierID:  cashierID,
		TerminalID: req.TerminalID,
		Lines:      req.Lines,
		Total:      total,
		Status:     req.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.saleRepo.Create(sale); err != nil {
		return nil, err
	}

	if sale.Status == domain.SaleStatusCompleted {
		if err := s.applyStock(sale); err != nil {
			return nil, err
		}
	}

	return sale, nil
}

func (s *SalesService) applyStock(sale *domain.Sale) error {
	for _, line := range sale.Lines {
		item, err := s.inventoryRepo.FindByID(line.ItemID)
		if err != nil {
			// Sale already recorded; stock for an unknown item is a
			// reconciliation problem, not a checkout failure.
			continue
		}
		item.Quantity -= line.Quantity
		item.UpdatedAt = time.Now()
		if err := s.inventoryRepo.Update(item); err != nil {
			return err
		}
	}
	return nil
}

func (s *SalesService) Get(id string) (*domain.Sale, error) {
	return s.saleRepo.FindByID(id)
}

func (s *SalesService) ListByCashier(cashierID string) ([]*domain.Sale, error) {
	return s.saleRepo.ListByCashier(cashierID)
}

func (s *SalesService) ListSince(since time.Time) ([]*domain.Sale, error) {
	return s.saleRepo.ListSince(since)
}

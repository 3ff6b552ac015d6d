package service

import (
	"fmt"
	"time"

	"pos-sync-server/internal/domain"
	"pos-sync-server/internal/repository"

	"github.com/google/uuid"
)

type InventoryService struct {
	inventoryRepo repository.InventoryRepository
}

func NewInventoryService(inventoryRepo repository.InventoryRepository) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
	}
}

func (s *InventoryService) Create(req *domain.CreateItemRequest) (*domain.InventoryItem, error) {
	if _, err := s.inventoryRepo.FindBySKU(req.SKU); err == nil {
		return nil, fmt.Errorf("sku already in use")
	}

	now := time.Now()
	item := &domain.InventoryItem{
		ID:                uuid.New().String(),
		SKU:               req.SKU,
		Name:              req.Name,
		Description:       req.Description,
		Quantity:          req.Quantity,
		UnitPrice:         req.UnitPrice,
		LowStockThreshold: req.LowStockThreshold,
		LastEditTerminal:  req.TerminalID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.inventoryRepo.Create(item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *InventoryService) Get(id string) (*domain.InventoryItem, error) {
	return s.inventoryRepo.FindByID(id)
}

func (s *InventoryService) List() ([]*domain.InventoryItem, error) {
	return s.inventoryRepo.List()
}

// LowStock returns items at or below their low-stock threshold.
func (s *InventoryService) LowStock() ([]*domain.InventoryItem, error) {
	items, err := s.inventoryRepo.List()
	if err != nil {
		return nil, err
	}

	var low []*domain.InventoryItem
	for _, item := range items {
		if item.Quantity <= item.LowStockThreshold {
			low = append(low, item)
		}
	}
	return low, nil
}

func (s *InventoryService) Update(id string, req *domain.UpdateItemRequest) (*domain.InventoryItem, error) {
	item, err := s.inventoryRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.LowStockThreshold != nil {
		item.LowStockThreshold = *req.LowStockThreshold
	}
	item.LastEditTerminal = req.TerminalID
	item.UpdatedAt = time.Now()

	if err := s.inventoryRepo.Update(item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *InventoryService) Delete(id string) error {
	return s.inventoryRepo.Delete(id)
}

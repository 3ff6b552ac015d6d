package repository

import (
	"context"
	"fmt"

	"pos-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type InventoryRepository interface {
	Create(item *domain.InventoryItem) error
	FindByID(id string) (*domain.InventoryItem, error)
	FindBySKU(sku string) (*domain.InventoryItem, error)
	List() ([]*domain.InventoryItem, error)
	Update(item *domain.InventoryItem) error
	Delete(id string) error
}

type inventoryRepository struct {
	client *kivik.Client
	dbName string
}

func NewInventoryRepository(client *kivik.Client, dbName string) InventoryRepository {
	return &inventoryRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *inventoryRepository) Create(item *domain.InventoryItem) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("item:%s", item.ID)
	_, err := db.Put(context.Background(), docID, item)
	if err != nil {
		return fmt.Errorf("failed to create inventory item: %w", err)
	}

	return nil
}

func (r *inventoryRepository) FindByID(id string) (*domain.InventoryItem, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("item:%s", id)
	row := db.Get(context.Background(), docID)

	var item domain.InventoryItem
	if err := row.ScanDoc(&item); err != nil {
		return nil, fmt.Errorf("item not found")
	}

	return &item, nil
}

func (r *inventoryRepository) FindBySKU(sku string) (*domain.InventoryItem, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"sku": sku,
		},
		"limit": 1,
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query item by sku: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("item not found")
	}

	var item domain.InventoryItem
	if err := rows.ScanDoc(&item); err != nil {
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}

	return &item, nil
}

func (r *inventoryRepository) List() ([]*domain.InventoryItem, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"_id": map[string]interface{}{
				"$gt": "item:",
				"$lt": "item:\ufff0",
			},
			"is_deleted": false,
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var items []*domain.InventoryItem
	for rows.Next() {
		var item domain.InventoryItem
		if err := rows.ScanDoc(&item); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, &item)
	}

	return items, nil
}

func (r *inventoryRepository) Update(item *domain.InventoryItem) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("item:%s", item.ID)
	if err := putWithRev(db, docID, item); err != nil {
		return fmt.Errorf("failed to update inventory item: %w", err)
	}

	return nil
}

func (r *inventoryRepository) Delete(id string) error {
	item, err := r.FindByID(id)
	if err != nil {
		return err
	}

	item.IsDeleted = true
	return r.Update(item)
}

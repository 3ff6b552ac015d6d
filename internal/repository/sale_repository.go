package repository

import (
	"context"
	"fmt"
	"time"

	"pos-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type SaleRepository interface {
	Create(sale *domain.Sale) error
	FindByID(id string) (*domain.Sale, error)
	ListByCashier(cashierID string) ([]*domain.Sale, error)
	ListSince(since time.Time) ([]*domain.Sale, error)
	Update(sale *domain.Sale) error
}

type saleRepository struct {
	client *kivik.Client
	dbName string
}

func NewSaleRepository(client *kivik.Client, dbName string) SaleRepository {
	return &saleRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *saleRepository) Create(sale *domain.Sale) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("sale:%s", sale.ID)
	_, err := db.Put(context.Background(), docID, sale)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	return nil
}

func (r *saleRepository) FindByID(id string) (*domain.Sale, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("sale:%s", id)
	row := db.Get(context.Background(), docID)

	var sale domain.Sale
	if err := row.ScanDoc(&sale); err != nil {
		return nil, fmt.Errorf("sale not found")
	}

	return &sale, nil
}

func (r *saleRepository) ListByCashier(cashierID string) ([]*domain.Sale, error) {
	return r.find(map[string]interface{}{
		"cashier_id": cashierID,
	})
}

func (r *saleRepository) ListSince(since time.Time) ([]*domain.Sale, error) {
	return r.find(map[string]interface{}{
		"created_at": map[string]interface{}{
			"$gt": since,
		},
	})
}

func (r *saleRepository) find(selector map[string]interface{}) ([]*domain.Sale, error) {
	db := r.client.DB(r.dbName)

	selector["_id"] = map[string]interface{}{
		"$gt": "sale:",
		"$lt": "sale:\ufff0",
	}

	rows := db.Find(context.Background(), map[string]interface{}{
		"selector": selector,
	})
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []*domain.Sale
	for rows.Next() {
		var sale domain.Sale
		if err := rows.ScanDoc(&sale); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, &sale)
	}

	return sales, nil
}

func (r *saleRepository) Update(sale *domain.Sale) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("sale:%s", sale.ID)
	if err := putWithRev(db, docID, sale); err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}

	return nil
}

package domain

import "time"

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusVoided    SaleStatus = "voided"
)

type SaleLine struct {
	ItemID    string  `json:"item_id"`
	SKU       string  `json:"sku"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type Sale struct {
	ID         string     `json:"id"`
	CashierID  string     `json:"cashier_id"`
	TerminalID string     `json:"terminal_id"`
	Lines      []SaleLine `json:"lines"`
	Total      float64    `json:"total"`
	Status     SaleStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type RecordSaleRequest struct {
	TerminalID string     `json:"terminal_id" validate:"required"`
	Lines      []SaleLine `json:"lines" validate:"required,min=1,dive"`
	Status     SaleStatus `json:"status" validate:"required,oneof=pending completed voided"`
}

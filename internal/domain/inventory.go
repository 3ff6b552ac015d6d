package domain

import "time"

type InventoryItem struct {
	ID                string    `json:"id"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	Quantity          int64     `json:"quantity"`
	UnitPrice         float64   `json:"unit_price"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	IsDeleted         bool      `json:"is_deleted"`
	LastEditTerminal  string    `json:"last_edit_terminal,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type CreateItemRequest struct {
	SKU               string  `json:"sku" validate:"required"`
	Name              string  `json:"name" validate:"required"`
	Description       string  `json:"description"`
	Quantity          int64   `json:"quantity" validate:"gte=0"`
	UnitPrice         float64 `json:"unit_price" validate:"gte=0"`
	LowStockThreshold int64   `json:"low_stock_threshold" validate:"gte=0"`
	TerminalID        string  `json:"terminal_id"`
}

type UpdateItemRequest struct {
	Name              *string  `json:"name,omitempty"`
	Description       *string  `json:"description,omitempty"`
	Quantity          *int64   `json:"quantity,omitempty"`
	UnitPrice         *float64 `json:"unit_price,omitempty"`
	LowStockThreshold *int64   `json:"low_stock_threshold,omitempty"`
	TerminalID        string   `json:"terminal_id"`
}

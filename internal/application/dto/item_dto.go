package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para crear un ítem del catálogo.
type CreateItemRequest struct {
	SKU         string          `json:"sku" validate:"required,min=1,max=100"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category_id"`
	MinQuantity int64           `json:"min_quantity" validate:"min=0"`
	MaxQuantity int64           `json:"max_quantity" validate:"min=0"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	SupplierID  string          `json:"supplier_id"`
}

// UpdateItemRequest entrada para actualizar un ítem (el SKU no cambia).
type UpdateItemRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	CategoryID  *string          `json:"category_id"`
	MinQuantity *int64           `json:"min_quantity"`
	MaxQuantity *int64           `json:"max_quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	SupplierID  *string          `json:"supplier_id"`
}

// ItemResponse salida de un ítem con su stock agregado y estado.
type ItemResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CategoryID  string          `json:"category_id,omitempty"`
	MinQuantity int64           `json:"min_quantity"`
	MaxQuantity int64           `json:"max_quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	SupplierID  string          `json:"supplier_id,omitempty"`
	OnHand      int64           `json:"on_hand"`
	Status      string          `json:"status"`
	IsDeleted   bool            `json:"is_deleted"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

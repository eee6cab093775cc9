package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	ItemID          string `json:"item_id"`
	FromWarehouseID string `json:"from_warehouse_id"`
	ToWarehouseID   string `json:"to_warehouse_id"`
	Quantity        int64  `json:"quantity"`
}

// TransferResponse registro de traslado.
type TransferResponse struct {
	ID              string    `json:"id"`
	ItemID          string    `json:"item_id"`
	FromWarehouseID string    `json:"from_warehouse_id"`
	ToWarehouseID   string    `json:"to_warehouse_id"`
	Quantity        int64     `json:"quantity"`
	Status          string    `json:"status"`
	CreatedBy       string    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// TransferListResponse historial paginado de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// WithdrawRequest body para POST /api/inventory/withdrawals (salida de stock).
type WithdrawRequest struct {
	ItemID      string `json:"item_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
	Reason      string `json:"reason"`
}

// WithdrawResponse movimiento stock_out registrado.
type WithdrawResponse struct {
	TransactionID string `json:"transaction_id"`
	ItemID        string `json:"item_id"`
	WarehouseID   string `json:"warehouse_id"`
	Quantity      int64  `json:"quantity"`
	Remaining     int64  `json:"remaining"` // disponible en la bodega tras la salida
}

// StockLevelDTO respuesta de GET /api/inventory/stock-levels.
type StockLevelDTO struct {
	ItemID     string `json:"item_id"`
	StockIn    int64  `json:"stock_in"`    // entradas completadas
	StockOut   int64  `json:"stock_out"`   // salidas completadas
	TotalStock int64  `json:"total_stock"` // suma de warehouse_items
	Status     string `json:"status"`
}

// ItemWarehouseStockDTO stock de un ítem en una bodega.
type ItemWarehouseStockDTO struct {
	WarehouseID   string `json:"warehouse_id"`
	WarehouseName string `json:"warehouse_name"`
	Quantity      int64  `json:"quantity"`
	Records       int    `json:"records"` // filas en warehouse_items para el par
}

// ItemStockBreakdownDTO stock de un ítem desglosado por bodega.
type ItemStockBreakdownDTO struct {
	ItemID     string                  `json:"item_id"`
	TotalStock int64                   `json:"total_stock"`
	Status     string                  `json:"status"`
	Warehouses []ItemWarehouseStockDTO `json:"warehouses"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición de un ítem.
type ReplenishmentSuggestionDTO struct {
	Priority          int             `json:"priority"` // 1 = más urgente
	ItemID            string          `json:"item_id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Status            string          `json:"status"`
	CurrentStock      int64           `json:"current_stock"`
	MinQuantity       int64           `json:"min_quantity"`
	IdealStock        int64           `json:"ideal_stock"`
	SuggestedOrderQty int64           `json:"suggested_order_qty"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"`
	SupplierID        string          `json:"supplier_id,omitempty"`
}

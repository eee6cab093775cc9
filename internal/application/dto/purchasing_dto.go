package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderLine línea de una orden de compra. Si TotalPrice es cero se deriva de
// UnitPrice * Quantity.
type PurchaseOrderLine struct {
	ItemID     string          `json:"item_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// PurchaseOrderRequest body para POST /api/purchase-orders.
// InvoiceNo es opcional: si falta se genera uno. TotalQuantity/TotalAmount, si vienen,
// deben coincidir con las líneas.
type PurchaseOrderRequest struct {
	InvoiceNo     string              `json:"invoice_no,omitempty"`
	Items         []PurchaseOrderLine `json:"items"`
	Source        string              `json:"source"`
	TotalQuantity int64               `json:"total_quantity,omitempty"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
}

// LedgerEntryDTO movimiento del libro (tabla transactions).
type LedgerEntryDTO struct {
	ID          string          `json:"id"`
	InvoiceNo   string          `json:"invoice_no"`
	ItemID      string          `json:"item_id"`
	Type        string          `json:"type"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Status      string          `json:"status"`
	WarehouseID string          `json:"warehouse_id,omitempty"`
	Source      string          `json:"source"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PurchaseOrderResponse resultado del registro de un lote. Replayed indica que la factura
// ya existía y no se insertó nada nuevo.
type PurchaseOrderResponse struct {
	InvoiceNo     string           `json:"invoice_no"`
	Source        string           `json:"source"`
	SupplierID    string           `json:"supplier_id,omitempty"`
	TotalQuantity int64            `json:"total_quantity"`
	TotalAmount   decimal.Decimal  `json:"total_amount"`
	Status        string           `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	Replayed      bool             `json:"replayed"`
	Transactions  []LedgerEntryDTO `json:"transactions"`
}

// ShipmentDTO envío entrante.
type ShipmentDTO struct {
	ID            string     `json:"id"`
	TransactionID string     `json:"transaction_id"`
	ItemID        string     `json:"item_id"`
	Quantity      int64      `json:"quantity"`
	Date          time.Time  `json:"date"`
	Status        string     `json:"status"`
	Note          string     `json:"note,omitempty"`
	WarehouseID   string     `json:"warehouse_id,omitempty"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty"`
}

// ShipmentListResponse lista paginada de envíos.
type ShipmentListResponse struct {
	Items []ShipmentDTO `json:"items"`
	Page  PageResponse  `json:"page"`
}

// ReceiveShipmentRequest body para POST /api/shipments/:id/receive.
type ReceiveShipmentRequest struct {
	WarehouseID string `json:"warehouse_id"`
}

// Package events define los mensajes que el libro de stock publica tras cada mutación
// confirmada. Reemplazan las notificaciones implícitas de la interfaz: quien quiera avisar
// al usuario (toast, correo, webhook) se suscribe al tópico.
package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Tipos de evento (header "event-type" en Kafka).
const (
	TypeTransferCompleted     = "transfer.completed"
	TypeStockWithdrawn        = "stock.withdrawn"
	TypePurchaseOrderRecorded = "purchase_order.recorded"
	TypeShipmentDelivered     = "shipment.delivered"
	TypeStockAlert            = "stock.alert"
)

// Event mensaje publicable. AggregateKey define la partición: todos los eventos de un mismo
// ítem (o factura) quedan ordenados entre sí.
type Event interface {
	EventType() string
	AggregateKey() string
}

// TransferCompleted se emite tras confirmar un traslado.
type TransferCompleted struct {
	TransferID      string    `json:"transfer_id"`
	ItemID          string    `json:"item_id"`
	FromWarehouseID string    `json:"from_warehouse_id"`
	ToWarehouseID   string    `json:"to_warehouse_id"`
	Quantity        int64     `json:"quantity"`
	CreatedBy       string    `json:"created_by,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func (TransferCompleted) EventType() string      { return TypeTransferCompleted }
func (e TransferCompleted) AggregateKey() string { return e.ItemID }

// StockWithdrawn salida de stock (stock_out) confirmada.
type StockWithdrawn struct {
	TransactionID string    `json:"transaction_id"`
	ItemID        string    `json:"item_id"`
	WarehouseID   string    `json:"warehouse_id"`
	Quantity      int64     `json:"quantity"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (StockWithdrawn) EventType() string      { return TypeStockWithdrawn }
func (e StockWithdrawn) AggregateKey() string { return e.ItemID }

// PurchaseOrderRecorded lote de compra registrado (solo la primera vez, no en reintentos).
type PurchaseOrderRecorded struct {
	InvoiceNo     string          `json:"invoice_no"`
	Source        string          `json:"source"`
	SupplierID    string          `json:"supplier_id,omitempty"`
	Lines         int             `json:"lines"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func (PurchaseOrderRecorded) EventType() string      { return TypePurchaseOrderRecorded }
func (e PurchaseOrderRecorded) AggregateKey() string { return e.InvoiceNo }

// ShipmentDelivered envío recibido en una bodega.
type ShipmentDelivered struct {
	ShipmentID    string    `json:"shipment_id"`
	TransactionID string    `json:"transaction_id"`
	ItemID        string    `json:"item_id"`
	WarehouseID   string    `json:"warehouse_id"`
	Quantity      int64     `json:"quantity"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (ShipmentDelivered) EventType() string      { return TypeShipmentDelivered }
func (e ShipmentDelivered) AggregateKey() string { return e.ItemID }

// StockAlert el stock agregado de un ítem quedó bajo o agotado tras una mutación.
type StockAlert struct {
	ItemID      string             `json:"item_id"`
	SKU         string             `json:"sku"`
	Status      entity.StockStatus `json:"status"`
	Current     int64              `json:"current"`
	MinQuantity int64              `json:"min_quantity"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

func (StockAlert) EventType() string      { return TypeStockAlert }
func (e StockAlert) AggregateKey() string { return e.ItemID }

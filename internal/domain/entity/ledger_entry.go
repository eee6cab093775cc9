package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro (tabla transactions).
const (
	LedgerTypeStockIn  = "stock_in"  // entrada (compra)
	LedgerTypeStockOut = "stock_out" // salida (venta/consumo)
)

// Estados de un movimiento del libro.
const (
	LedgerStatusPending   = "Pending"
	LedgerStatusCompleted = "Completed"
	LedgerStatusCancelled = "Cancelled"
)

// LedgerEntry es una línea de la tabla transactions. Las entradas de una orden de compra
// comparten InvoiceNo y CreatedAt; LineNo conserva el orden en que se enviaron las líneas.
type LedgerEntry struct {
	ID          string
	InvoiceNo   string
	LineNo      int
	ItemID      string
	Type        string
	Quantity    int64
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	Status      string
	WarehouseID string // vacío mientras la mercancía no tenga bodega asignada
	Source      string
	CreatedBy   string
	CreatedAt   time.Time
}

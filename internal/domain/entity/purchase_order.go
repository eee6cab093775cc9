package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder cabecera de un lote de compra; InvoiceNo es la llave de idempotencia.
type PurchaseOrder struct {
	InvoiceNo     string
	Source        string
	SupplierID    string // vacío si no se resolvió el proveedor
	CreatedBy     string
	TotalQuantity int64
	TotalAmount   decimal.Decimal
	Status        string
	CreatedAt     time.Time
}

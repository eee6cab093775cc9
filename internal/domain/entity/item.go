package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un producto del catálogo (SKU único). Nunca se elimina físicamente:
// IsDeleted marca el borrado lógico, permitido solo con stock agregado en cero.
type Item struct {
	ID          string
	SKU         string
	Name        string
	Description string
	CategoryID  string // vacío si no tiene categoría
	MinQuantity int64  // umbral de stock bajo
	MaxQuantity int64  // 0 = sin tope de sobrestock
	UnitPrice   decimal.Decimal
	SupplierID  string
	IsDeleted   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

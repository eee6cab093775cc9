package purchasing

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx repository.Tx) error) error
}

// OrderLineForPDF línea de la orden enriquecida con datos del catálogo.
type OrderLineForPDF struct {
	Entry    *entity.LedgerEntry
	SKU      string
	ItemName string
}

// OrderPDFGenerator genera el documento PDF de una orden de compra (maroto en producción).
type OrderPDFGenerator interface {
	GenerateOrderPDF(ctx context.Context, order *entity.PurchaseOrder, supplier string, lines []OrderLineForPDF) ([]byte, error)
}

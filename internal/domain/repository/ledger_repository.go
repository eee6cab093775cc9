package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockFlow totales de entradas y salidas completadas de un ítem.
type StockFlow struct {
	StockIn  int64
	StockOut int64
}

// LedgerRepository define el puerto sobre la tabla transactions.
type LedgerRepository interface {
	// CreateMany inserta todas las entradas en una sola escritura.
	CreateMany(ctx context.Context, entries []*entity.LedgerEntry) error
	GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error)
	ListByInvoice(ctx context.Context, invoiceNo string) ([]*entity.LedgerEntry, error)
	UpdateStatus(ctx context.Context, id, status, warehouseID string) error
	FlowByItem(ctx context.Context, itemID string) (StockFlow, error)
	FlowAll(ctx context.Context) (map[string]StockFlow, error)
}

// PurchaseOrderRepository cabeceras de órdenes de compra (llave: invoice_no).
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByInvoice(ctx context.Context, invoiceNo string) (*entity.PurchaseOrder, error)
}

package purchasing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// BatchQueryUseCase consulta y documento PDF de órdenes ya registradas.
type BatchQueryUseCase struct {
	orderRepo    repository.PurchaseOrderRepository
	ledgerRepo   repository.LedgerRepository
	itemRepo     repository.ItemRepository
	supplierRepo repository.SupplierRepository
	pdf          OrderPDFGenerator
}

// NewBatchQueryUseCase construye el caso de uso. pdf puede ser nil si no se exponen documentos.
func NewBatchQueryUseCase(
	orderRepo repository.PurchaseOrderRepository,
	ledgerRepo repository.LedgerRepository,
	itemRepo repository.ItemRepository,
	supplierRepo repository.SupplierRepository,
	pdf OrderPDFGenerator,
) *BatchQueryUseCase {
	return &BatchQueryUseCase{
		orderRepo:    orderRepo,
		ledgerRepo:   ledgerRepo,
		itemRepo:     itemRepo,
		supplierRepo: supplierRepo,
		pdf:          pdf,
	}
}

// GetBatch cabecera y entradas de una factura.
func (uc *BatchQueryUseCase) GetBatch(ctx context.Context, invoiceNo string) (*BatchResult, error) {
	invoiceNo = strings.TrimSpace(invoiceNo)
	if invoiceNo == "" {
		return nil, domain.Invalid("invoice_no", "es obligatorio")
	}
	entries, err := uc.ledgerRepo.ListByInvoice(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("factura %s: %w", invoiceNo, domain.ErrNotFound)
	}
	order, err := uc.orderRepo.GetByInvoice(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		order = orderFromEntries(entries)
	}
	return &BatchResult{Order: order, Transactions: entries}, nil
}

// RenderBatchPDF genera el PDF de la orden con nombres de ítem y proveedor.
func (uc *BatchQueryUseCase) RenderBatchPDF(ctx context.Context, invoiceNo string) ([]byte, error) {
	if uc.pdf == nil {
		return nil, fmt.Errorf("generador de PDF no configurado: %w", domain.ErrConflict)
	}
	batch, err := uc.GetBatch(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	lines := make([]OrderLineForPDF, 0, len(batch.Transactions))
	for _, e := range batch.Transactions {
		line := OrderLineForPDF{Entry: e}
		item, err := uc.itemRepo.GetByID(ctx, e.ItemID)
		if err != nil {
			return nil, err
		}
		if item != nil {
			line.SKU, line.ItemName = item.SKU, item.Name
		}
		lines = append(lines, line)
	}
	return uc.pdf.GenerateOrderPDF(ctx, batch.Order, uc.supplierName(ctx, batch.Order), lines)
}

func (uc *BatchQueryUseCase) supplierName(ctx context.Context, order *entity.PurchaseOrder) string {
	if order.SupplierID == "" || uc.supplierRepo == nil {
		return order.Source
	}
	s, err := uc.supplierRepo.GetByID(ctx, order.SupplierID)
	if err != nil || s == nil {
		return order.Source
	}
	return s.Name
}

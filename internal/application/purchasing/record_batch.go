package purchasing

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/events"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// BatchLine línea de compra. TotalPrice cero se deriva de UnitPrice × Quantity.
type BatchLine struct {
	ItemID     string
	Quantity   int64
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// BatchInput lote de compra. TotalQuantity y TotalAmount son opcionales; si vienen
// distintos de cero deben coincidir con la suma de las líneas.
type BatchInput struct {
	InvoiceNo     string
	Lines         []BatchLine
	Source        string
	CreatedBy     string
	TotalQuantity int64
	TotalAmount   decimal.Decimal
}

// BatchResult resultado del registro. Replayed indica que la factura ya existía: se
// devuelven las entradas originales y no se escribe nada.
type BatchResult struct {
	Order        *entity.PurchaseOrder
	Transactions []*entity.LedgerEntry
	Replayed     bool
}

// invoicePattern caracteres admitidos en un número de factura. Viaja en rutas y en el nombre
// del PDF, así que no admite separadores ni comillas.
var invoicePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// RecordBatchUseCase registra órdenes de compra en el libro de forma idempotente por factura.
type RecordBatchUseCase struct {
	txRunner  TxRunner
	invoices  *InvoiceNumberGenerator
	suppliers *SupplierMatcher
	effects   *ports.AfterCommit
	log       *logger.Logger
	now       func() time.Time
}

// NewRecordBatchUseCase construye el caso de uso.
func NewRecordBatchUseCase(
	txRunner TxRunner,
	invoices *InvoiceNumberGenerator,
	suppliers *SupplierMatcher,
	effects *ports.AfterCommit,
	log *logger.Logger,
) *RecordBatchUseCase {
	return &RecordBatchUseCase{
		txRunner:  txRunner,
		invoices:  invoices,
		suppliers: suppliers,
		effects:   effects,
		log:       log,
		now:       time.Now,
	}
}

// RecordBatch valida el lote completo antes de escribir y en una sola transacción crea la
// cabecera, una entrada stock_in Pending por línea (misma factura, misma fecha y LineNo en el
// orden recibido) y un envío Pending por línea. Un segundo llamado con la misma factura
// devuelve lo ya registrado con Replayed=true, aunque el catálogo haya cambiado después; los
// ítems y el proveedor (best-effort) solo se resuelven para facturas nuevas.
func (uc *RecordBatchUseCase) RecordBatch(ctx context.Context, in BatchInput) (*BatchResult, error) {
	lines, totalQty, totalAmount, err := normalizeLines(in)
	if err != nil {
		return nil, err
	}
	invoiceNo := strings.TrimSpace(in.InvoiceNo)
	if invoiceNo == "" {
		invoiceNo = uc.invoices.Next()
	} else if !invoicePattern.MatchString(invoiceNo) {
		return nil, domain.Invalid("invoice_no", "solo admite letras, dígitos, '.', '_' y '-' (máx. 64)")
	}
	source := strings.TrimSpace(in.Source)
	now := uc.now()

	result := &BatchResult{}
	err = uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		if err := tx.Locker.Lock(ctx, inventory.InvoiceKey(invoiceNo)); err != nil {
			return err
		}
		existing, err := tx.Ledger.ListByInvoice(ctx, invoiceNo)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			prev, err := tx.Orders.GetByInvoice(ctx, invoiceNo)
			if err != nil {
				return err
			}
			if prev == nil {
				prev = orderFromEntries(existing)
			}
			result.Order, result.Transactions, result.Replayed = prev, existing, true
			return nil
		}

		for _, id := range uniqueItems(lines) {
			if _, err := appinv.LoadItem(ctx, tx.Items, id); err != nil {
				return err
			}
		}
		order := &entity.PurchaseOrder{
			InvoiceNo:     invoiceNo,
			Source:        source,
			SupplierID:    uc.suppliers.Match(ctx, source),
			CreatedBy:     in.CreatedBy,
			TotalQuantity: totalQty,
			TotalAmount:   totalAmount,
			Status:        entity.LedgerStatusPending,
			CreatedAt:     now,
		}
		entries, shipments := batchRows(order, lines)
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		if err := tx.Ledger.CreateMany(ctx, entries); err != nil {
			return err
		}
		if err := tx.Shipments.CreateMany(ctx, shipments); err != nil {
			return err
		}
		result.Order, result.Transactions = order, entries
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.effects.Metrics().BatchRecorded(len(result.Transactions), result.Replayed)
	if result.Replayed {
		uc.log.Info().Str("invoice_no", invoiceNo).Msg("orden de compra ya registrada, se devuelve la existente")
		return result, nil
	}
	order := result.Order
	uc.log.Info().
		Str("invoice_no", invoiceNo).
		Str("supplier_id", order.SupplierID).
		Int("lines", len(result.Transactions)).
		Int64("total_quantity", totalQty).
		Msg("orden de compra registrada")
	uc.effects.Apply(ctx, events.PurchaseOrderRecorded{
		InvoiceNo:     invoiceNo,
		Source:        source,
		SupplierID:    order.SupplierID,
		Lines:         len(result.Transactions),
		TotalQuantity: totalQty,
		TotalAmount:   totalAmount,
		OccurredAt:    now,
	})
	return result, nil
}

// batchRows arma una entrada del libro y un envío por línea.
func batchRows(order *entity.PurchaseOrder, lines []BatchLine) ([]*entity.LedgerEntry, []*entity.Shipment) {
	entries := make([]*entity.LedgerEntry, 0, len(lines))
	shipments := make([]*entity.Shipment, 0, len(lines))
	for i, l := range lines {
		e := &entity.LedgerEntry{
			ID:         uuid.New().String(),
			InvoiceNo:  order.InvoiceNo,
			LineNo:     i + 1,
			ItemID:     l.ItemID,
			Type:       entity.LedgerTypeStockIn,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: l.TotalPrice,
			Status:     entity.LedgerStatusPending,
			Source:     order.Source,
			CreatedBy:  order.CreatedBy,
			CreatedAt:  order.CreatedAt,
		}
		entries = append(entries, e)
		shipments = append(shipments, &entity.Shipment{
			ID:            uuid.New().String(),
			TransactionID: e.ID,
			ItemID:        l.ItemID,
			Quantity:      l.Quantity,
			Date:          order.CreatedAt,
			Status:        entity.ShipmentStatusPending,
			Note:          "Factura " + order.InvoiceNo,
		})
	}
	return entries, shipments
}

// normalizeLines valida todas las líneas y deriva los totales faltantes. Los precios se
// redondean a centavos antes de validar, igual que los guarda la columna NUMERIC(14,2).
func normalizeLines(in BatchInput) ([]BatchLine, int64, decimal.Decimal, error) {
	if strings.TrimSpace(in.Source) == "" {
		return nil, 0, decimal.Zero, domain.Invalid("source", "es obligatorio")
	}
	if len(in.Lines) == 0 {
		return nil, 0, decimal.Zero, domain.Invalid("items", "debe tener al menos una línea")
	}
	out := make([]BatchLine, 0, len(in.Lines))
	var qty int64
	amount := decimal.Zero
	for i, l := range in.Lines {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(l.ItemID) == "" {
			return nil, 0, decimal.Zero, domain.Invalid(field+".item_id", "es obligatorio")
		}
		if l.Quantity <= 0 {
			return nil, 0, decimal.Zero, domain.Invalid(field+".quantity", "debe ser mayor que cero")
		}
		l.UnitPrice = l.UnitPrice.Round(2)
		l.TotalPrice = l.TotalPrice.Round(2)
		if l.UnitPrice.IsNegative() {
			return nil, 0, decimal.Zero, domain.Invalid(field+".unit_price", "no puede ser negativo")
		}
		if l.TotalPrice.IsZero() {
			l.TotalPrice = l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
		}
		if !l.TotalPrice.IsPositive() {
			return nil, 0, decimal.Zero, domain.Invalid(field+".total_price", "debe ser mayor que cero")
		}
		qty += l.Quantity
		amount = amount.Add(l.TotalPrice)
		out = append(out, l)
	}
	if in.TotalQuantity != 0 && in.TotalQuantity != qty {
		return nil, 0, decimal.Zero, domain.Invalid("total_quantity",
			fmt.Sprintf("no coincide con las líneas (%d)", qty))
	}
	if !in.TotalAmount.IsZero() && !in.TotalAmount.Round(2).Equal(amount) {
		return nil, 0, decimal.Zero, domain.Invalid("total_amount",
			fmt.Sprintf("no coincide con las líneas (%s)", amount.String()))
	}
	return out, qty, amount, nil
}

func uniqueItems(lines []BatchLine) []string {
	seen := make(map[string]bool, len(lines))
	var out []string
	for _, l := range lines {
		if !seen[l.ItemID] {
			seen[l.ItemID] = true
			out = append(out, l.ItemID)
		}
	}
	return out
}

// orderFromEntries reconstruye la cabecera de facturas anteriores a purchase_orders.
func orderFromEntries(entries []*entity.LedgerEntry) *entity.PurchaseOrder {
	o := &entity.PurchaseOrder{
		InvoiceNo:   entries[0].InvoiceNo,
		Source:      entries[0].Source,
		CreatedBy:   entries[0].CreatedBy,
		CreatedAt:   entries[0].CreatedAt,
		Status:      entity.LedgerStatusPending,
		TotalAmount: decimal.Zero,
	}
	for _, e := range entries {
		o.TotalQuantity += e.Quantity
		o.TotalAmount = o.TotalAmount.Add(e.TotalPrice)
	}
	return o
}

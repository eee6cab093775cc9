package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.LedgerRepository        = (*LedgerRepo)(nil)
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
)

const ledgerColumns = `id, invoice_no, line_no, item_id, type, quantity, unit_price, total_price, status,
	warehouse_id, source, created_by, created_at`

// LedgerRepo implementación de LedgerRepository sobre la tabla transactions.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador del libro.
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// CreateMany inserta las entradas con COPY; dentro de la tx del lote es todo o nada.
func (r *LedgerRepo) CreateMany(ctx context.Context, entries []*entity.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			return wrap("copy transactions", fmt.Errorf("id %q: %w", e.ID, err))
		}
		itemID, err := uuid.Parse(e.ItemID)
		if err != nil {
			return wrap("copy transactions", fmt.Errorf("item_id %q: %w", e.ItemID, err))
		}
		var warehouseID *uuid.UUID
		if e.WarehouseID != "" {
			wh, err := uuid.Parse(e.WarehouseID)
			if err != nil {
				return wrap("copy transactions", fmt.Errorf("warehouse_id %q: %w", e.WarehouseID, err))
			}
			warehouseID = &wh
		}
		rows = append(rows, []any{
			id, nullable(e.InvoiceNo), int32(e.LineNo), itemID, e.Type, e.Quantity, e.UnitPrice, e.TotalPrice,
			e.Status, warehouseID, e.Source, e.CreatedBy, e.CreatedAt,
		})
	}
	_, err := r.q.CopyFrom(ctx, pgx.Identifier{"transactions"},
		[]string{"id", "invoice_no", "line_no", "item_id", "type", "quantity", "unit_price", "total_price",
			"status", "warehouse_id", "source", "created_by", "created_at"},
		pgx.CopyFromRows(rows),
	)
	return wrap("copy transactions", err)
}

// GetByID obtiene una entrada del libro.
func (r *LedgerRepo) GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error) {
	if !validID(id) {
		return nil, nil
	}
	e, err := scanLedger(r.q.QueryRow(ctx, `SELECT `+ledgerColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrap("get transaction", err)
	}
	return e, nil
}

// ListByInvoice entradas de una orden en el orden en que se enviaron las líneas.
func (r *LedgerRepo) ListByInvoice(ctx context.Context, invoiceNo string) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+ledgerColumns+` FROM transactions WHERE invoice_no = $1 ORDER BY line_no, id`, invoiceNo)
	if err != nil {
		return nil, wrap("list transactions", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanLedger(rows)
		if err != nil {
			return nil, wrap("scan transaction", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list transactions", err)
	}
	return list, nil
}

// UpdateStatus cambia el estado; warehouseID vacío conserva la bodega actual.
func (r *LedgerRepo) UpdateStatus(ctx context.Context, id, status, warehouseID string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE transactions SET status = $2, warehouse_id = COALESCE($3, warehouse_id) WHERE id = $1`,
		id, status, nullable(warehouseID))
	if err != nil {
		return wrap("update transaction", err)
	}
	if cmd.RowsAffected() == 0 {
		return notFound("transaction", id)
	}
	return nil
}

const flowSelect = `
	SELECT item_id,
		COALESCE(SUM(quantity) FILTER (WHERE type = 'stock_in'), 0)::bigint,
		COALESCE(SUM(quantity) FILTER (WHERE type = 'stock_out'), 0)::bigint
	FROM transactions
	WHERE status = 'Completed'`

// FlowByItem entradas y salidas completadas de un ítem.
func (r *LedgerRepo) FlowByItem(ctx context.Context, itemID string) (repository.StockFlow, error) {
	if !validID(itemID) {
		return repository.StockFlow{}, nil
	}
	var (
		id   string
		flow repository.StockFlow
	)
	err := r.q.QueryRow(ctx, flowSelect+` AND item_id = $1 GROUP BY item_id`, itemID).
		Scan(&id, &flow.StockIn, &flow.StockOut)
	if err != nil && !noRows(err) {
		return repository.StockFlow{}, wrap("flow transactions", err)
	}
	return flow, nil
}

// FlowAll entradas y salidas completadas por ítem.
func (r *LedgerRepo) FlowAll(ctx context.Context) (map[string]repository.StockFlow, error) {
	rows, err := r.q.Query(ctx, flowSelect+` GROUP BY item_id`)
	if err != nil {
		return nil, wrap("flow transactions", err)
	}
	defer rows.Close()
	out := make(map[string]repository.StockFlow)
	for rows.Next() {
		var (
			id   string
			flow repository.StockFlow
		)
		if err := rows.Scan(&id, &flow.StockIn, &flow.StockOut); err != nil {
			return nil, wrap("scan flow", err)
		}
		out[id] = flow
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("flow transactions", err)
	}
	return out, nil
}

func scanLedger(row pgx.Row) (*entity.LedgerEntry, error) {
	var (
		e                  entity.LedgerEntry
		invoice, warehouse *string
	)
	if err := row.Scan(&e.ID, &invoice, &e.LineNo, &e.ItemID, &e.Type, &e.Quantity, &e.UnitPrice, &e.TotalPrice,
		&e.Status, &warehouse, &e.Source, &e.CreatedBy, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.InvoiceNo, e.WarehouseID = deref(invoice), deref(warehouse)
	return &e, nil
}

// PurchaseOrderRepo cabeceras de órdenes de compra.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador de órdenes.
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create persiste la cabecera; una factura repetida devuelve ErrDuplicate.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (invoice_no, source, supplier_id, created_by, total_quantity,
			total_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		o.InvoiceNo, o.Source, nullable(o.SupplierID), o.CreatedBy, o.TotalQuantity,
		o.TotalAmount, o.Status, o.CreatedAt,
	)
	return wrap("insert purchase_order", err)
}

// GetByInvoice devuelve (nil, nil) si la factura no existe.
func (r *PurchaseOrderRepo) GetByInvoice(ctx context.Context, invoiceNo string) (*entity.PurchaseOrder, error) {
	query := `
		SELECT invoice_no, source, supplier_id, created_by, total_quantity, total_amount, status, created_at
		FROM purchase_orders WHERE invoice_no = $1`
	var (
		o        entity.PurchaseOrder
		supplier *string
	)
	err := r.q.QueryRow(ctx, query, invoiceNo).Scan(&o.InvoiceNo, &o.Source, &supplier, &o.CreatedBy,
		&o.TotalQuantity, &o.TotalAmount, &o.Status, &o.CreatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrap("get purchase_order", err)
	}
	o.SupplierID = deref(supplier)
	return &o, nil
}

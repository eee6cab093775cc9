package postgres

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

const stockColumns = `id, item_id, warehouse_id, quantity, created_at, updated_at`

// StockRecordRepo implementación de StockRecordRepository sobre warehouse_items
// (usable con pool o tx). El orden (created_at, id) es el del plan de descuento.
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

// ListByPairForUpdate registros del par bloqueados con SELECT ... FOR UPDATE.
func (r *StockRecordRepo) ListByPairForUpdate(ctx context.Context, itemID, warehouseID string) ([]entity.StockRecord, error) {
	if !validID(itemID, warehouseID) {
		return nil, nil
	}
	query := `
		SELECT ` + stockColumns + ` FROM warehouse_items
		WHERE item_id = $1 AND warehouse_id = $2
		ORDER BY created_at, id
		FOR UPDATE`
	return r.query(ctx, "list warehouse_items for update", query, itemID, warehouseID)
}

func (r *StockRecordRepo) ListByItem(ctx context.Context, itemID string) ([]entity.StockRecord, error) {
	if !validID(itemID) {
		return nil, nil
	}
	return r.query(ctx, "list warehouse_items",
		`SELECT `+stockColumns+` FROM warehouse_items WHERE item_id = $1 ORDER BY created_at, id`, itemID)
}

func (r *StockRecordRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]entity.StockRecord, error) {
	if !validID(warehouseID) {
		return nil, nil
	}
	return r.query(ctx, "list warehouse_items",
		`SELECT `+stockColumns+` FROM warehouse_items WHERE warehouse_id = $1 ORDER BY created_at, id`, warehouseID)
}

func (r *StockRecordRepo) ListAll(ctx context.Context) ([]entity.StockRecord, error) {
	return r.query(ctx, "list warehouse_items",
		`SELECT `+stockColumns+` FROM warehouse_items ORDER BY created_at, id`)
}

// Insert crea un registro; el CHECK quantity > 0 rechaza ceros y negativos.
func (r *StockRecordRepo) Insert(ctx context.Context, rec *entity.StockRecord) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO warehouse_items (`+stockColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.ItemID, rec.WarehouseID, rec.Quantity, rec.CreatedAt, rec.UpdatedAt,
	)
	return wrap("insert warehouse_items", err)
}

func (r *StockRecordRepo) UpdateQuantity(ctx context.Context, id string, quantity int64, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE warehouse_items SET quantity = $2, updated_at = $3 WHERE id = $1`, id, quantity, at)
	if err != nil {
		return wrap("update warehouse_items", err)
	}
	if cmd.RowsAffected() == 0 {
		return notFound("warehouse_items", id)
	}
	return nil
}

func (r *StockRecordRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM warehouse_items WHERE id = $1`, id)
	return wrap("delete warehouse_items", err)
}

func (r *StockRecordRepo) SumByWarehouse(ctx context.Context, warehouseID string) (int64, error) {
	if !validID(warehouseID) {
		return 0, nil
	}
	var total int64
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)::bigint FROM warehouse_items WHERE warehouse_id = $1`,
		warehouseID).Scan(&total)
	if err != nil {
		return 0, wrap("sum warehouse_items", err)
	}
	return total, nil
}

func (r *StockRecordRepo) query(ctx context.Context, op, query string, args ...any) ([]entity.StockRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()
	var list []entity.StockRecord
	for rows.Next() {
		var s entity.StockRecord
		if err := rows.Scan(&s.ID, &s.ItemID, &s.WarehouseID, &s.Quantity, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, wrap("scan warehouse_items", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return list, nil
}

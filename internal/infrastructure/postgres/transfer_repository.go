package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo log append-only de traslados.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de traslados.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create agrega una entrada al log.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `
		INSERT INTO transfers (id, item_id, from_warehouse_id, to_warehouse_id, quantity, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ItemID, t.FromWarehouseID, t.ToWarehouseID, t.Quantity, t.Status, t.CreatedBy, t.CreatedAt,
	)
	return wrap("insert transfer", err)
}

// List historial filtrado, más recientes primero.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	if (f.ItemID != "" && !validID(f.ItemID)) || (f.WarehouseID != "" && !validID(f.WarehouseID)) {
		return nil, nil
	}
	var (
		where []string
		args  []any
	)
	if f.ItemID != "" {
		args = append(args, f.ItemID)
		where = append(where, fmt.Sprintf("item_id = $%d", len(args)))
	}
	if f.WarehouseID != "" {
		args = append(args, f.WarehouseID)
		where = append(where, fmt.Sprintf("(from_warehouse_id = $%d OR to_warehouse_id = $%d)", len(args), len(args)))
	}
	query := `SELECT id, item_id, from_warehouse_id, to_warehouse_id, quantity, status, created_by, created_at FROM transfers`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list transfers", err)
	}
	defer rows.Close()
	var list []*entity.Transfer
	for rows.Next() {
		var t entity.Transfer
		if err := rows.Scan(&t.ID, &t.ItemID, &t.FromWarehouseID, &t.ToWarehouseID,
			&t.Quantity, &t.Status, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, wrap("scan transfer", err)
		}
		list = append(list, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list transfers", err)
	}
	return list, nil
}

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ShipmentRepository = (*ShipmentRepo)(nil)

const shipmentColumns = `id, transaction_id, item_id, quantity, date, status, note, warehouse_id, delivered_at`

// ShipmentRepo implementación de ShipmentRepository sobre PostgreSQL.
type ShipmentRepo struct {
	q Querier
}

// NewShipmentRepository construye el adaptador de envíos.
func NewShipmentRepository(q Querier) *ShipmentRepo {
	return &ShipmentRepo{q: q}
}

// CreateMany inserta los envíos en un solo round-trip (pgx.Batch).
func (r *ShipmentRepo) CreateMany(ctx context.Context, shipments []*entity.Shipment) error {
	if len(shipments) == 0 {
		return nil
	}
	query := `INSERT INTO shipments (` + shipmentColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	batch := &pgx.Batch{}
	for _, s := range shipments {
		batch.Queue(query, s.ID, s.TransactionID, s.ItemID, s.Quantity, s.Date, s.Status, s.Note,
			nullable(s.WarehouseID), s.DeliveredAt)
	}
	br := r.q.SendBatch(ctx, batch)
	for range shipments {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return wrap("insert shipment", err)
		}
	}
	return wrap("insert shipment", br.Close())
}

func (r *ShipmentRepo) GetByID(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.getOne(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id)
}

func (r *ShipmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.getOne(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1 FOR UPDATE`, id)
}

func (r *ShipmentRepo) getOne(ctx context.Context, query, id string) (*entity.Shipment, error) {
	if !validID(id) {
		return nil, nil
	}
	s, err := scanShipment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrap("get shipment", err)
	}
	return s, nil
}

// MarkDelivered pasa el envío a Delivered en la bodega indicada.
func (r *ShipmentRepo) MarkDelivered(ctx context.Context, id, warehouseID string, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE shipments SET status = $2, warehouse_id = $3, delivered_at = $4 WHERE id = $1`,
		id, entity.ShipmentStatusDelivered, warehouseID, at)
	if err != nil {
		return wrap("update shipment", err)
	}
	if cmd.RowsAffected() == 0 {
		return notFound("shipment", id)
	}
	return nil
}

// CountPendingByItem cuenta envíos Pending del ítem.
func (r *ShipmentRepo) CountPendingByItem(ctx context.Context, itemID string) (int, error) {
	if !validID(itemID) {
		return 0, nil
	}
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM shipments WHERE item_id = $1 AND status = $2`,
		itemID, entity.ShipmentStatusPending).Scan(&n)
	if err != nil {
		return 0, wrap("count shipments", err)
	}
	return n, nil
}

// List envíos por fecha descendente; status vacío lista todos.
func (r *ShipmentRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Shipment, error) {
	query := `
		SELECT ` + shipmentColumns + ` FROM shipments
		WHERE ($1 = '' OR status = $1)
		ORDER BY date DESC, id
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, wrap("list shipments", err)
	}
	defer rows.Close()
	var list []*entity.Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, wrap("scan shipment", err)
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list shipments", err)
	}
	return list, nil
}

func scanShipment(row pgx.Row) (*entity.Shipment, error) {
	var (
		s         entity.Shipment
		warehouse *string
	)
	if err := row.Scan(&s.ID, &s.TransactionID, &s.ItemID, &s.Quantity, &s.Date, &s.Status, &s.Note,
		&warehouse, &s.DeliveredAt); err != nil {
		return nil, err
	}
	s.WarehouseID = deref(warehouse)
	return &s, nil
}

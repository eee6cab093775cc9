package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.StockRecordRepository   = (*StockRecordRepo)(nil)
	_ repository.TransferRepository      = (*TransferRepo)(nil)
	_ repository.LedgerRepository        = (*LedgerRepo)(nil)
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
	_ repository.ShipmentRepository      = (*ShipmentRepo)(nil)
)

// errCheckQuantity imita el CHECK (quantity > 0) de warehouse_items.
var errCheckQuantity = errors.New("warehouse_items_quantity_check: quantity debe ser > 0")

// StockRecordRepo warehouse_items en memoria.
type StockRecordRepo struct{ v *view }

func (r *StockRecordRepo) ListByPairForUpdate(ctx context.Context, itemID, warehouseID string) ([]entity.StockRecord, error) {
	return r.list(ctx, "stock.list_pair", func(rec entity.StockRecord) bool {
		return rec.ItemID == itemID && rec.WarehouseID == warehouseID
	})
}

func (r *StockRecordRepo) ListByItem(ctx context.Context, itemID string) ([]entity.StockRecord, error) {
	return r.list(ctx, "stock.list", func(rec entity.StockRecord) bool { return rec.ItemID == itemID })
}

func (r *StockRecordRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]entity.StockRecord, error) {
	return r.list(ctx, "stock.list", func(rec entity.StockRecord) bool { return rec.WarehouseID == warehouseID })
}

func (r *StockRecordRepo) ListAll(ctx context.Context) ([]entity.StockRecord, error) {
	return r.list(ctx, "stock.list", func(entity.StockRecord) bool { return true })
}

func (r *StockRecordRepo) list(ctx context.Context, op string, keep func(entity.StockRecord) bool) ([]entity.StockRecord, error) {
	var out []entity.StockRecord
	err := r.v.read(ctx, op, func(d *state) {
		for _, rec := range d.stock {
			if keep(rec) {
				out = append(out, rec)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *StockRecordRepo) Insert(ctx context.Context, rec *entity.StockRecord) error {
	return r.v.write(ctx, "stock.insert", func(d *state) error {
		if rec.Quantity <= 0 {
			return &domain.DataIntegrityError{Entity: "warehouse_items", ID: rec.ID, Detail: errCheckQuantity.Error()}
		}
		if _, ok := d.stock[rec.ID]; ok {
			return fmt.Errorf("warehouse_items %s: %w", rec.ID, domain.ErrDuplicate)
		}
		d.stock[rec.ID] = *rec
		return nil
	})
}

func (r *StockRecordRepo) UpdateQuantity(ctx context.Context, id string, quantity int64, at time.Time) error {
	return r.v.write(ctx, "stock.update", func(d *state) error {
		if quantity <= 0 {
			return &domain.DataIntegrityError{Entity: "warehouse_items", ID: id, Detail: errCheckQuantity.Error()}
		}
		rec, ok := d.stock[id]
		if !ok {
			return fmt.Errorf("warehouse_items %s: %w", id, domain.ErrNotFound)
		}
		rec.Quantity = quantity
		rec.UpdatedAt = at
		d.stock[id] = rec
		return nil
	})
}

func (r *StockRecordRepo) Delete(ctx context.Context, id string) error {
	return r.v.write(ctx, "stock.delete", func(d *state) error {
		delete(d.stock, id)
		return nil
	})
}

func (r *StockRecordRepo) SumByWarehouse(ctx context.Context, warehouseID string) (int64, error) {
	var total int64
	err := r.v.read(ctx, "stock.sum", func(d *state) {
		for _, rec := range d.stock {
			if rec.WarehouseID == warehouseID {
				total += rec.Quantity
			}
		}
	})
	return total, err
}

// TransferRepo log de traslados en memoria (solo append).
type TransferRepo struct{ v *view }

func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	return r.v.write(ctx, "transfers.create", func(d *state) error {
		d.transfers = append(d.transfers, *t)
		return nil
	})
}

func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	var out []*entity.Transfer
	err := r.v.read(ctx, "transfers.list", func(d *state) {
		for _, t := range d.transfers {
			if f.ItemID != "" && t.ItemID != f.ItemID {
				continue
			}
			if f.WarehouseID != "" && t.FromWarehouseID != f.WarehouseID && t.ToWarehouseID != f.WarehouseID {
				continue
			}
			out = append(out, &t)
		}
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

// LedgerRepo tabla transactions en memoria.
type LedgerRepo struct{ v *view }

func (r *LedgerRepo) CreateMany(ctx context.Context, entries []*entity.LedgerEntry) error {
	return r.v.write(ctx, "ledger.create", func(d *state) error {
		for _, e := range entries {
			d.ledger = append(d.ledger, *e)
		}
		return nil
	})
}

func (r *LedgerRepo) GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error) {
	var out *entity.LedgerEntry
	err := r.v.read(ctx, "ledger.get", func(d *state) {
		for _, e := range d.ledger {
			if e.ID == id {
				out = &e
				return
			}
		}
	})
	return out, err
}

func (r *LedgerRepo) ListByInvoice(ctx context.Context, invoiceNo string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	err := r.v.read(ctx, "ledger.list", func(d *state) {
		for _, e := range d.ledger {
			if e.InvoiceNo != "" && e.InvoiceNo == invoiceNo {
				out = append(out, &e)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].LineNo < out[j].LineNo })
	return out, err
}

func (r *LedgerRepo) UpdateStatus(ctx context.Context, id, status, warehouseID string) error {
	return r.v.write(ctx, "ledger.update", func(d *state) error {
		for i := range d.ledger {
			if d.ledger[i].ID == id {
				d.ledger[i].Status = status
				if warehouseID != "" {
					d.ledger[i].WarehouseID = warehouseID
				}
				return nil
			}
		}
		return fmt.Errorf("transaction %s: %w", id, domain.ErrNotFound)
	})
}

func (r *LedgerRepo) FlowByItem(ctx context.Context, itemID string) (repository.StockFlow, error) {
	all, err := r.FlowAll(ctx)
	if err != nil {
		return repository.StockFlow{}, err
	}
	return all[itemID], nil
}

func (r *LedgerRepo) FlowAll(ctx context.Context) (map[string]repository.StockFlow, error) {
	out := make(map[string]repository.StockFlow)
	err := r.v.read(ctx, "ledger.flow", func(d *state) {
		for _, e := range d.ledger {
			if e.Status != entity.LedgerStatusCompleted {
				continue
			}
			f := out[e.ItemID]
			switch e.Type {
			case entity.LedgerTypeStockIn:
				f.StockIn += e.Quantity
			case entity.LedgerTypeStockOut:
				f.StockOut += e.Quantity
			}
			out[e.ItemID] = f
		}
	})
	return out, err
}

// PurchaseOrderRepo cabeceras de órdenes de compra en memoria.
type PurchaseOrderRepo struct{ v *view }

func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	return r.v.write(ctx, "orders.create", func(d *state) error {
		if _, ok := d.orders[o.InvoiceNo]; ok {
			return fmt.Errorf("purchase_order %s: %w", o.InvoiceNo, domain.ErrDuplicate)
		}
		d.orders[o.InvoiceNo] = *o
		return nil
	})
}

func (r *PurchaseOrderRepo) GetByInvoice(ctx context.Context, invoiceNo string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := r.v.read(ctx, "orders.get", func(d *state) {
		if o, ok := d.orders[invoiceNo]; ok {
			out = &o
		}
	})
	return out, err
}

// ShipmentRepo envíos entrantes en memoria.
type ShipmentRepo struct{ v *view }

func (r *ShipmentRepo) CreateMany(ctx context.Context, shipments []*entity.Shipment) error {
	return r.v.write(ctx, "shipments.create", func(d *state) error {
		for _, s := range shipments {
			d.shipments[s.ID] = *s
		}
		return nil
	})
}

func (r *ShipmentRepo) GetByID(ctx context.Context, id string) (*entity.Shipment, error) {
	return r.GetForUpdate(ctx, id)
}

func (r *ShipmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error) {
	var out *entity.Shipment
	err := r.v.read(ctx, "shipments.get", func(d *state) {
		if s, ok := d.shipments[id]; ok {
			out = &s
		}
	})
	return out, err
}

func (r *ShipmentRepo) MarkDelivered(ctx context.Context, id, warehouseID string, at time.Time) error {
	return r.v.write(ctx, "shipments.update", func(d *state) error {
		s, ok := d.shipments[id]
		if !ok {
			return fmt.Errorf("shipment %s: %w", id, domain.ErrNotFound)
		}
		s.Status = entity.ShipmentStatusDelivered
		s.WarehouseID = warehouseID
		s.DeliveredAt = &at
		d.shipments[id] = s
		return nil
	})
}

func (r *ShipmentRepo) CountPendingByItem(ctx context.Context, itemID string) (int, error) {
	n := 0
	err := r.v.read(ctx, "shipments.count", func(d *state) {
		for _, s := range d.shipments {
			if s.ItemID == itemID && s.Status == entity.ShipmentStatusPending {
				n++
			}
		}
	})
	return n, err
}

func (r *ShipmentRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Shipment, error) {
	var out []*entity.Shipment
	err := r.v.read(ctx, "shipments.list", func(d *state) {
		for _, s := range d.shipments {
			if status == "" || s.Status == status {
				out = append(out, &s)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), nil
}

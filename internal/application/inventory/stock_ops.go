package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Operaciones sobre warehouse_items compartidas por traslados, salidas y recepción de envíos.
// Todas asumen que el llamador ya tomó el lock del par dentro de la transacción.

// ApplyDecrement persiste un plan de descuento: actualiza los registros con saldo y elimina
// los que quedaron en cero.
func ApplyDecrement(ctx context.Context, stock repository.StockRecordRepository, plan inventory.DecrementPlan, at time.Time) error {
	for _, u := range plan.Updates {
		if err := stock.UpdateQuantity(ctx, u.RecordID, u.Quantity, at); err != nil {
			return err
		}
	}
	for _, id := range plan.Deletions {
		if err := stock.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Deposit suma quantity al par (ítem, bodega): incrementa el primer registro existente en
// orden determinista o inserta uno nuevo. Nunca crea un registro adicional si ya hay uno.
func Deposit(ctx context.Context, stock repository.StockRecordRepository, itemID, warehouseID string, quantity int64, at time.Time) error {
	if quantity <= 0 {
		return domain.Invalid("quantity", "debe ser mayor que cero")
	}
	records, err := stock.ListByPairForUpdate(ctx, itemID, warehouseID)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.Quantity <= 0 {
			return &domain.DataIntegrityError{
				Entity: "warehouse_items", ID: r.ID, Detail: "registro persistido con cantidad no positiva",
			}
		}
	}
	if len(records) > 0 {
		return stock.UpdateQuantity(ctx, records[0].ID, records[0].Quantity+quantity, at)
	}
	return stock.Insert(ctx, &entity.StockRecord{
		ID:          uuid.New().String(),
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Quantity:    quantity,
		CreatedAt:   at,
		UpdatedAt:   at,
	})
}

// CheckCapacity verifica que incoming unidades quepan en la bodega. MaxCapacity 0 significa
// sin tope. El llamador debe tener el lock de la bodega (inventory.WarehouseKey).
func CheckCapacity(ctx context.Context, stock repository.StockRecordRepository, wh *entity.Warehouse, incoming int64) error {
	if wh.MaxCapacity <= 0 {
		return nil
	}
	used, err := stock.SumByWarehouse(ctx, wh.ID)
	if err != nil {
		return err
	}
	if used+incoming > wh.MaxCapacity {
		return &domain.CapacityExceededError{
			WarehouseID: wh.ID, MaxCapacity: wh.MaxCapacity, Used: used, Incoming: incoming,
		}
	}
	return nil
}

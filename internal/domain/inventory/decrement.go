package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RecordUpdate nueva cantidad de un registro que sigue con saldo.
type RecordUpdate struct {
	RecordID string
	Quantity int64
}

// DecrementPlan resultado de repartir una salida sobre varios registros de origen.
type DecrementPlan struct {
	Updates   []RecordUpdate
	Deletions []string // registros que quedan en cero
	Removed   int64
	Available int64
}

// PlanDecrement reparte quantity sobre records en el orden recibido (voraz): a cada
// registro le resta min(saldo, restante); los que llegan a cero se eliminan.
// Todos los registros deben ser del mismo par (ítem, bodega). Si lo disponible no alcanza
// devuelve InsufficientStockError y un plan vacío.
func PlanDecrement(records []entity.StockRecord, itemID, warehouseID string, quantity int64) (DecrementPlan, error) {
	if quantity <= 0 {
		return DecrementPlan{}, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	var available int64
	for _, r := range records {
		if r.ItemID != itemID || r.WarehouseID != warehouseID {
			return DecrementPlan{}, &domain.DataIntegrityError{
				Entity: "warehouse_items", ID: r.ID, Detail: "registro ajeno al par ítem/bodega solicitado",
			}
		}
		if r.Quantity <= 0 {
			return DecrementPlan{}, &domain.DataIntegrityError{
				Entity: "warehouse_items", ID: r.ID, Detail: "registro persistido con cantidad no positiva",
			}
		}
		available += r.Quantity
	}
	if available < quantity {
		return DecrementPlan{Available: available}, &domain.InsufficientStockError{
			ItemID: itemID, WarehouseID: warehouseID, Available: available, Requested: quantity,
		}
	}

	plan := DecrementPlan{Available: available}
	remaining := quantity
	for _, r := range records {
		if remaining == 0 {
			break
		}
		take := min(r.Quantity, remaining)
		remaining -= take
		plan.Removed += take
		if r.Quantity-take == 0 {
			plan.Deletions = append(plan.Deletions, r.ID)
			continue
		}
		plan.Updates = append(plan.Updates, RecordUpdate{RecordID: r.ID, Quantity: r.Quantity - take})
	}
	return plan, nil
}

// Package inventory contiene las reglas de dominio del libro de stock: agregación de
// cantidades, clasificación de estado, utilización de bodegas y el plan de descuento
// sobre varios registros. Son funciones puras; la persistencia vive en los repositorios.
package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Aggregate suma la cantidad disponible de itemID en los registros dados.
// warehouseID vacío suma todas las bodegas. Una cantidad negativa persistida es un
// DataIntegrityError: no se recorta a cero.
func Aggregate(records []entity.StockRecord, itemID, warehouseID string) (int64, error) {
	var total int64
	for _, r := range records {
		if r.ItemID != itemID {
			continue
		}
		if warehouseID != "" && r.WarehouseID != warehouseID {
			continue
		}
		if err := checkRecord(r); err != nil {
			return 0, err
		}
		total += r.Quantity
	}
	return total, nil
}

// AggregateByItem agrupa la cantidad disponible por ítem.
func AggregateByItem(records []entity.StockRecord) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, r := range records {
		if err := checkRecord(r); err != nil {
			return nil, err
		}
		out[r.ItemID] += r.Quantity
	}
	return out, nil
}

// AggregateByWarehouse agrupa la cantidad ocupada por bodega.
func AggregateByWarehouse(records []entity.StockRecord) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, r := range records {
		if err := checkRecord(r); err != nil {
			return nil, err
		}
		out[r.WarehouseID] += r.Quantity
	}
	return out, nil
}

func checkRecord(r entity.StockRecord) error {
	if r.Quantity < 0 {
		return &domain.DataIntegrityError{Entity: "warehouse_items", ID: r.ID, Detail: "cantidad negativa persistida"}
	}
	return nil
}

package inventory

import (
	"slices"
)

// LockKeys arma el conjunto ordenado de llaves de bloqueo para una mutación: primero los
// pares (ítem, bodega) y luego las bodegas, cada grupo ordenado y sin repetidos. Todas las
// transacciones adquieren en este orden global, así dos operaciones cruzadas no se bloquean
// mutuamente.
func LockKeys(itemID string, pairWarehouses []string, capacityWarehouses []string) []string {
	pairs := make([]string, 0, len(pairWarehouses))
	for _, wh := range pairWarehouses {
		pairs = append(pairs, PairKey(itemID, wh))
	}
	whs := make([]string, 0, len(capacityWarehouses))
	for _, wh := range capacityWarehouses {
		whs = append(whs, WarehouseKey(wh))
	}
	slices.Sort(pairs)
	slices.Sort(whs)
	return append(slices.Compact(pairs), slices.Compact(whs)...)
}

// PairKey llave de bloqueo de un par ítem/bodega.
func PairKey(itemID, warehouseID string) string {
	return "1:pair:" + itemID + ":" + warehouseID
}

// WarehouseKey llave de bloqueo de la capacidad de una bodega.
func WarehouseKey(warehouseID string) string {
	return "2:warehouse:" + warehouseID
}

// InvoiceKey llave de bloqueo de una orden de compra (idempotencia por factura).
func InvoiceKey(invoiceNo string) string {
	return "0:invoice:" + invoiceNo
}

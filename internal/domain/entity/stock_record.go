package entity

import "time"

// StockRecord es una fila de warehouse_items: cantidad de un ítem en una bodega.
// Puede haber varias filas para el mismo par (ítem, bodega); ninguna persiste en cero.
type StockRecord struct {
	ID          string
	ItemID      string
	WarehouseID string
	Quantity    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

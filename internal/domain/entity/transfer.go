package entity

import "time"

// TransferStatusCompleted único estado de un traslado: se registra al ejecutarse.
const TransferStatusCompleted = "Completed"

// Transfer es el registro inmutable (append-only) de un traslado entre bodegas.
type Transfer struct {
	ID              string
	ItemID          string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int64
	Status          string
	CreatedBy       string
	CreatedAt       time.Time
}

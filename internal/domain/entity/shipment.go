package entity

import "time"

// Estados de un envío entrante.
const (
	ShipmentStatusPending   = "Pending"
	ShipmentStatusDelivered = "Delivered"
)

// Shipment mercancía entrante pendiente de asignar a una bodega.
type Shipment struct {
	ID            string
	TransactionID string
	ItemID        string
	Quantity      int64
	Date          time.Time
	Status        string
	Note          string
	WarehouseID   string
	DeliveredAt   *time.Time
}

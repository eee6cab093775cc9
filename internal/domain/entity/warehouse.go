package entity

import "time"

// Warehouse representa una bodega. MaxCapacity (unidades) es el denominador de la utilización.
type Warehouse struct {
	ID          string
	Name        string
	Location    string
	MaxCapacity int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

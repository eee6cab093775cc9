package entity

import "time"

// Supplier proveedor; se resuelve de forma aproximada por nombre al registrar compras.
type Supplier struct {
	ID        string
	Name      string
	Contact   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

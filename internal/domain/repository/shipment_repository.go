package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ShipmentRepository define el puerto de persistencia para envíos entrantes.
type ShipmentRepository interface {
	CreateMany(ctx context.Context, shipments []*entity.Shipment) error
	// GetByID y GetForUpdate devuelven (nil, nil) si no existe; GetForUpdate bloquea la fila
	// hasta el fin de la transacción.
	GetByID(ctx context.Context, id string) (*entity.Shipment, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error)
	MarkDelivered(ctx context.Context, id, warehouseID string, at time.Time) error
	// CountPendingByItem envíos aún no recibidos del ítem.
	CountPendingByItem(ctx context.Context, itemID string) (int, error)
	List(ctx context.Context, status string, limit, offset int) ([]*entity.Shipment, error)
}

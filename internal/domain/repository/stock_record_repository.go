package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockRecordRepository define el puerto sobre warehouse_items.
// Los métodos *ForUpdate solo tienen sentido dentro de una transacción.
type StockRecordRepository interface {
	// ListByPairForUpdate devuelve los registros del par en orden determinista (created_at, id)
	// y los bloquea hasta el fin de la transacción.
	ListByPairForUpdate(ctx context.Context, itemID, warehouseID string) ([]entity.StockRecord, error)
	ListByItem(ctx context.Context, itemID string) ([]entity.StockRecord, error)
	ListByWarehouse(ctx context.Context, warehouseID string) ([]entity.StockRecord, error)
	ListAll(ctx context.Context) ([]entity.StockRecord, error)
	Insert(ctx context.Context, record *entity.StockRecord) error
	UpdateQuantity(ctx context.Context, id string, quantity int64, at time.Time) error
	Delete(ctx context.Context, id string) error
	// SumByWarehouse unidades ocupadas en la bodega (todas los ítems).
	SumByWarehouse(ctx context.Context, warehouseID string) (int64, error)
}

// Locker serializa mutaciones por llave lógica (par ítem/bodega, bodega, factura)
// durante la transacción en curso. Las llaves se adquieren en el orden recibido.
type Locker interface {
	Lock(ctx context.Context, keys ...string) error
}

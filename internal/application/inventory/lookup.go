package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// LoadItem devuelve el ítem activo o ErrNotFound.
func LoadItem(ctx context.Context, items repository.ItemRepository, id string) (*entity.Item, error) {
	item, err := items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.IsDeleted {
		return nil, fmt.Errorf("ítem %s: %w", id, domain.ErrNotFound)
	}
	return item, nil
}

// LoadWarehouse devuelve la bodega o ErrNotFound.
func LoadWarehouse(ctx context.Context, warehouses repository.WarehouseRepository, id string) (*entity.Warehouse, error) {
	wh, err := warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, fmt.Errorf("bodega %s: %w", id, domain.ErrNotFound)
	}
	return wh, nil
}

package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ItemFilter filtros de listado del catálogo.
type ItemFilter struct {
	Search         string // coincide con SKU o nombre (ILIKE)
	CategoryID     string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// ItemRepository define el puerto de persistencia para Item (DIP).
// GetByID y GetBySKU devuelven (nil, nil) si no existe.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, f ItemFilter) ([]*entity.Item, int, error)
	// ListActive devuelve todos los ítems no eliminados (proyecciones del dashboard).
	ListActive(ctx context.Context) ([]*entity.Item, error)
}

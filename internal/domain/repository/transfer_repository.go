package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransferFilter filtros del historial de traslados.
type TransferFilter struct {
	ItemID      string
	WarehouseID string // origen o destino
	Limit       int
	Offset      int
}

// TransferRepository registro append-only de traslados: no hay Update ni Delete.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	List(ctx context.Context, f TransferFilter) ([]*entity.Transfer, error)
}

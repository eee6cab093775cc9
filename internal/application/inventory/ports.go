package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda ninguna escritura parcial.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx repository.Tx) error) error
}

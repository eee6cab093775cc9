package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.Locker = (*Locker)(nil)

// Locker toma advisory locks transaccionales: se liberan solos en Commit o Rollback.
// Las llaves de texto se reducen a int8 con hashtextextended; una colisión solo serializa
// de más, nunca de menos.
type Locker struct {
	q Querier
}

// NewLocker construye el locker. Fuera de una transacción el lock se libera al terminar la sentencia.
func NewLocker(q Querier) *Locker {
	return &Locker{q: q}
}

// Lock adquiere las llaves en el orden recibido; el caso de uso las entrega ya ordenadas.
func (l *Locker) Lock(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := l.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return wrap(fmt.Sprintf("lock %s", key), err)
		}
	}
	return nil
}

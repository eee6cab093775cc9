// Package memory implementa los repositorios del libro de stock en memoria. Se usa en las
// pruebas de los casos de uso y para levantar la API sin base de datos (APP_ENV=local).
//
// Las transacciones se serializan con un mutex global y se deshacen restaurando una copia
// del estado, así un error dentro de Run no deja escrituras parciales. Las lecturas fuera
// de una transacción pueden ver escrituras aún no confirmadas.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type state struct {
	items      map[string]entity.Item
	warehouses map[string]entity.Warehouse
	stock      map[string]entity.StockRecord
	transfers  []entity.Transfer
	ledger     []entity.LedgerEntry
	orders     map[string]entity.PurchaseOrder
	shipments  map[string]entity.Shipment
	suppliers  map[string]entity.Supplier
}

func newState() state {
	return state{
		items:      make(map[string]entity.Item),
		warehouses: make(map[string]entity.Warehouse),
		stock:      make(map[string]entity.StockRecord),
		orders:     make(map[string]entity.PurchaseOrder),
		shipments:  make(map[string]entity.Shipment),
		suppliers:  make(map[string]entity.Supplier),
	}
}

func (s state) clone() state {
	return state{
		items:      maps.Clone(s.items),
		warehouses: maps.Clone(s.warehouses),
		stock:      maps.Clone(s.stock),
		transfers:  slices.Clone(s.transfers),
		ledger:     slices.Clone(s.ledger),
		orders:     maps.Clone(s.orders),
		shipments:  maps.Clone(s.shipments),
		suppliers:  maps.Clone(s.suppliers),
	}
}

// Store almacén en memoria con semántica transaccional.
type Store struct {
	txMu sync.Mutex   // serializa transacciones y escrituras sueltas
	mu   sync.RWMutex // protege data
	data state

	failMu   sync.Mutex
	failures map[string]error
	locks    [][]string
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState(), failures: make(map[string]error)}
}

// FailOn hace que la operación op (ej. "transfers.create") devuelva err hasta que se limpie
// con FailOn(op, nil). Sirve para probar el rollback.
func (s *Store) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return s.failures[op]
}

// LockHistory llaves pedidas al Locker, una entrada por llamada.
func (s *Store) LockHistory() [][]string {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return slices.Clone(s.locks)
}

// Run ejecuta fn con repositorios transaccionales. Si fn falla, el estado vuelve a la copia
// tomada al inicio.
func (s *Store) Run(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	v := &view{st: s, inTx: true}
	if err := fn(v.tx()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Repositorios fuera de transacción.

func (s *Store) Items() *ItemRepo                   { return &ItemRepo{v: s.view()} }
func (s *Store) Warehouses() *WarehouseRepo         { return &WarehouseRepo{v: s.view()} }
func (s *Store) StockRecords() *StockRecordRepo     { return &StockRecordRepo{v: s.view()} }
func (s *Store) Transfers() *TransferRepo           { return &TransferRepo{v: s.view()} }
func (s *Store) Ledger() *LedgerRepo                { return &LedgerRepo{v: s.view()} }
func (s *Store) PurchaseOrders() *PurchaseOrderRepo { return &PurchaseOrderRepo{v: s.view()} }
func (s *Store) Shipments() *ShipmentRepo           { return &ShipmentRepo{v: s.view()} }
func (s *Store) Suppliers() *SupplierRepo           { return &SupplierRepo{v: s.view()} }

func (s *Store) view() *view { return &view{st: s} }

// view acceso al estado; inTx indica que el mutex de transacción ya está tomado.
type view struct {
	st   *Store
	inTx bool
}

func (v *view) tx() repository.Tx {
	return repository.Tx{
		Locker:     &locker{v: v},
		Stock:      &StockRecordRepo{v: v},
		Transfers:  &TransferRepo{v: v},
		Ledger:     &LedgerRepo{v: v},
		Orders:     &PurchaseOrderRepo{v: v},
		Shipments:  &ShipmentRepo{v: v},
		Items:      &ItemRepo{v: v},
		Warehouses: &WarehouseRepo{v: v},
	}
}

func (v *view) read(ctx context.Context, op string, fn func(d *state)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := v.st.failure(op); err != nil {
		return err
	}
	v.st.mu.RLock()
	defer v.st.mu.RUnlock()
	fn(&v.st.data)
	return nil
}

func (v *view) write(ctx context.Context, op string, fn func(d *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := v.st.failure(op); err != nil {
		return err
	}
	if !v.inTx {
		v.st.txMu.Lock()
		defer v.st.txMu.Unlock()
	}
	v.st.mu.Lock()
	defer v.st.mu.Unlock()
	return fn(&v.st.data)
}

// locker no bloquea nada (Run ya serializa); registra las llaves para las pruebas.
type locker struct{ v *view }

func (l *locker) Lock(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := l.v.st.failure("locker.lock"); err != nil {
		return err
	}
	l.v.st.failMu.Lock()
	l.v.st.locks = append(l.v.st.locks, slices.Clone(keys))
	l.v.st.failMu.Unlock()
	return nil
}

package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/events"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ── Dobles de prueba ─────────────────────────────────────────────────────────

type recordingPublisher struct {
	mu  sync.Mutex
	evs []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evs ...events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.evs = append(p.evs, evs...)
	return nil
}

func (p *recordingPublisher) ofType(typ string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.evs {
		if e.EventType() == typ {
			out = append(out, e)
		}
	}
	return out
}

type countingCache struct {
	ports.NoopCache
	mu            sync.Mutex
	invalidations int
}

func (c *countingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	return nil
}

// ── Fixture ──────────────────────────────────────────────────────────────────

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	pub      *recordingPublisher
	cache    *countingCache
	transfer *appinv.TransferUseCase
	withdraw *appinv.WithdrawUseCase
	levels   *appinv.StockLevelUseCase
	replen   *appinv.ReplenishmentUseCase
}

func newFixture(t *testing.T, opts appinv.Options) *fixture {
	t.Helper()
	s := memory.NewStore()
	f := &fixture{ctx: context.Background(), store: s, pub: &recordingPublisher{}, cache: &countingCache{}}
	effects := ports.NewAfterCommit(f.cache, f.pub, ports.NoopMetrics{}, logger.Nop())

	f.transfer = appinv.NewTransferUseCase(s, s.Items(), s.Warehouses(), s.Transfers(), effects, logger.Nop(), opts)
	f.withdraw = appinv.NewWithdrawUseCase(s, s.Items(), s.Warehouses(), s.StockRecords(), effects, logger.Nop())
	f.levels = appinv.NewStockLevelUseCase(s.Items(), s.Warehouses(), s.StockRecords(), s.Ledger())
	f.replen = appinv.NewReplenishmentUseCase(s.Items(), s.StockRecords())

	require.NoError(t, s.Items().Create(f.ctx, &entity.Item{
		ID: "item-1", SKU: "TOR-001", Name: "Tornillo", MinQuantity: 5, UnitPrice: decimal.NewFromInt(100),
	}))
	require.NoError(t, s.Warehouses().Create(f.ctx, &entity.Warehouse{ID: "wh-a", Name: "Bodega A", MaxCapacity: 100}))
	require.NoError(t, s.Warehouses().Create(f.ctx, &entity.Warehouse{ID: "wh-b", Name: "Bodega B", MaxCapacity: 10}))
	return f
}

func (f *fixture) addStock(t *testing.T, id, itemID, whID string, qty int64, at time.Time) {
	t.Helper()
	require.NoError(t, f.store.StockRecords().Insert(f.ctx, &entity.StockRecord{
		ID: id, ItemID: itemID, WarehouseID: whID, Quantity: qty, CreatedAt: at, UpdatedAt: at,
	}))
}

func (f *fixture) pair(t *testing.T, itemID, whID string) []entity.StockRecord {
	t.Helper()
	recs, err := f.store.StockRecords().ListByPairForUpdate(f.ctx, itemID, whID)
	require.NoError(t, err)
	return recs
}

func (f *fixture) total(t *testing.T, itemID string) int64 {
	t.Helper()
	recs, err := f.store.StockRecords().ListByItem(f.ctx, itemID)
	require.NoError(t, err)
	n, err := inventory.Aggregate(recs, itemID, "")
	require.NoError(t, err)
	return n
}

// ── Transfer ─────────────────────────────────────────────────────────────────

func TestTransfer_DescuentaVariosRegistrosYCreaDestino(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	f.addStock(t, "r1", "item-1", "wh-a", 3, t0)
	f.addStock(t, "r2", "item-1", "wh-a", 4, t0.Add(time.Second))

	tr, err := f.transfer.Transfer(f.ctx, appinv.TransferInput{
		ItemID: "item-1", FromWarehouseID: "wh-a", ToWarehouseID: "wh-b", Quantity: 5, CreatedBy: "ana@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCompleted, tr.Status)

	src := f.pair(t, "item-1", "wh-a")
	require.Len(t, src, 1, "r1 queda en cero y se elimina")
	assert.Equal(t, "r2", src[0].ID)
	assert.Equal(t, int64(2), src[0].Quantity)

	dst := f.pair(t, "item-1", "wh-b")
	require.Len(t, dst, 1)
	assert.Equal(t, int64(5), dst[0].Quantity)

	assert.Equal(t, int64(7), f.total(t, "item-1"), "el total del ítem se conserva")

	log, err := f.store.Transfers().List(f.ctx, repository.TransferFilter{ItemID: "item-1"})
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, int64(5), log[0].Quantity)
	assert.Equal(t, "ana@example.com", log[0].CreatedBy)
}

func TestTransfer_IncrementaRegistroDestinoExistente(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	f.addStock(t, "src", "item-1", "wh-a", 10, t0)
	f.addStock(t, "dst-old", "item-1", "wh-b", 2, t0)
	f.addStock(t, "dst-new", "item-1", "wh-b", 1, t0.Add(time.Minute))

	_, err := f.transfer.Transfer(f.ctx, appinv.TransferInput{ItemID: "item-1", FromWarehouseID: "wh-a", ToWarehouseID: "wh-b", Quantity: 4})
	require.NoError(t, err)

	dst := f.pair(t, "item-1", "wh-b")
	require.Len(t, dst, 2, "no se crean registros nuevos si el par ya tiene uno")
	assert.Equal(t, "dst-old", dst[0].ID)
	assert.Equal(t, int64(6), dst[0].Quantity)
	assert.Equal(t, int64(1), dst[1].Quantity)
}

func TestTransfer_StockInsuficienteNoModificaNada(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	f.addStock(t, "r1", "item-1", "wh-a", 3, t0)

	_, err := f.transfer.Transfer(f.ctx, appinv.TransferInput{ItemID: "item-1", FromWarehouseID: "wh-a", ToWarehouseID: "wh-b", Quantity: 5})
	require.Error(t, err)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(3), insufficient.Available)
	assert.Equal(t, int64(5), insufficient.Requested)

	assert.Equal(t, int64(3), f.pair(t, "item-1", "wh-a")[0].Quantity)
	assert.Empty(t, f.pair(t, "item-1", "wh-b"))
	log, _ := f.store.Transfers().List(f.ctx, repository.TransferFilter{})
	assert.Empty(t, log)
	assert.Zero(t, f.cache.invalidations, "sin commit no se invalida la caché")
}

func TestTransfer_Validaciones(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	f.addStock(t, "r1", "item-1", "wh-a", 3, t0)

	cases := []struct {
		name string
		in   appinv.TransferInput
		want error
	}{
		{"misma bodega", appinv.TransferInput{ItemID: "item-1", FromWarehouseID: "wh-a", ToWarehouseID: "wh-a", Quantity: 1}, domain.ErrInvalidInput},
		{"cantidad cero", appinv.TransferInput{ItemID: "item-1", FromWarehouseID: "wh-a", ToWarehouseID: "wh-b", Quantity: 0}, domain.ErrInvalidInput},
		{"cantidad negativa", appinv.TransferInput{ItemID: "item-1", FromWarehouseID: "wh-a", ToWarehouseID: "wh-b", Quantity: -2}, domain.ErrInvalidInput},
		{"sin ítem", appinv.TransferInput{FromWarehouseID: "wh-a", ToWarehouseID: "wh-b", Quantity: 1}, domain.ErrInvalidInput},
		{"ítem inexistente", appinv.TransferInput{ItemID: "nope", FromWarehouseID: "wh-a", ToWarehouseID: "wh-b", Quantity: 1}, domain.ErrNotFound},
		{"bodega inexistente", appinv.TransferInput{ItemID: "item-1", FromWarehouseID: "wh-a", ToWarehouseID: "wh-z", Quantity: 1}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.transfer.Transfer(f.ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, int64(3), f.total(t, "item-1"))
}

func TestTransfer_FallaAlRegistrarLogHaceRollback(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	f.addStock(t, "r1", "item-1", "wh-a", 3, t0)
	f.store.FailOn("transfers.create", domain.Storage("insert transfers", errors.New("conexión perdida")))

	_, err := f.transfer.Transfer(f.ctx, appinv.TransferInput{ItemID: "item-1", FromWarehouseID: "wh-a", ToWarehouseID: "wh-b", Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrStorage)

	src := f.pair(t, "item-1", "wh-a")
	require.Len(t, src, 1, "el registro de origen no debe haberse eliminado")
	assert.Equal(t, int64(3), src[0].Quantity)
	assert.Empty(t, f.pair(t, "item-1", "wh-b"))
}

func TestTransfer_CapacidadSoloSiEstaActiva(t *testing.T) {
	f := newFixture(t, appinv.Options{EnforceCapacity: true})
	f.addStock(t, "r1", "item-1", "wh-a", 20, t0)

	_, err := f.transfer.Transfer(f.ctx, appinv.TransferInput{ItemID: "item-1", FromWarehouseID: "wh-a", ToWarehouseID: "wh-b", Quantity: 11})
	var capErr *domain.CapacityExceededError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, int64(10), capErr.MaxCapacity)
	assert.Equal(t, int64(20), f.pair(t, "item-1", "wh-a")[0].Quantity)

	g := newFixture(t, appinv.Options{})
	g.addStock(t, "r1", "item-1", "wh-a", 20, t0)
	_, err = g.transfer.Transfer(g.ctx, appinv.TransferInput{ItemID: "item-1", FromWarehouseID: "wh-a", ToWarehouseID: "wh-b", Quantity: 11})
	assert.NoError(t, err, "sin validación de capacidad la bodega puede quedar por encima del 100%")
}

func TestTransfer_BloqueaParesEnOrdenGlobal(t *testing.T) {
	f := newFixture(t, appinv.Options{EnforceCapacity: true})
	f.addStock(t, "r1", "item-1", "wh-b", 5, t0)

	_, err := f.transfer.Transfer(f.ctx, appinv.TransferInput{ItemID: "item-1", FromWarehouseID: "wh-b", ToWarehouseID: "wh-a", Quantity: 1})
	require.NoError(t, err)

	history := f.store.LockHistory()
	require.NotEmpty(t, history)
	assert.Equal(t, []string{
		inventory.PairKey("item-1", "wh-a"),
		inventory.PairKey("item-1", "wh-b"),
		inventory.WarehouseKey("wh-a"),
	}, history[len(history)-1])
}

func TestTransfer_ConcurrenteNoDejaStockNegativo(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	f.addStock(t, "r1", "item-1", "wh-a", 5, t0)

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.transfer.Transfer(f.ctx, appinv.TransferInput{ItemID: "item-1", FromWarehouseID: "wh-a", ToWarehouseID: "wh-b", Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, 7, rejected)
	assert.Empty(t, f.pair(t, "item-1", "wh-a"), "el origen queda vacío, sin registros en cero")
	assert.Equal(t, int64(5), f.pair(t, "item-1", "wh-b")[0].Quantity)
	assert.Equal(t, int64(5), f.total(t, "item-1"))
}

func TestTransfer_EfectosPosterioresAlCommit(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	f.addStock(t, "r1", "item-1", "wh-a", 5, t0)

	_, err := f.transfer.Transfer(f.ctx, appinv.TransferInput{ItemID: "item-1", FromWarehouseID: "wh-a", ToWarehouseID: "wh-b", Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, f.cache.invalidations)
	evs := f.pub.ofType(events.TypeTransferCompleted)
	require.Len(t, evs, 1)
	assert.Equal(t, "item-1", evs[0].AggregateKey())
}

func TestListTransfers_FiltraPorBodega(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	f.addStock(t, "r1", "item-1", "wh-a", 5, t0)
	_, err := f.transfer.Transfer(f.ctx, appinv.TransferInput{ItemID: "item-1", FromWarehouseID: "wh-a", ToWarehouseID: "wh-b", Quantity: 2})
	require.NoError(t, err)

	got, err := f.transfer.ListTransfers(f.ctx, repository.TransferFilter{WarehouseID: "wh-b"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = f.transfer.ListTransfers(f.ctx, repository.TransferFilter{WarehouseID: "wh-x"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

// ── Withdraw ─────────────────────────────────────────────────────────────────

func TestWithdraw_DescuentaYRegistraSalida(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	f.addStock(t, "r1", "item-1", "wh-a", 10, t0)

	res, err := f.withdraw.Withdraw(f.ctx, appinv.WithdrawInput{ItemID: "item-1", WarehouseID: "wh-a", Quantity: 3, Reason: "venta mostrador"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.Remaining)
	assert.Equal(t, entity.LedgerTypeStockOut, res.Entry.Type)
	assert.Equal(t, entity.LedgerStatusCompleted, res.Entry.Status)
	assert.True(t, decimal.NewFromInt(300).Equal(res.Entry.TotalPrice))

	flow, err := f.store.Ledger().FlowByItem(f.ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), flow.StockOut)
	assert.Empty(t, f.pub.ofType(events.TypeStockAlert), "7 unidades sobre un mínimo de 5 es normal")
}

func TestWithdraw_EmiteAlertaDeStockBajo(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	f.addStock(t, "r1", "item-1", "wh-a", 6, t0)

	_, err := f.withdraw.Withdraw(f.ctx, appinv.WithdrawInput{ItemID: "item-1", WarehouseID: "wh-a", Quantity: 6})
	require.NoError(t, err)

	alerts := f.pub.ofType(events.TypeStockAlert)
	require.Len(t, alerts, 1)
	alert := alerts[0].(events.StockAlert)
	assert.Equal(t, entity.StockStatusOutOfStock, alert.Status)
	assert.Empty(t, f.pair(t, "item-1", "wh-a"))
}

func TestWithdraw_Insuficiente(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	f.addStock(t, "r1", "item-1", "wh-a", 2, t0)

	_, err := f.withdraw.Withdraw(f.ctx, appinv.WithdrawInput{ItemID: "item-1", WarehouseID: "wh-a", Quantity: 3})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	flow, _ := f.store.Ledger().FlowByItem(f.ctx, "item-1")
	assert.Zero(t, flow.StockOut)
}

// ── Stock level ──────────────────────────────────────────────────────────────

func TestGetStockLevel_CombinaLibroYRegistros(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	f.addStock(t, "r1", "item-1", "wh-a", 3, t0)
	f.addStock(t, "r2", "item-1", "wh-b", 1, t0)
	require.NoError(t, f.store.Ledger().CreateMany(f.ctx, []*entity.LedgerEntry{
		{ID: "l1", ItemID: "item-1", Type: entity.LedgerTypeStockIn, Quantity: 10, Status: entity.LedgerStatusCompleted},
		{ID: "l2", ItemID: "item-1", Type: entity.LedgerTypeStockIn, Quantity: 50, Status: entity.LedgerStatusPending},
	}))

	lvl, err := f.levels.GetStockLevel(f.ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), lvl.StockIn)
	assert.Equal(t, int64(0), lvl.StockOut)
	assert.Equal(t, int64(4), lvl.TotalStock)
	assert.Equal(t, string(entity.StockStatusLow), lvl.Status)
}

func TestGetStockLevel_ItemInexistente(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	_, err := f.levels.GetStockLevel(f.ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.levels.GetStockLevel(f.ctx, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetAllStockLevels(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	require.NoError(t, f.store.Items().Create(f.ctx, &entity.Item{ID: "item-2", SKU: "TUE-001", Name: "Tuerca", MinQuantity: 1}))
	f.addStock(t, "r1", "item-1", "wh-a", 30, t0)

	all, err := f.levels.GetAllStockLevels(f.ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, string(entity.StockStatusNormal), all["item-1"].Status)
	assert.Equal(t, string(entity.StockStatusOutOfStock), all["item-2"].Status)
}

func TestGetItemWarehouses_DesgloseOrdenado(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	f.addStock(t, "r1", "item-1", "wh-b", 2, t0)
	f.addStock(t, "r2", "item-1", "wh-a", 3, t0)
	f.addStock(t, "r3", "item-1", "wh-a", 4, t0.Add(time.Second))

	got, err := f.levels.GetItemWarehouses(f.ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.TotalStock)
	require.Len(t, got.Warehouses, 2)
	assert.Equal(t, "Bodega A", got.Warehouses[0].WarehouseName)
	assert.Equal(t, int64(7), got.Warehouses[0].Quantity)
	assert.Equal(t, 2, got.Warehouses[0].Records)
}

// ── Replenishment ────────────────────────────────────────────────────────────

func TestGenerateReplenishmentList_PrioridadAgotadosPrimero(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	require.NoError(t, f.store.Items().Create(f.ctx, &entity.Item{
		ID: "item-2", SKU: "TUE-001", Name: "Tuerca", MinQuantity: 4, MaxQuantity: 20, UnitPrice: decimal.NewFromInt(10),
	}))
	f.addStock(t, "r1", "item-1", "wh-a", 2, t0) // bajo: 2 <= 5

	list, err := f.replen.GenerateReplenishmentList(f.ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "item-2", list[0].ItemID, "agotado va primero")
	assert.Equal(t, 1, list[0].Priority)
	assert.Equal(t, int64(20), list[0].SuggestedOrderQty)
	assert.True(t, decimal.NewFromInt(200).Equal(list[0].EstimatedCost))

	assert.Equal(t, "item-1", list[1].ItemID)
	assert.Equal(t, int64(7), list[1].IdealStock, "1.5 × 5 redondeado hacia abajo")
	assert.Equal(t, int64(5), list[1].SuggestedOrderQty)
}

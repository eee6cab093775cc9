package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func newItemUseCase(s *memory.Store) *usecase.ItemUseCase {
	return usecase.NewItemUseCase(s, s.Items(), s.StockRecords(), ports.NewAfterCommit(nil, nil, nil, logger.Nop()))
}

func ptr[T any](v T) *T { return &v }

// ── Ítems ────────────────────────────────────────────────────────────────────

func TestItemCreate_ValidaYRechazaSKUDuplicado(t *testing.T) {
	ctx := context.Background()
	uc := newItemUseCase(memory.NewStore())

	created, err := uc.Create(ctx, dto.CreateItemRequest{SKU: " TOR-001 ", Name: "Tornillo", MinQuantity: 5, MaxQuantity: 50, UnitPrice: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.Equal(t, "TOR-001", created.SKU)
	assert.Equal(t, string(entity.StockStatusOutOfStock), created.Status)

	_, err = uc.Create(ctx, dto.CreateItemRequest{SKU: "TOR-001", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateItemRequest{SKU: "X", Name: "X", MinQuantity: 10, MaxQuantity: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateItemRequest{SKU: "", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestItemGetByID_IncluyeStockYEstado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := newItemUseCase(s)
	created, err := uc.Create(ctx, dto.CreateItemRequest{SKU: "TOR-001", Name: "Tornillo", MinQuantity: 5, MaxQuantity: 10})
	require.NoError(t, err)
	require.NoError(t, s.StockRecords().Insert(ctx, &entity.StockRecord{ID: "r1", ItemID: created.ID, WarehouseID: "w", Quantity: 12, CreatedAt: time.Now()}))

	got, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.OnHand)
	assert.Equal(t, string(entity.StockStatusOverstocked), got.Status)

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemUpdate_ValidaUmbrales(t *testing.T) {
	ctx := context.Background()
	uc := newItemUseCase(memory.NewStore())
	created, err := uc.Create(ctx, dto.CreateItemRequest{SKU: "TOR-001", Name: "Tornillo", MinQuantity: 5})
	require.NoError(t, err)

	updated, err := uc.Update(ctx, created.ID, dto.UpdateItemRequest{Name: ptr("Tornillo 1/4"), MaxQuantity: ptr(int64(40))})
	require.NoError(t, err)
	assert.Equal(t, "Tornillo 1/4", updated.Name)
	assert.Equal(t, int64(40), updated.MaxQuantity)

	_, err = uc.Update(ctx, created.ID, dto.UpdateItemRequest{MinQuantity: ptr(int64(41))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestItemDelete_RechazadoConStock(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := newItemUseCase(s)
	created, err := uc.Create(ctx, dto.CreateItemRequest{SKU: "TOR-001", Name: "Tornillo"})
	require.NoError(t, err)
	require.NoError(t, s.StockRecords().Insert(ctx, &entity.StockRecord{ID: "r1", ItemID: created.ID, WarehouseID: "w", Quantity: 1}))

	err = uc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, s.StockRecords().Delete(ctx, "r1"))
	require.NoError(t, uc.Delete(ctx, created.ID))

	_, err = uc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "un ítem eliminado no se expone")
}

func TestItemDelete_RechazadoConEnviosPendientes(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := newItemUseCase(s)
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-a", Name: "Bodega A"}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-b", Name: "Bodega B"}))
	created, err := uc.Create(ctx, dto.CreateItemRequest{SKU: "TOR-001", Name: "Tornillo"})
	require.NoError(t, err)
	require.NoError(t, s.Shipments().CreateMany(ctx, []*entity.Shipment{{
		ID: "sh-1", ItemID: created.ID, Quantity: 4, Status: entity.ShipmentStatusPending, Date: time.Now(),
	}}))

	err = uc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrConflict, "un envío pendiente todavía puede sumar stock")
	_, err = uc.GetByID(ctx, created.ID)
	require.NoError(t, err, "el ítem sigue activo")

	history := s.LockHistory()
	require.NotEmpty(t, history)
	assert.Equal(t, inventory.LockKeys(created.ID, []string{"wh-a", "wh-b"}, nil), history[len(history)-1],
		"toma las mismas llaves de par que traslados y recepciones")

	require.NoError(t, s.Shipments().MarkDelivered(ctx, "sh-1", "wh-a", time.Now()))
	require.NoError(t, uc.Delete(ctx, created.ID))
	assert.ErrorIs(t, uc.Delete(ctx, created.ID), domain.ErrNotFound)
}

func TestItemList_FiltraPorEstado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := newItemUseCase(s)
	a, err := uc.Create(ctx, dto.CreateItemRequest{SKU: "A", Name: "A", MinQuantity: 5})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateItemRequest{SKU: "B", Name: "B", MinQuantity: 5})
	require.NoError(t, err)
	require.NoError(t, s.StockRecords().Insert(ctx, &entity.StockRecord{ID: "r1", ItemID: a.ID, WarehouseID: "w", Quantity: 3}))

	low, err := uc.List(ctx, usecase.ItemListFilter{Status: "low"})
	require.NoError(t, err)
	require.Len(t, low.Items, 1)
	assert.Equal(t, "A", low.Items[0].SKU)
	assert.Equal(t, 1, low.Page.Total)

	all, err := uc.List(ctx, usecase.ItemListFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, 20, all.Page.Limit)

	_, err = uc.List(ctx, usecase.ItemListFilter{Status: "raro"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Bodegas y proveedores ────────────────────────────────────────────────────

func TestWarehouseCRUD(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := usecase.NewWarehouseUseCase(s.Warehouses(), ports.NewAfterCommit(nil, nil, nil, nil))

	_, err := uc.Create(ctx, dto.CreateWarehouseRequest{Name: "Central", MaxCapacity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	wh, err := uc.Create(ctx, dto.CreateWarehouseRequest{Name: "Central", Location: "Bogotá", MaxCapacity: 1000})
	require.NoError(t, err)

	updated, err := uc.Update(ctx, wh.ID, dto.UpdateWarehouseRequest{MaxCapacity: ptr(int64(1500))})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), updated.MaxCapacity)
	assert.Equal(t, "Bogotá", updated.Location)

	list, err := uc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSupplierCreateList(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := usecase.NewSupplierUseCase(s.Suppliers())

	_, err := uc.Create(ctx, dto.CreateSupplierRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateSupplierRequest{Name: "Zeta SAS"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateSupplierRequest{Name: "Alfa Ltda", Contact: "ventas@alfa.co"})
	require.NoError(t, err)

	list, err := uc.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Alfa Ltda", list.Items[0].Name)
}

package purchasing_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/events"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/application/purchasing"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

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

type fakePDF struct {
	order    *entity.PurchaseOrder
	supplier string
	lines    []purchasing.OrderLineForPDF
}

func (f *fakePDF) GenerateOrderPDF(_ context.Context, o *entity.PurchaseOrder, supplier string, lines []purchasing.OrderLineForPDF) ([]byte, error) {
	f.order, f.supplier, f.lines = o, supplier, lines
	return []byte("%PDF-fake"), nil
}

// ── Fixture ──────────────────────────────────────────────────────────────────

type fixture struct {
	ctx     context.Context
	store   *memory.Store
	pub     *recordingPublisher
	pdf     *fakePDF
	record  *purchasing.RecordBatchUseCase
	query   *purchasing.BatchQueryUseCase
	receive *purchasing.ReceiveShipmentUseCase
}

func newFixture(t *testing.T, opts appinv.Options) *fixture {
	t.Helper()
	s := memory.NewStore()
	f := &fixture{ctx: context.Background(), store: s, pub: &recordingPublisher{}, pdf: &fakePDF{}}
	effects := ports.NewAfterCommit(nil, f.pub, nil, logger.Nop())
	matcher := purchasing.NewSupplierMatcher(s.Suppliers(), logger.Nop())

	f.record = purchasing.NewRecordBatchUseCase(s, purchasing.NewInvoiceNumberGenerator(), matcher, effects, logger.Nop())
	f.query = purchasing.NewBatchQueryUseCase(s.PurchaseOrders(), s.Ledger(), s.Items(), s.Suppliers(), f.pdf)
	f.receive = purchasing.NewReceiveShipmentUseCase(s, s.Shipments(), s.Warehouses(), effects, logger.Nop(), opts)

	require.NoError(t, s.Items().Create(f.ctx, &entity.Item{ID: "item-1", SKU: "TOR-001", Name: "Tornillo", MinQuantity: 5}))
	require.NoError(t, s.Items().Create(f.ctx, &entity.Item{ID: "item-2", SKU: "TUE-001", Name: "Tuerca", MinQuantity: 5}))
	require.NoError(t, s.Warehouses().Create(f.ctx, &entity.Warehouse{ID: "wh-a", Name: "Bodega A", MaxCapacity: 15}))
	require.NoError(t, s.Suppliers().Create(f.ctx, &entity.Supplier{ID: "sup-1", Name: "Aceros Andinos Ltda"}))
	return f
}

func twoLines() []purchasing.BatchLine {
	return []purchasing.BatchLine{
		{ItemID: "item-1", Quantity: 10, UnitPrice: decimal.NewFromInt(5), TotalPrice: decimal.NewFromInt(50)},
		{ItemID: "item-2", Quantity: 4, UnitPrice: decimal.RequireFromString("2.5")},
	}
}

// ── RecordBatch ──────────────────────────────────────────────────────────────

func TestRecordBatch_RegistraEntradasPendientesYEnvios(t *testing.T) {
	f := newFixture(t, appinv.Options{})

	res, err := f.record.RecordBatch(f.ctx, purchasing.BatchInput{
		InvoiceNo: "FAC-001", Lines: twoLines(), Source: "aceros andinos", CreatedBy: "compras@example.com",
	})
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, "sup-1", res.Order.SupplierID)
	assert.Equal(t, int64(14), res.Order.TotalQuantity)
	assert.True(t, decimal.NewFromInt(60).Equal(res.Order.TotalAmount))

	require.Len(t, res.Transactions, 2)
	for _, e := range res.Transactions {
		assert.Equal(t, "FAC-001", e.InvoiceNo)
		assert.Equal(t, entity.LedgerStatusPending, e.Status)
		assert.Equal(t, entity.LedgerTypeStockIn, e.Type)
		assert.Equal(t, res.Transactions[0].CreatedAt, e.CreatedAt, "todas las líneas comparten fecha")
	}
	assert.True(t, decimal.NewFromInt(10).Equal(res.Transactions[1].TotalPrice), "total derivado de 2.5 × 4")

	pending, err := f.store.Shipments().List(f.ctx, entity.ShipmentStatusPending, 0, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.Len(t, f.pub.evs, 1)
	assert.Equal(t, events.TypePurchaseOrderRecorded, f.pub.evs[0].EventType())
}

func TestRecordBatch_EsIdempotentePorFactura(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	in := purchasing.BatchInput{InvoiceNo: "FAC-002", Lines: twoLines(), Source: "Proveedor X"}

	first, err := f.record.RecordBatch(f.ctx, in)
	require.NoError(t, err)
	second, err := f.record.RecordBatch(f.ctx, in)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	require.Len(t, second.Transactions, 2)
	assert.ElementsMatch(t,
		[]string{first.Transactions[0].ID, first.Transactions[1].ID},
		[]string{second.Transactions[0].ID, second.Transactions[1].ID})

	stored, err := f.store.Ledger().ListByInvoice(f.ctx, "FAC-002")
	require.NoError(t, err)
	assert.Len(t, stored, 2, "el reintento no duplica entradas")
	assert.Len(t, f.pub.evs, 1, "el reintento no vuelve a publicar")
}

func TestRecordBatch_ReintentosConcurrentesEscribenUnaVez(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	in := purchasing.BatchInput{InvoiceNo: "FAC-003", Lines: twoLines(), Source: "Proveedor X"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.record.RecordBatch(f.ctx, in)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := f.store.Ledger().ListByInvoice(f.ctx, "FAC-003")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestRecordBatch_GeneraNumeroDeFactura(t *testing.T) {
	f := newFixture(t, appinv.Options{})

	res, err := f.record.RecordBatch(f.ctx, purchasing.BatchInput{Lines: twoLines(), Source: "Proveedor X"})
	require.NoError(t, err)
	assert.Regexp(t, `^PO-\d{14}-[0-9A-F]{6}$`, res.Order.InvoiceNo)
	assert.Equal(t, res.Order.InvoiceNo, res.Transactions[0].InvoiceNo)
}

func TestRecordBatch_ValidaTodoAntesDeEscribir(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	bad := func(mut func(in *purchasing.BatchInput)) purchasing.BatchInput {
		in := purchasing.BatchInput{InvoiceNo: "FAC-BAD", Lines: twoLines(), Source: "Proveedor X"}
		mut(&in)
		return in
	}

	cases := []struct {
		name string
		in   purchasing.BatchInput
		want error
	}{
		{"sin origen", bad(func(in *purchasing.BatchInput) { in.Source = " " }), domain.ErrInvalidInput},
		{"sin líneas", bad(func(in *purchasing.BatchInput) { in.Lines = nil }), domain.ErrInvalidInput},
		{"cantidad cero en la segunda línea", bad(func(in *purchasing.BatchInput) { in.Lines[1].Quantity = 0 }), domain.ErrInvalidInput},
		{"precio total cero", bad(func(in *purchasing.BatchInput) {
			in.Lines[1].UnitPrice = decimal.Zero
		}), domain.ErrInvalidInput},
		{"precio negativo", bad(func(in *purchasing.BatchInput) {
			in.Lines[0].TotalPrice = decimal.NewFromInt(-1)
		}), domain.ErrInvalidInput},
		{"total declarado no coincide", bad(func(in *purchasing.BatchInput) { in.TotalQuantity = 99 }), domain.ErrInvalidInput},
		{"monto declarado no coincide", bad(func(in *purchasing.BatchInput) { in.TotalAmount = decimal.NewFromInt(1) }), domain.ErrInvalidInput},
		{"ítem inexistente", bad(func(in *purchasing.BatchInput) { in.Lines[0].ItemID = "nope" }), domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.record.RecordBatch(f.ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	stored, err := f.store.Ledger().ListByInvoice(f.ctx, "FAC-BAD")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRecordBatch_RedondeaPreciosACentavosAntesDeValidar(t *testing.T) {
	f := newFixture(t, appinv.Options{})

	_, err := f.record.RecordBatch(f.ctx, purchasing.BatchInput{
		InvoiceNo: "FAC-010",
		Lines:     []purchasing.BatchLine{{ItemID: "item-1", Quantity: 1, TotalPrice: decimal.RequireFromString("0.001")}},
		Source:    "Proveedor X",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "0.001 se guarda como 0.00")

	_, err = f.record.RecordBatch(f.ctx, purchasing.BatchInput{
		InvoiceNo: "FAC-010",
		Lines:     []purchasing.BatchLine{{ItemID: "item-1", Quantity: 3, UnitPrice: decimal.RequireFromString("0.004")}},
		Source:    "Proveedor X",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	res, err := f.record.RecordBatch(f.ctx, purchasing.BatchInput{
		InvoiceNo: "FAC-011",
		Lines: []purchasing.BatchLine{
			{ItemID: "item-1", Quantity: 2, UnitPrice: decimal.RequireFromString("1.005")},
			{ItemID: "item-2", Quantity: 1, UnitPrice: decimal.NewFromInt(1), TotalPrice: decimal.RequireFromString("3.333")},
		},
		Source: "Proveedor X",
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.01").Equal(res.Transactions[0].UnitPrice))
	assert.True(t, decimal.RequireFromString("2.02").Equal(res.Transactions[0].TotalPrice))
	assert.True(t, decimal.RequireFromString("3.33").Equal(res.Transactions[1].TotalPrice))
	assert.True(t, decimal.RequireFromString("5.35").Equal(res.Order.TotalAmount), "la cabecera suma los precios guardados")

	stored, err := f.store.Ledger().ListByInvoice(f.ctx, "FAC-010")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRecordBatch_ConservaElOrdenDeLasLineas(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	lines := []purchasing.BatchLine{
		{ItemID: "item-2", Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		{ItemID: "item-1", Quantity: 2, UnitPrice: decimal.NewFromInt(1)},
		{ItemID: "item-2", Quantity: 3, UnitPrice: decimal.NewFromInt(1)},
		{ItemID: "item-1", Quantity: 4, UnitPrice: decimal.NewFromInt(1)},
	}
	_, err := f.record.RecordBatch(f.ctx, purchasing.BatchInput{InvoiceNo: "FAC-012", Lines: lines, Source: "Proveedor X"})
	require.NoError(t, err)

	replay, err := f.record.RecordBatch(f.ctx, purchasing.BatchInput{InvoiceNo: "FAC-012", Lines: lines, Source: "Proveedor X"})
	require.NoError(t, err)
	require.True(t, replay.Replayed)
	require.Len(t, replay.Transactions, 4)
	for i, e := range replay.Transactions {
		assert.Equal(t, i+1, e.LineNo)
		assert.Equal(t, lines[i].ItemID, e.ItemID)
		assert.Equal(t, lines[i].Quantity, e.Quantity)
	}

	batch, err := f.query.GetBatch(f.ctx, "FAC-012")
	require.NoError(t, err)
	require.Len(t, batch.Transactions, 4)
	assert.Equal(t, int64(1), batch.Transactions[0].Quantity)
	assert.Equal(t, int64(4), batch.Transactions[3].Quantity)
}

func TestRecordBatch_ValidaNumeroDeFactura(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	for _, invoiceNo := range []string{`FAC"1`, "FAC 1", "FAC/1", "-FAC", "FAC\r\n1", strings.Repeat("F", 65)} {
		_, err := f.record.RecordBatch(f.ctx, purchasing.BatchInput{InvoiceNo: invoiceNo, Lines: twoLines(), Source: "Proveedor X"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, invoiceNo)
	}
	pending, err := f.store.Shipments().List(f.ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.record.RecordBatch(f.ctx, purchasing.BatchInput{InvoiceNo: "FAC_2025.001-A", Lines: twoLines(), Source: "Proveedor X"})
	assert.NoError(t, err)
}

func TestRecordBatch_ReintentoTrasEliminarItemDevuelveLoRegistrado(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	in := purchasing.BatchInput{InvoiceNo: "PO-1", Lines: twoLines(), Source: "Aceros Andinos"}
	first, err := f.record.RecordBatch(f.ctx, in)
	require.NoError(t, err)
	require.Equal(t, "sup-1", first.Order.SupplierID)

	require.NoError(t, f.store.Items().SoftDelete(f.ctx, "item-1", t0))
	f.store.FailOn("suppliers.list", domain.Storage("search suppliers", errors.New("conexión perdida")))

	second, err := f.record.RecordBatch(f.ctx, in)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.SupplierID, second.Order.SupplierID)
	require.Len(t, second.Transactions, 2)
	assert.Equal(t, first.Transactions[0].ID, second.Transactions[0].ID)

	_, err = f.record.RecordBatch(f.ctx, purchasing.BatchInput{InvoiceNo: "PO-2", Lines: twoLines(), Source: "Proveedor X"})
	assert.ErrorIs(t, err, domain.ErrNotFound, "una factura nueva sí valida el catálogo")
}

func TestRecordBatch_FallaParcialNoDejaEntradas(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	f.store.FailOn("shipments.create", domain.Storage("insert shipments", errors.New("disco lleno")))

	_, err := f.record.RecordBatch(f.ctx, purchasing.BatchInput{InvoiceNo: "FAC-004", Lines: twoLines(), Source: "Proveedor X"})
	assert.ErrorIs(t, err, domain.ErrStorage)

	stored, _ := f.store.Ledger().ListByInvoice(f.ctx, "FAC-004")
	assert.Empty(t, stored)
	order, _ := f.store.PurchaseOrders().GetByInvoice(f.ctx, "FAC-004")
	assert.Nil(t, order)
}

// ── Consulta y PDF ───────────────────────────────────────────────────────────

func TestGetBatch(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	_, err := f.record.RecordBatch(f.ctx, purchasing.BatchInput{InvoiceNo: "FAC-005", Lines: twoLines(), Source: "Aceros Andinos"})
	require.NoError(t, err)

	got, err := f.query.GetBatch(f.ctx, "FAC-005")
	require.NoError(t, err)
	assert.Len(t, got.Transactions, 2)

	_, err = f.query.GetBatch(f.ctx, "FAC-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRenderBatchPDF_EnriqueceLineas(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	_, err := f.record.RecordBatch(f.ctx, purchasing.BatchInput{InvoiceNo: "FAC-006", Lines: twoLines(), Source: "Aceros Andinos"})
	require.NoError(t, err)

	doc, err := f.query.RenderBatchPDF(f.ctx, "FAC-006")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), doc)
	assert.Equal(t, "Aceros Andinos Ltda", f.pdf.supplier)
	require.Len(t, f.pdf.lines, 2)
	assert.ElementsMatch(t, []string{"TOR-001", "TUE-001"}, []string{f.pdf.lines[0].SKU, f.pdf.lines[1].SKU})
}

// ── Recepción de envíos ──────────────────────────────────────────────────────

func TestReceive_SumaStockYCompletaEntrada(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	res, err := f.record.RecordBatch(f.ctx, purchasing.BatchInput{InvoiceNo: "FAC-007", Lines: twoLines()[:1], Source: "Proveedor X"})
	require.NoError(t, err)

	pending, err := f.receive.ListShipments(f.ctx, entity.ShipmentStatusPending, 0, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	sh, err := f.receive.Receive(f.ctx, purchasing.ReceiveInput{ShipmentID: pending[0].ID, WarehouseID: "wh-a", ReceivedBy: "bodega@example.com"})
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentStatusDelivered, sh.Status)
	require.NotNil(t, sh.DeliveredAt)

	sum, err := f.store.StockRecords().SumByWarehouse(f.ctx, "wh-a")
	require.NoError(t, err)
	assert.Equal(t, int64(10), sum)

	entry, err := f.store.Ledger().GetByID(f.ctx, res.Transactions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LedgerStatusCompleted, entry.Status)
	assert.Equal(t, "wh-a", entry.WarehouseID)

	flow, err := f.store.Ledger().FlowByItem(f.ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), flow.StockIn)

	_, err = f.receive.Receive(f.ctx, purchasing.ReceiveInput{ShipmentID: pending[0].ID, WarehouseID: "wh-a"})
	assert.ErrorIs(t, err, domain.ErrConflict, "un envío no se recibe dos veces")
	sum, _ = f.store.StockRecords().SumByWarehouse(f.ctx, "wh-a")
	assert.Equal(t, int64(10), sum)
}

func TestReceive_RespetaCapacidadSiEstaActiva(t *testing.T) {
	f := newFixture(t, appinv.Options{EnforceCapacity: true})
	_, err := f.record.RecordBatch(f.ctx, purchasing.BatchInput{
		InvoiceNo: "FAC-008",
		Lines:     []purchasing.BatchLine{{ItemID: "item-1", Quantity: 20, UnitPrice: decimal.NewFromInt(1)}},
		Source:    "Proveedor X",
	})
	require.NoError(t, err)
	pending, err := f.receive.ListShipments(f.ctx, entity.ShipmentStatusPending, 0, 0)
	require.NoError(t, err)

	_, err = f.receive.Receive(f.ctx, purchasing.ReceiveInput{ShipmentID: pending[0].ID, WarehouseID: "wh-a"})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	still, _ := f.store.Shipments().GetByID(f.ctx, pending[0].ID)
	assert.Equal(t, entity.ShipmentStatusPending, still.Status)
}

func TestReceive_RechazaEnvioDeItemEliminado(t *testing.T) {
	f := newFixture(t, appinv.Options{})
	_, err := f.record.RecordBatch(f.ctx, purchasing.BatchInput{InvoiceNo: "FAC-009", Lines: twoLines()[:1], Source: "Proveedor X"})
	require.NoError(t, err)
	pending, err := f.receive.ListShipments(f.ctx, entity.ShipmentStatusPending, 0, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// Eliminación directa en el almacén, como si hubiera ocurrido entre la lectura previa y la tx.
	require.NoError(t, f.store.Items().SoftDelete(f.ctx, "item-1", t0))

	_, err = f.receive.Receive(f.ctx, purchasing.ReceiveInput{ShipmentID: pending[0].ID, WarehouseID: "wh-a"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	sum, err := f.store.StockRecords().SumByWarehouse(f.ctx, "wh-a")
	require.NoError(t, err)
	assert.Zero(t, sum, "un ítem eliminado no gana stock")
	still, _ := f.store.Shipments().GetByID(f.ctx, pending[0].ID)
	assert.Equal(t, entity.ShipmentStatusPending, still.Status)
}

func TestReceive_Errores(t *testing.T) {
	f := newFixture(t, appinv.Options{})

	_, err := f.receive.Receive(f.ctx, purchasing.ReceiveInput{ShipmentID: "nope", WarehouseID: "wh-a"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.receive.Receive(f.ctx, purchasing.ReceiveInput{ShipmentID: "x", WarehouseID: "wh-404"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.receive.Receive(f.ctx, purchasing.ReceiveInput{WarehouseID: "wh-a"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.receive.ListShipments(f.ctx, "Lost", 10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Package analytics contiene las proyecciones de solo lectura del libro de stock: el
// resumen del dashboard y el reporte exportable.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// scopeAll llave de caché del resumen global.
const scopeAll = "all"

// StockReportGenerator genera el archivo del reporte de stock (XLSX en producción).
type StockReportGenerator interface {
	GenerateStockReport(ctx context.Context, report *dto.StockReportDTO) ([]byte, error)
}

// Scope alcance del resumen; WarehouseID vacío = todas las bodegas.
type Scope struct {
	WarehouseID string
}

func (s Scope) cacheKey() string {
	if s.WarehouseID == "" {
		return scopeAll
	}
	return s.WarehouseID
}

// SummaryUseCase recalcula los contadores del dashboard a partir del agregador y el
// clasificador. El resultado se cachea por alcance; las mutaciones lo invalidan.
type SummaryUseCase struct {
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
	stockRepo     repository.StockRecordRepository
	cache         ports.SummaryCache
	metrics       ports.LedgerMetrics
	report        StockReportGenerator
	log           *logger.Logger
	now           func() time.Time
}

// NewSummaryUseCase construye el caso de uso. cache, metrics y report pueden ser nil.
func NewSummaryUseCase(
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
	stockRepo repository.StockRecordRepository,
	cache ports.SummaryCache,
	metrics ports.LedgerMetrics,
	report StockReportGenerator,
	log *logger.Logger,
) *SummaryUseCase {
	if cache == nil {
		cache = ports.NoopCache{}
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SummaryUseCase{
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
		stockRepo:     stockRepo,
		cache:         cache,
		metrics:       metrics,
		report:        report,
		log:           log,
		now:           time.Now,
	}
}

// snapshot lecturas del resumen, hechas en paralelo y sin locks.
type snapshot struct {
	items      []*entity.Item
	warehouses []*entity.Warehouse
	records    []entity.StockRecord
}

// Summarize devuelve el resumen del alcance. Una falla de la caché se registra y se
// recalcula; nunca falla la consulta. La generación se lee antes que los datos: si una
// mutación invalida mientras se calcula, el resultado queda en la generación anterior.
func (uc *SummaryUseCase) Summarize(ctx context.Context, scope Scope) (*dto.SummaryDTO, error) {
	start := time.Now()
	scope.WarehouseID = strings.TrimSpace(scope.WarehouseID)
	key := scope.cacheKey()

	gen, err := uc.cache.Generation(ctx)
	cacheOK := err == nil
	if err != nil {
		uc.log.Warn().Err(err).Str("scope", key).Msg("caché del resumen no disponible")
	}
	if cacheOK {
		cached, ok, err := uc.cache.Get(ctx, gen, key)
		if err != nil {
			uc.log.Warn().Err(err).Str("scope", key).Msg("caché del resumen no disponible")
		}
		if ok {
			uc.metrics.SummaryComputed(true, time.Since(start))
			return cached, nil
		}
	}

	snap, err := uc.load(ctx, scope)
	if err != nil {
		return nil, err
	}
	summary, err := summarize(snap, scope, uc.now())
	if err != nil {
		if errors.Is(err, domain.ErrDataIntegrity) {
			uc.log.Error().Err(err).Str("scope", key).Msg("integridad de datos al calcular el resumen")
		}
		return nil, err
	}

	if cacheOK {
		if err := uc.cache.Set(ctx, gen, key, summary); err != nil {
			uc.log.Warn().Err(err).Str("scope", key).Msg("no se pudo cachear el resumen")
		}
	}
	uc.metrics.SummaryComputed(false, time.Since(start))
	return summary, nil
}

// load lee ítems, bodegas y registros en paralelo.
func (uc *SummaryUseCase) load(ctx context.Context, scope Scope) (*snapshot, error) {
	type itemsResult struct {
		items []*entity.Item
		err   error
	}
	type warehousesResult struct {
		warehouses []*entity.Warehouse
		err        error
	}
	type recordsResult struct {
		records []entity.StockRecord
		err     error
	}

	itemsCh := make(chan itemsResult, 1)
	warehousesCh := make(chan warehousesResult, 1)
	recordsCh := make(chan recordsResult, 1)

	go func() {
		items, err := uc.itemRepo.ListActive(ctx)
		itemsCh <- itemsResult{items, err}
	}()
	go func() {
		if scope.WarehouseID == "" {
			whs, err := uc.warehouseRepo.ListAll(ctx)
			warehousesCh <- warehousesResult{whs, err}
			return
		}
		wh, err := uc.warehouseRepo.GetByID(ctx, scope.WarehouseID)
		if err == nil && wh == nil {
			err = fmt.Errorf("bodega %s: %w", scope.WarehouseID, domain.ErrNotFound)
		}
		warehousesCh <- warehousesResult{[]*entity.Warehouse{wh}, err}
	}()
	go func() {
		var (
			records []entity.StockRecord
			err     error
		)
		if scope.WarehouseID == "" {
			records, err = uc.stockRepo.ListAll(ctx)
		} else {
			records, err = uc.stockRepo.ListByWarehouse(ctx, scope.WarehouseID)
		}
		recordsCh <- recordsResult{records, err}
	}()

	items := <-itemsCh
	whs := <-warehousesCh
	recs := <-recordsCh

	if items.err != nil {
		return nil, fmt.Errorf("resumen: ítems: %w", items.err)
	}
	if whs.err != nil {
		return nil, fmt.Errorf("resumen: bodegas: %w", whs.err)
	}
	if recs.err != nil {
		return nil, fmt.Errorf("resumen: registros de stock: %w", recs.err)
	}
	return &snapshot{items: items.items, warehouses: whs.warehouses, records: recs.records}, nil
}

func summarize(snap *snapshot, scope Scope, at time.Time) (*dto.SummaryDTO, error) {
	byItem, err := inventory.AggregateByItem(snap.records)
	if err != nil {
		return nil, err
	}
	byWarehouse, err := inventory.AggregateByWarehouse(snap.records)
	if err != nil {
		return nil, err
	}

	out := &dto.SummaryDTO{
		WarehouseID:    scope.WarehouseID,
		TotalItems:     len(snap.items),
		WarehouseCount: len(snap.warehouses),
		Warehouses:     make([]dto.WarehouseUtilizationDTO, 0, len(snap.warehouses)),
		GeneratedAt:    at,
	}
	for _, it := range snap.items {
		qty := byItem[it.ID]
		out.TotalQuantity += qty
		switch inventory.Classify(qty, it.MinQuantity, it.MaxQuantity) {
		case entity.StockStatusOutOfStock:
			out.OutOfStockCount++
		case entity.StockStatusLow:
			out.LowStockCount++
		case entity.StockStatusOverstocked:
			out.OverstockedCount++
		default:
			out.NormalCount++
		}
	}
	for _, wh := range snap.warehouses {
		out.Warehouses = append(out.Warehouses, utilizationOf(wh, byWarehouse[wh.ID]))
	}
	return out, nil
}

func utilizationOf(wh *entity.Warehouse, used int64) dto.WarehouseUtilizationDTO {
	pct, available := inventory.Utilization(used, wh.MaxCapacity)
	return dto.WarehouseUtilizationDTO{
		WarehouseID:    wh.ID,
		Name:           wh.Name,
		Used:           used,
		MaxCapacity:    wh.MaxCapacity,
		Available:      available,
		UtilizationPct: pct,
		Status:         string(inventory.UtilizationStatus(pct)),
	}
}

// ExportStockReport genera el reporte de stock de todas las bodegas. Siempre se calcula
// sobre lecturas frescas, sin pasar por la caché.
func (uc *SummaryUseCase) ExportStockReport(ctx context.Context) ([]byte, error) {
	if uc.report == nil {
		return nil, fmt.Errorf("reporte de stock no configurado: %w", domain.ErrStorage)
	}
	snap, err := uc.load(ctx, Scope{})
	if err != nil {
		return nil, err
	}
	summary, err := summarize(snap, Scope{}, uc.now())
	if err != nil {
		return nil, err
	}
	byItem, err := inventory.AggregateByItem(snap.records)
	if err != nil {
		return nil, err
	}

	report := &dto.StockReportDTO{
		GeneratedAt: summary.GeneratedAt,
		Items:       make([]dto.StockReportRowDTO, 0, len(snap.items)),
		Warehouses:  summary.Warehouses,
	}
	for _, it := range snap.items {
		qty := byItem[it.ID]
		report.Items = append(report.Items, dto.StockReportRowDTO{
			SKU:         it.SKU,
			Name:        it.Name,
			OnHand:      qty,
			MinQuantity: it.MinQuantity,
			MaxQuantity: it.MaxQuantity,
			Status:      string(inventory.Classify(qty, it.MinQuantity, it.MaxQuantity)),
			UnitPrice:   it.UnitPrice,
			StockValue:  it.UnitPrice.Mul(decimal.NewFromInt(qty)).Round(2),
		})
	}
	return uc.report.GenerateStockReport(ctx, report)
}

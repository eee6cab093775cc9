package inventory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// StockLevelUseCase consultas de stock: solo lectura, sin locks.
type StockLevelUseCase struct {
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
	stockRepo     repository.StockRecordRepository
	ledgerRepo    repository.LedgerRepository
}

// NewStockLevelUseCase construye el caso de uso.
func NewStockLevelUseCase(
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
	stockRepo repository.StockRecordRepository,
	ledgerRepo repository.LedgerRepository,
) *StockLevelUseCase {
	return &StockLevelUseCase{
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
		stockRepo:     stockRepo,
		ledgerRepo:    ledgerRepo,
	}
}

// GetStockLevel entradas y salidas completadas del libro más el stock agregado en bodegas.
func (uc *StockLevelUseCase) GetStockLevel(ctx context.Context, itemID string) (*dto.StockLevelDTO, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, domain.Invalid("item_id", "es obligatorio")
	}
	item, err := LoadItem(ctx, uc.itemRepo, itemID)
	if err != nil {
		return nil, err
	}
	records, err := uc.stockRepo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	total, err := inventory.Aggregate(records, itemID, "")
	if err != nil {
		return nil, err
	}
	flow, err := uc.ledgerRepo.FlowByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return &dto.StockLevelDTO{
		ItemID:     itemID,
		StockIn:    flow.StockIn,
		StockOut:   flow.StockOut,
		TotalStock: total,
		Status:     string(inventory.Classify(total, item.MinQuantity, item.MaxQuantity)),
	}, nil
}

// GetAllStockLevels niveles de todos los ítems activos, indexados por item_id.
func (uc *StockLevelUseCase) GetAllStockLevels(ctx context.Context) (map[string]dto.StockLevelDTO, error) {
	items, err := uc.itemRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	records, err := uc.stockRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := inventory.AggregateByItem(records)
	if err != nil {
		return nil, err
	}
	flows, err := uc.ledgerRepo.FlowAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]dto.StockLevelDTO, len(items))
	for _, it := range items {
		total := totals[it.ID]
		out[it.ID] = dto.StockLevelDTO{
			ItemID:     it.ID,
			StockIn:    flows[it.ID].StockIn,
			StockOut:   flows[it.ID].StockOut,
			TotalStock: total,
			Status:     string(inventory.Classify(total, it.MinQuantity, it.MaxQuantity)),
		}
	}
	return out, nil
}

// GetItemWarehouses stock del ítem desglosado por bodega, ordenado por nombre de bodega.
func (uc *StockLevelUseCase) GetItemWarehouses(ctx context.Context, itemID string) (*dto.ItemStockBreakdownDTO, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, domain.Invalid("item_id", "es obligatorio")
	}
	item, err := LoadItem(ctx, uc.itemRepo, itemID)
	if err != nil {
		return nil, err
	}
	records, err := uc.stockRepo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	byWarehouse, err := inventory.AggregateByWarehouse(records)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(byWarehouse))
	for _, r := range records {
		counts[r.WarehouseID]++
	}
	warehouses, err := uc.warehouseRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(warehouses))
	for _, wh := range warehouses {
		names[wh.ID] = wh.Name
	}

	out := &dto.ItemStockBreakdownDTO{ItemID: itemID, Warehouses: make([]dto.ItemWarehouseStockDTO, 0, len(byWarehouse))}
	for whID, qty := range byWarehouse {
		out.TotalStock += qty
		out.Warehouses = append(out.Warehouses, dto.ItemWarehouseStockDTO{
			WarehouseID:   whID,
			WarehouseName: names[whID],
			Quantity:      qty,
			Records:       counts[whID],
		})
	}
	sort.Slice(out.Warehouses, func(i, j int) bool {
		a, b := out.Warehouses[i], out.Warehouses[j]
		if a.WarehouseName != b.WarehouseName {
			return a.WarehouseName < b.WarehouseName
		}
		return a.WarehouseID < b.WarehouseID
	})
	out.Status = string(inventory.Classify(out.TotalStock, item.MinQuantity, item.MaxQuantity))
	return out, nil
}

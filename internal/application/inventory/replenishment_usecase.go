package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición: ítems bajos o agotados con la cantidad
// sugerida para volver al nivel ideal.
type ReplenishmentUseCase struct {
	itemRepo  repository.ItemRepository
	stockRepo repository.StockRecordRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(itemRepo repository.ItemRepository, stockRepo repository.StockRecordRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{itemRepo: itemRepo, stockRepo: stockRepo}
}

// GenerateReplenishmentList devuelve los ítems en estado low u out_of_stock.
// warehouseID vacío considera el stock de todas las bodegas.
// Nivel ideal: max_quantity si está definido, si no 1.5 × min_quantity (mínimo min+1).
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, warehouseID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	items, err := uc.itemRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	var records []entity.StockRecord
	if warehouseID == "" {
		records, err = uc.stockRepo.ListAll(ctx)
	} else {
		records, err = uc.stockRepo.ListByWarehouse(ctx, warehouseID)
	}
	if err != nil {
		return nil, err
	}
	totals, err := inventory.AggregateByItem(records)
	if err != nil {
		return nil, err
	}

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0)
	for _, it := range items {
		current := totals[it.ID]
		status := inventory.Classify(current, it.MinQuantity, it.MaxQuantity)
		if status != entity.StockStatusLow && status != entity.StockStatusOutOfStock {
			continue
		}
		ideal := idealStock(it)
		qty := max(ideal-current, 0)
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ItemID:            it.ID,
			SKU:               it.SKU,
			Name:              it.Name,
			Status:            string(status),
			CurrentStock:      current,
			MinQuantity:       it.MinQuantity,
			IdealStock:        ideal,
			SuggestedOrderQty: qty,
			UnitPrice:         it.UnitPrice,
			EstimatedCost:     it.UnitPrice.Mul(decimal.NewFromInt(qty)),
			SupplierID:        it.SupplierID,
		})
	}

	// Primero los agotados, luego mayor déficit relativo al mínimo, luego SKU.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		aOut, bOut := a.CurrentStock == 0, b.CurrentStock == 0
		if aOut != bOut {
			return aOut
		}
		if ra, rb := coverage(a), coverage(b); ra != rb {
			return ra < rb
		}
		return a.SKU < b.SKU
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

func idealStock(it *entity.Item) int64 {
	if it.MaxQuantity > 0 {
		return it.MaxQuantity
	}
	ideal := it.MinQuantity * 3 / 2
	return max(ideal, it.MinQuantity+1)
}

// coverage fracción del mínimo cubierta por el stock actual.
func coverage(s dto.ReplenishmentSuggestionDTO) float64 {
	if s.MinQuantity <= 0 {
		return 1
	}
	return float64(s.CurrentStock) / float64(s.MinQuantity)
}

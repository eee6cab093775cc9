package inventory

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// Classify asigna el estado de stock. El orden de las reglas es parte del contrato:
// cero siempre es OutOfStock, aunque min también sea cero.
func Classify(current, min, max int64) entity.StockStatus {
	switch {
	case current == 0:
		return entity.StockStatusOutOfStock
	case current <= min:
		return entity.StockStatusLow
	case max > 0 && current > max:
		return entity.StockStatusOverstocked
	default:
		return entity.StockStatusNormal
	}
}

package inventory

import (
	"math"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Utilization devuelve el porcentaje de ocupación redondeado y las unidades libres.
// Sin capacidad declarada (maxCapacity <= 0) la utilización es 0.
func Utilization(used, maxCapacity int64) (percent int, available int64) {
	if maxCapacity > 0 {
		percent = int(math.Round(float64(used) / float64(maxCapacity) * 100))
	}
	available = maxCapacity - used
	if available < 0 {
		available = 0
	}
	return percent, available
}

// UtilizationStatus etiqueta un porcentaje de ocupación.
func UtilizationStatus(percent int) entity.UtilizationStatus {
	switch {
	case percent >= 100:
		return entity.UtilizationFull
	case percent >= 90:
		return entity.UtilizationCritical
	case percent >= 75:
		return entity.UtilizationHigh
	case percent >= 50:
		return entity.UtilizationMedium
	default:
		return entity.UtilizationAvailable
	}
}

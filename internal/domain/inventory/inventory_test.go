package inventory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func rec(id, item, wh string, qty int64) entity.StockRecord {
	return entity.StockRecord{ID: id, ItemID: item, WarehouseID: wh, Quantity: qty}
}

// ──────────────────────────────────────────────────────────────────────────────
// Classify
// ──────────────────────────────────────────────────────────────────────────────

func TestClassify_Tabla(t *testing.T) {
	cases := []struct {
		name            string
		current, mn, mx int64
		want            entity.StockStatus
	}{
		{"cero con min positivo", 0, 10, 20, entity.StockStatusOutOfStock},
		{"cero con min cero gana agotado", 0, 0, 0, entity.StockStatusOutOfStock},
		{"bajo", 5, 10, 20, entity.StockStatusLow},
		{"igual al minimo es bajo", 10, 10, 20, entity.StockStatusLow},
		{"normal", 15, 10, 20, entity.StockStatusNormal},
		{"igual al maximo es normal", 20, 10, 20, entity.StockStatusNormal},
		{"sobrestock", 25, 10, 20, entity.StockStatusOverstocked},
		{"sin maximo nunca sobrestock", 1000, 10, 0, entity.StockStatusNormal},
		{"max menor que min no es bajo por si solo", 7, 5, 3, entity.StockStatusOverstocked},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, inventory.Classify(tc.current, tc.mn, tc.mx))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Aggregate
// ──────────────────────────────────────────────────────────────────────────────

func TestAggregate_FiltraPorItemYBodega(t *testing.T) {
	records := []entity.StockRecord{
		rec("r1", "x", "a", 3),
		rec("r2", "x", "a", 4),
		rec("r3", "x", "b", 5),
		rec("r4", "y", "a", 100),
	}

	total, err := inventory.Aggregate(records, "x", "")
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)

	inA, err := inventory.Aggregate(records, "x", "a")
	require.NoError(t, err)
	assert.Equal(t, int64(7), inA)

	none, err := inventory.Aggregate(records, "z", "")
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestAggregate_CantidadNegativaEsErrorDeIntegridad(t *testing.T) {
	_, err := inventory.Aggregate([]entity.StockRecord{rec("r1", "x", "a", -1)}, "x", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataIntegrity))

	var die *domain.DataIntegrityError
	require.ErrorAs(t, err, &die)
	assert.Equal(t, "r1", die.ID)
}

func TestAggregateByItemYWarehouse(t *testing.T) {
	records := []entity.StockRecord{rec("r1", "x", "a", 3), rec("r2", "y", "a", 4), rec("r3", "x", "b", 5)}

	byItem, err := inventory.AggregateByItem(records)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"x": 8, "y": 4}, byItem)

	byWh, err := inventory.AggregateByWarehouse(records)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"a": 7, "b": 5}, byWh)
}

// ──────────────────────────────────────────────────────────────────────────────
// Utilization
// ──────────────────────────────────────────────────────────────────────────────

func TestUtilization(t *testing.T) {
	pct, avail := inventory.Utilization(333, 1000)
	assert.Equal(t, 33, pct)
	assert.Equal(t, int64(667), avail)

	pct, avail = inventory.Utilization(1200, 1000)
	assert.Equal(t, 120, pct)
	assert.Zero(t, avail, "available nunca es negativo")

	pct, avail = inventory.Utilization(50, 0)
	assert.Zero(t, pct, "sin capacidad la utilización es 0")
	assert.Zero(t, avail)

	pct, _ = inventory.Utilization(2, 3)
	assert.Equal(t, 67, pct, "redondeo al entero más cercano")
}

func TestUtilizationStatus_Limites(t *testing.T) {
	assert.Equal(t, entity.UtilizationAvailable, inventory.UtilizationStatus(49))
	assert.Equal(t, entity.UtilizationMedium, inventory.UtilizationStatus(50))
	assert.Equal(t, entity.UtilizationMedium, inventory.UtilizationStatus(74))
	assert.Equal(t, entity.UtilizationHigh, inventory.UtilizationStatus(75))
	assert.Equal(t, entity.UtilizationHigh, inventory.UtilizationStatus(89))
	assert.Equal(t, entity.UtilizationCritical, inventory.UtilizationStatus(90))
	assert.Equal(t, entity.UtilizationCritical, inventory.UtilizationStatus(99))
	assert.Equal(t, entity.UtilizationFull, inventory.UtilizationStatus(100))
	assert.Equal(t, entity.UtilizationFull, inventory.UtilizationStatus(140))
}

// ──────────────────────────────────────────────────────────────────────────────
// PlanDecrement
// ──────────────────────────────────────────────────────────────────────────────

// Escenario: dos registros {3} y {4}; salen 5 → el primero se elimina y el segundo queda en 2.
func TestPlanDecrement_VariosRegistros(t *testing.T) {
	records := []entity.StockRecord{rec("r1", "x", "a", 3), rec("r2", "x", "a", 4)}

	plan, err := inventory.PlanDecrement(records, "x", "a", 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"r1"}, plan.Deletions)
	assert.Equal(t, []inventory.RecordUpdate{{RecordID: "r2", Quantity: 2}}, plan.Updates)
	assert.Equal(t, int64(5), plan.Removed)
	assert.Equal(t, int64(7), plan.Available)
}

func TestPlanDecrement_ExactoEliminaTodo(t *testing.T) {
	records := []entity.StockRecord{rec("r1", "x", "a", 3), rec("r2", "x", "a", 4)}

	plan, err := inventory.PlanDecrement(records, "x", "a", 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, plan.Deletions)
	assert.Empty(t, plan.Updates)
}

func TestPlanDecrement_NoTocaRegistrosSobrantes(t *testing.T) {
	records := []entity.StockRecord{rec("r1", "x", "a", 10), rec("r2", "x", "a", 4)}

	plan, err := inventory.PlanDecrement(records, "x", "a", 4)
	require.NoError(t, err)
	assert.Empty(t, plan.Deletions)
	assert.Equal(t, []inventory.RecordUpdate{{RecordID: "r1", Quantity: 6}}, plan.Updates)
}

func TestPlanDecrement_Insuficiente(t *testing.T) {
	records := []entity.StockRecord{rec("r1", "x", "a", 3)}

	plan, err := inventory.PlanDecrement(records, "x", "a", 5)
	require.Error(t, err)

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, int64(3), ise.Available)
	assert.Equal(t, int64(5), ise.Requested)
	assert.Empty(t, plan.Updates)
	assert.Empty(t, plan.Deletions)
}

func TestPlanDecrement_SinRegistros(t *testing.T) {
	_, err := inventory.PlanDecrement(nil, "x", "a", 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestPlanDecrement_RegistroEnCeroEsErrorDeIntegridad(t *testing.T) {
	_, err := inventory.PlanDecrement([]entity.StockRecord{rec("r1", "x", "a", 0)}, "x", "a", 1)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
}

func TestPlanDecrement_CantidadNoPositiva(t *testing.T) {
	_, err := inventory.PlanDecrement([]entity.StockRecord{rec("r1", "x", "a", 3)}, "x", "a", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLockKeys_OrdenGlobal(t *testing.T) {
	keys := inventory.LockKeys("x", []string{"b", "a", "b"}, []string{"b"})
	assert.Equal(t, []string{
		inventory.PairKey("x", "a"),
		inventory.PairKey("x", "b"),
		inventory.WarehouseKey("b"),
	}, keys)

	assert.Equal(t, []string{inventory.PairKey("x", "a")}, inventory.LockKeys("x", []string{"a"}, nil))
}

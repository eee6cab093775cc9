package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/events"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// WithdrawUseCase registra salidas de stock (venta, consumo, merma) en una bodega.
type WithdrawUseCase struct {
	txRunner      TxRunner
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
	stockRepo     repository.StockRecordRepository
	effects       *ports.AfterCommit
	log           *logger.Logger
	now           func() time.Time
}

// NewWithdrawUseCase construye el caso de uso.
func NewWithdrawUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
	stockRepo repository.StockRecordRepository,
	effects *ports.AfterCommit,
	log *logger.Logger,
) *WithdrawUseCase {
	return &WithdrawUseCase{
		txRunner:      txRunner,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
		stockRepo:     stockRepo,
		effects:       effects,
		log:           log,
		now:           time.Now,
	}
}

// WithdrawInput entrada de una salida de stock.
type WithdrawInput struct {
	ItemID      string
	WarehouseID string
	Quantity    int64
	Reason      string
	CreatedBy   string
}

// WithdrawResult movimiento registrado y saldo que queda en la bodega.
type WithdrawResult struct {
	Entry     *entity.LedgerEntry
	Remaining int64
}

// Withdraw descuenta quantity del par (ítem, bodega) con el mismo reparto voraz del traslado
// y agrega un movimiento stock_out Completed al libro, todo en una transacción.
func (uc *WithdrawUseCase) Withdraw(ctx context.Context, in WithdrawInput) (*WithdrawResult, error) {
	switch {
	case strings.TrimSpace(in.ItemID) == "":
		return nil, domain.Invalid("item_id", "es obligatorio")
	case strings.TrimSpace(in.WarehouseID) == "":
		return nil, domain.Invalid("warehouse_id", "es obligatorio")
	case in.Quantity <= 0:
		return nil, domain.Invalid("quantity", "debe ser mayor que cero")
	}
	item, err := LoadItem(ctx, uc.itemRepo, in.ItemID)
	if err != nil {
		return nil, err
	}
	if _, err := LoadWarehouse(ctx, uc.warehouseRepo, in.WarehouseID); err != nil {
		return nil, err
	}

	now := uc.now()
	source := strings.TrimSpace(in.Reason)
	if source == "" {
		source = "withdrawal"
	}
	entry := &entity.LedgerEntry{
		ID:          uuid.New().String(),
		ItemID:      in.ItemID,
		Type:        entity.LedgerTypeStockOut,
		Quantity:    in.Quantity,
		UnitPrice:   item.UnitPrice,
		TotalPrice:  item.UnitPrice.Mul(decimal.NewFromInt(in.Quantity)),
		Status:      entity.LedgerStatusCompleted,
		WarehouseID: in.WarehouseID,
		Source:      source,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
	}

	var remaining int64
	err = uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		if err := tx.Locker.Lock(ctx, inventory.PairKey(in.ItemID, in.WarehouseID)); err != nil {
			return err
		}
		records, err := tx.Stock.ListByPairForUpdate(ctx, in.ItemID, in.WarehouseID)
		if err != nil {
			return err
		}
		plan, err := inventory.PlanDecrement(records, in.ItemID, in.WarehouseID, in.Quantity)
		if err != nil {
			return err
		}
		if err := ApplyDecrement(ctx, tx.Stock, plan, now); err != nil {
			return err
		}
		remaining = plan.Available - plan.Removed
		return tx.Ledger.CreateMany(ctx, []*entity.LedgerEntry{entry})
	})
	if err != nil {
		var integrity *domain.DataIntegrityError
		if errors.As(err, &integrity) {
			uc.log.Error().Err(err).Str("item_id", in.ItemID).Str("warehouse_id", in.WarehouseID).
				Msg("salida abortada por datos inconsistentes")
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.effects.Metrics().StockRejected("withdraw")
		}
		return nil, err
	}

	uc.log.Info().Str("transaction_id", entry.ID).Str("item_id", in.ItemID).
		Str("warehouse_id", in.WarehouseID).Int64("quantity", in.Quantity).Msg("salida de stock registrada")
	uc.effects.Metrics().StockWithdrawn(in.Quantity)

	evs := []events.Event{events.StockWithdrawn{
		TransactionID: entry.ID,
		ItemID:        in.ItemID,
		WarehouseID:   in.WarehouseID,
		Quantity:      in.Quantity,
		Reason:        in.Reason,
		OccurredAt:    now,
	}}
	if alert, ok := uc.stockAlert(ctx, item, now); ok {
		evs = append(evs, alert)
	}
	uc.effects.Apply(ctx, evs...)

	return &WithdrawResult{Entry: entry, Remaining: remaining}, nil
}

// stockAlert reclasifica el ítem tras la salida; solo bajo o agotado generan alerta.
// Es una lectura posterior al commit: si falla se registra y se omite la alerta.
func (uc *WithdrawUseCase) stockAlert(ctx context.Context, item *entity.Item, at time.Time) (events.StockAlert, bool) {
	records, err := uc.stockRepo.ListByItem(ctx, item.ID)
	if err != nil {
		uc.log.Warn().Err(err).Str("item_id", item.ID).Msg("no se pudo reclasificar el ítem")
		return events.StockAlert{}, false
	}
	current, err := inventory.Aggregate(records, item.ID, "")
	if err != nil {
		uc.log.Error().Err(err).Str("item_id", item.ID).Msg("stock inconsistente al reclasificar")
		return events.StockAlert{}, false
	}
	status := inventory.Classify(current, item.MinQuantity, item.MaxQuantity)
	if status != entity.StockStatusLow && status != entity.StockStatusOutOfStock {
		return events.StockAlert{}, false
	}
	return events.StockAlert{
		ItemID:      item.ID,
		SKU:         item.SKU,
		Status:      status,
		Current:     current,
		MinQuantity: item.MinQuantity,
		OccurredAt:  at,
	}, true
}

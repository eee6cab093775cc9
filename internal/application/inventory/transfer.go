package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/events"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Options reglas configurables de los casos de uso de inventario.
type Options struct {
	EnforceCapacity bool
}

// TransferUseCase mueve stock de un ítem entre dos bodegas.
type TransferUseCase struct {
	txRunner      TxRunner
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
	transferRepo  repository.TransferRepository
	effects       *ports.AfterCommit
	log           *logger.Logger
	opts          Options
	now           func() time.Time
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
	transferRepo repository.TransferRepository,
	effects *ports.AfterCommit,
	log *logger.Logger,
	opts Options,
) *TransferUseCase {
	return &TransferUseCase{
		txRunner:      txRunner,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
		transferRepo:  transferRepo,
		effects:       effects,
		log:           log,
		opts:          opts,
		now:           time.Now,
	}
}

// TransferInput entrada de un traslado.
type TransferInput struct {
	ItemID          string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int64
	CreatedBy       string
}

func (in TransferInput) validate() error {
	switch {
	case strings.TrimSpace(in.ItemID) == "":
		return domain.Invalid("item_id", "es obligatorio")
	case strings.TrimSpace(in.FromWarehouseID) == "":
		return domain.Invalid("from_warehouse_id", "es obligatorio")
	case strings.TrimSpace(in.ToWarehouseID) == "":
		return domain.Invalid("to_warehouse_id", "es obligatorio")
	case in.FromWarehouseID == in.ToWarehouseID:
		return domain.Invalid("to_warehouse_id", "debe ser distinta de la bodega de origen")
	case in.Quantity <= 0:
		return domain.Invalid("quantity", "debe ser mayor que cero")
	}
	return nil
}

// Transfer ejecuta el traslado en una sola transacción: bloquea los pares origen/destino en
// orden global, descuenta los registros de origen en orden de carga (eliminando los que
// quedan en cero), incrementa o crea el registro de destino y agrega el log del traslado.
// Si algo falla no queda ninguna escritura.
func (uc *TransferUseCase) Transfer(ctx context.Context, in TransferInput) (*entity.Transfer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := LoadItem(ctx, uc.itemRepo, in.ItemID); err != nil {
		return nil, err
	}
	if _, err := LoadWarehouse(ctx, uc.warehouseRepo, in.FromWarehouseID); err != nil {
		return nil, err
	}
	toWh, err := LoadWarehouse(ctx, uc.warehouseRepo, in.ToWarehouseID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	transfer := &entity.Transfer{
		ID:              uuid.New().String(),
		ItemID:          in.ItemID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		Status:          entity.TransferStatusCompleted,
		CreatedBy:       in.CreatedBy,
		CreatedAt:       now,
	}

	var capacityKeys []string
	if uc.opts.EnforceCapacity {
		capacityKeys = []string{in.ToWarehouseID}
	}
	keys := inventory.LockKeys(in.ItemID, []string{in.FromWarehouseID, in.ToWarehouseID}, capacityKeys)

	err = uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		if err := tx.Locker.Lock(ctx, keys...); err != nil {
			return err
		}
		source, err := tx.Stock.ListByPairForUpdate(ctx, in.ItemID, in.FromWarehouseID)
		if err != nil {
			return err
		}
		plan, err := inventory.PlanDecrement(source, in.ItemID, in.FromWarehouseID, in.Quantity)
		if err != nil {
			return err
		}
		if err := ApplyDecrement(ctx, tx.Stock, plan, now); err != nil {
			return err
		}
		if uc.opts.EnforceCapacity {
			if err := CheckCapacity(ctx, tx.Stock, toWh, in.Quantity); err != nil {
				return err
			}
		}
		if err := Deposit(ctx, tx.Stock, in.ItemID, in.ToWarehouseID, in.Quantity, now); err != nil {
			return err
		}
		return tx.Transfers.Create(ctx, transfer)
	})
	if err != nil {
		uc.reject(in, err)
		return nil, err
	}

	uc.log.Info().
		Str("transfer_id", transfer.ID).
		Str("item_id", in.ItemID).
		Str("from", in.FromWarehouseID).
		Str("to", in.ToWarehouseID).
		Int64("quantity", in.Quantity).
		Msg("traslado completado")
	uc.effects.Metrics().TransferCompleted(in.Quantity)
	uc.effects.Apply(ctx, events.TransferCompleted{
		TransferID:      transfer.ID,
		ItemID:          transfer.ItemID,
		FromWarehouseID: transfer.FromWarehouseID,
		ToWarehouseID:   transfer.ToWarehouseID,
		Quantity:        transfer.Quantity,
		CreatedBy:       transfer.CreatedBy,
		OccurredAt:      now,
	})
	return transfer, nil
}

func (uc *TransferUseCase) reject(in TransferInput, err error) {
	var integrity *domain.DataIntegrityError
	switch {
	case errors.As(err, &integrity):
		uc.log.Error().Err(err).
			Str("item_id", in.ItemID).
			Str("warehouse_id", in.FromWarehouseID).
			Msg("traslado abortado por datos inconsistentes")
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrCapacityExceeded):
		uc.effects.Metrics().StockRejected("transfer")
	}
}

// ListTransfers historial de traslados, más recientes primero.
func (uc *TransferUseCase) ListTransfers(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return uc.transferRepo.List(ctx, f)
}

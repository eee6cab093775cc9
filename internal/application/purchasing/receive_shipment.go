package purchasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/events"
	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ReceiveShipmentUseCase recibe envíos entrantes en una bodega.
type ReceiveShipmentUseCase struct {
	txRunner        TxRunner
	shipmentRepo    repository.ShipmentRepository
	warehouseRepo   repository.WarehouseRepository
	effects         *ports.AfterCommit
	log             *logger.Logger
	enforceCapacity bool
	now             func() time.Time
}

// NewReceiveShipmentUseCase construye el caso de uso.
func NewReceiveShipmentUseCase(
	txRunner TxRunner,
	shipmentRepo repository.ShipmentRepository,
	warehouseRepo repository.WarehouseRepository,
	effects *ports.AfterCommit,
	log *logger.Logger,
	opts appinv.Options,
) *ReceiveShipmentUseCase {
	return &ReceiveShipmentUseCase{
		txRunner:        txRunner,
		shipmentRepo:    shipmentRepo,
		warehouseRepo:   warehouseRepo,
		effects:         effects,
		log:             log,
		enforceCapacity: opts.EnforceCapacity,
		now:             time.Now,
	}
}

// ReceiveInput entrada de una recepción.
type ReceiveInput struct {
	ShipmentID  string
	WarehouseID string
	ReceivedBy  string
}

// Receive pasa el envío de Pending a Delivered, suma la cantidad al par (ítem, bodega) y
// completa la entrada del libro vinculada, todo en una transacción. Un envío ya entregado
// devuelve ErrConflict.
func (uc *ReceiveShipmentUseCase) Receive(ctx context.Context, in ReceiveInput) (*entity.Shipment, error) {
	switch {
	case strings.TrimSpace(in.ShipmentID) == "":
		return nil, domain.Invalid("shipment_id", "es obligatorio")
	case strings.TrimSpace(in.WarehouseID) == "":
		return nil, domain.Invalid("warehouse_id", "es obligatorio")
	}
	wh, err := appinv.LoadWarehouse(ctx, uc.warehouseRepo, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	// Lectura previa sin lock solo para conocer el ítem y armar las llaves.
	pre, err := uc.shipmentRepo.GetByID(ctx, in.ShipmentID)
	if err != nil {
		return nil, err
	}
	if pre == nil {
		return nil, fmt.Errorf("envío %s: %w", in.ShipmentID, domain.ErrNotFound)
	}

	var capacityKeys []string
	if uc.enforceCapacity {
		capacityKeys = []string{wh.ID}
	}
	keys := inventory.LockKeys(pre.ItemID, []string{wh.ID}, capacityKeys)
	now := uc.now()

	var delivered *entity.Shipment
	err = uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		if err := tx.Locker.Lock(ctx, keys...); err != nil {
			return err
		}
		sh, err := tx.Shipments.GetForUpdate(ctx, in.ShipmentID)
		if err != nil {
			return err
		}
		if sh == nil {
			return fmt.Errorf("envío %s: %w", in.ShipmentID, domain.ErrNotFound)
		}
		if sh.Status != entity.ShipmentStatusPending {
			return fmt.Errorf("envío %s en estado %s: %w", sh.ID, sh.Status, domain.ErrConflict)
		}
		item, err := tx.Items.GetByID(ctx, sh.ItemID)
		if err != nil {
			return err
		}
		if item == nil || item.IsDeleted {
			return fmt.Errorf("envío %s: el ítem %s fue eliminado: %w", sh.ID, sh.ItemID, domain.ErrConflict)
		}
		if uc.enforceCapacity {
			if err := appinv.CheckCapacity(ctx, tx.Stock, wh, sh.Quantity); err != nil {
				return err
			}
		}
		if err := appinv.Deposit(ctx, tx.Stock, sh.ItemID, wh.ID, sh.Quantity, now); err != nil {
			return err
		}
		if err := tx.Shipments.MarkDelivered(ctx, sh.ID, wh.ID, now); err != nil {
			return err
		}
		if sh.TransactionID != "" {
			if err := tx.Ledger.UpdateStatus(ctx, sh.TransactionID, entity.LedgerStatusCompleted, wh.ID); err != nil {
				return err
			}
		}
		sh.Status = entity.ShipmentStatusDelivered
		sh.WarehouseID = wh.ID
		sh.DeliveredAt = &now
		delivered = sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("shipment_id", delivered.ID).Str("item_id", delivered.ItemID).
		Str("warehouse_id", wh.ID).Int64("quantity", delivered.Quantity).
		Str("received_by", in.ReceivedBy).Msg("envío recibido")
	uc.effects.Metrics().ShipmentDelivered(delivered.Quantity)
	uc.effects.Apply(ctx, events.ShipmentDelivered{
		ShipmentID:    delivered.ID,
		TransactionID: delivered.TransactionID,
		ItemID:        delivered.ItemID,
		WarehouseID:   wh.ID,
		Quantity:      delivered.Quantity,
		OccurredAt:    now,
	})
	return delivered, nil
}

// ListShipments envíos filtrados por estado ("" = todos), más recientes primero.
func (uc *ReceiveShipmentUseCase) ListShipments(ctx context.Context, status string, limit, offset int) ([]*entity.Shipment, error) {
	switch status {
	case "", entity.ShipmentStatusPending, entity.ShipmentStatusDelivered:
	default:
		return nil, domain.Invalid("status", "debe ser Pending o Delivered")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return uc.shipmentRepo.List(ctx, status, limit, max(offset, 0))
}

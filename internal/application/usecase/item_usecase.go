package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con repositorios atados a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx repository.Tx) error) error
}

// ItemUseCase casos de uso CRUD para el catálogo. El stock no se edita aquí: cambia solo
// por traslados, salidas y recepción de envíos.
type ItemUseCase struct {
	txRunner  TxRunner
	repo      repository.ItemRepository
	stockRepo repository.StockRecordRepository
	effects   *ports.AfterCommit
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(txRunner TxRunner, repo repository.ItemRepository, stockRepo repository.StockRecordRepository, effects *ports.AfterCommit) *ItemUseCase {
	return &ItemUseCase{txRunner: txRunner, repo: repo, stockRepo: stockRepo, effects: effects}
}

// ItemListFilter filtros del listado; Status usa la misma clasificación del dashboard.
type ItemListFilter struct {
	Search     string
	CategoryID string
	Status     string
	Limit      int
	Offset     int
}

// Create crea un ítem. El SKU es único entre ítems (incluidos los eliminados).
func (uc *ItemUseCase) Create(ctx context.Context, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" {
		return nil, domain.Invalid("sku", "es obligatorio")
	}
	if in.Name == "" {
		return nil, domain.Invalid("name", "es obligatorio")
	}
	if err := validateThresholds(in.MinQuantity, in.MaxQuantity); err != nil {
		return nil, err
	}
	if in.UnitPrice.IsNegative() {
		return nil, domain.Invalid("unit_price", "no puede ser negativo")
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("sku %s: %w", in.SKU, domain.ErrDuplicate)
	}
	now := time.Now()
	item := &entity.Item{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		MinQuantity: in.MinQuantity,
		MaxQuantity: in.MaxQuantity,
		UnitPrice:   in.UnitPrice,
		SupplierID:  in.SupplierID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	uc.effects.Apply(ctx)
	return toItemResponse(item, 0), nil
}

// GetByID obtiene un ítem con su stock agregado. Devuelve ErrNotFound si no existe o está eliminado.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.active(ctx, id)
	if err != nil {
		return nil, err
	}
	onHand, err := uc.onHand(ctx, id)
	if err != nil {
		return nil, err
	}
	return toItemResponse(item, onHand), nil
}

// Update actualiza un ítem. El SKU no cambia.
func (uc *ItemUseCase) Update(ctx context.Context, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.active(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "no puede quedar vacío")
		}
		item.Name = name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.CategoryID != nil {
		item.CategoryID = *in.CategoryID
	}
	if in.MinQuantity != nil {
		item.MinQuantity = *in.MinQuantity
	}
	if in.MaxQuantity != nil {
		item.MaxQuantity = *in.MaxQuantity
	}
	if err := validateThresholds(item.MinQuantity, item.MaxQuantity); err != nil {
		return nil, err
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() {
			return nil, domain.Invalid("unit_price", "no puede ser negativo")
		}
		item.UnitPrice = *in.UnitPrice
	}
	if in.SupplierID != nil {
		item.SupplierID = *in.SupplierID
	}
	item.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	onHand, err := uc.onHand(ctx, id)
	if err != nil {
		return nil, err
	}
	// Cambiar umbrales cambia la clasificación del resumen.
	uc.effects.Apply(ctx)
	return toItemResponse(item, onHand), nil
}

// List lista ítems activos con paginación. Con Status se clasifica todo el catálogo filtrado
// y luego se pagina.
func (uc *ItemUseCase) List(ctx context.Context, f ItemListFilter) (*dto.ItemListResponse, error) {
	page := dto.PageRequest{Limit: f.Limit, Offset: f.Offset}
	page.DefaultPage()
	switch entity.StockStatus(f.Status) {
	case "", entity.StockStatusOutOfStock, entity.StockStatusLow, entity.StockStatusNormal, entity.StockStatusOverstocked:
	default:
		return nil, domain.Invalid("status", "valor no soportado")
	}

	filter := repository.ItemFilter{Search: f.Search, CategoryID: f.CategoryID, Limit: page.Limit, Offset: page.Offset}
	if f.Status != "" {
		filter.Limit, filter.Offset = 0, 0
	}
	list, total, err := uc.repo.List(ctx, filter)
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

	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		resp := toItemResponse(it, totals[it.ID])
		if f.Status != "" && resp.Status != f.Status {
			continue
		}
		items = append(items, *resp)
	}
	if f.Status != "" {
		total = len(items)
		start := min(page.Offset, len(items))
		end := min(start+page.Limit, len(items))
		items = items[start:end]
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Delete marca el ítem como eliminado. Se rechaza con ErrConflict mientras tenga stock o
// envíos pendientes de recibir. Corre bajo las llaves de todos los pares del ítem, las mismas
// que toman traslados, salidas y recepciones.
func (uc *ItemUseCase) Delete(ctx context.Context, id string) error {
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		warehouses, err := tx.Warehouses.ListAll(ctx)
		if err != nil {
			return err
		}
		whIDs := make([]string, 0, len(warehouses))
		for _, wh := range warehouses {
			whIDs = append(whIDs, wh.ID)
		}
		if err := tx.Locker.Lock(ctx, inventory.LockKeys(id, whIDs, nil)...); err != nil {
			return err
		}
		item, err := tx.Items.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if item == nil || item.IsDeleted {
			return fmt.Errorf("ítem %s: %w", id, domain.ErrNotFound)
		}
		records, err := tx.Stock.ListByItem(ctx, id)
		if err != nil {
			return err
		}
		onHand, err := inventory.Aggregate(records, id, "")
		if err != nil {
			return err
		}
		if onHand > 0 {
			return fmt.Errorf("el ítem %s aún tiene %d unidades en bodega: %w", id, onHand, domain.ErrConflict)
		}
		pending, err := tx.Shipments.CountPendingByItem(ctx, id)
		if err != nil {
			return err
		}
		if pending > 0 {
			return fmt.Errorf("el ítem %s tiene %d envíos pendientes: %w", id, pending, domain.ErrConflict)
		}
		return tx.Items.SoftDelete(ctx, id, time.Now())
	})
	if err != nil {
		return err
	}
	uc.effects.Apply(ctx)
	return nil
}

func (uc *ItemUseCase) active(ctx context.Context, id string) (*entity.Item, error) {
	item, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.IsDeleted {
		return nil, fmt.Errorf("ítem %s: %w", id, domain.ErrNotFound)
	}
	return item, nil
}

func (uc *ItemUseCase) onHand(ctx context.Context, id string) (int64, error) {
	records, err := uc.stockRepo.ListByItem(ctx, id)
	if err != nil {
		return 0, err
	}
	return inventory.Aggregate(records, id, "")
}

func validateThresholds(minQty, maxQty int64) error {
	if minQty < 0 {
		return domain.Invalid("min_quantity", "no puede ser negativo")
	}
	if maxQty < 0 {
		return domain.Invalid("max_quantity", "no puede ser negativo")
	}
	if maxQty > 0 && minQty > maxQty {
		return domain.Invalid("max_quantity", "debe ser mayor o igual que min_quantity")
	}
	return nil
}

func toItemResponse(it *entity.Item, onHand int64) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:          it.ID,
		SKU:         it.SKU,
		Name:        it.Name,
		Description: it.Description,
		CategoryID:  it.CategoryID,
		MinQuantity: it.MinQuantity,
		MaxQuantity: it.MaxQuantity,
		UnitPrice:   it.UnitPrice,
		SupplierID:  it.SupplierID,
		OnHand:      onHand,
		Status:      string(inventory.Classify(onHand, it.MinQuantity, it.MaxQuantity)),
		IsDeleted:   it.IsDeleted,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// InventoryHandler traslados, salidas y consultas de stock (protegido).
type InventoryHandler struct {
	transfer      *inventory.TransferUseCase
	withdraw      *inventory.WithdrawUseCase
	levels        *inventory.StockLevelUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	transfer *inventory.TransferUseCase,
	withdraw *inventory.WithdrawUseCase,
	levels *inventory.StockLevelUseCase,
	replenishment *inventory.ReplenishmentUseCase,
) *InventoryHandler {
	return &InventoryHandler{transfer: transfer, withdraw: withdraw, levels: levels, replenishment: replenishment}
}

// CreateTransfer godoc
// @Summary      Trasladar stock entre bodegas
// @Description  Descuenta del origen (registros más antiguos primero) y suma al destino en una
//
//	sola transacción. Sin stock suficiente no se escribe nada.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TransferRequest  true  "item_id, from_warehouse_id, to_warehouse_id, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) CreateTransfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	t, err := h.transfer.Transfer(c.UserContext(), inventory.TransferInput{
		ItemID:          in.ItemID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		CreatedBy:       actor(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t))
}

// ListTransfers godoc
// @Summary      Historial de traslados
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id       query  string  false  "Filtrar por ítem"
// @Param        warehouse_id  query  string  false  "Origen o destino"
// @Param        limit         query  int     false  "Límite (default 20)"
// @Param        offset        query  int     false  "Offset"
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/inventory/transfers [get]
func (h *InventoryHandler) ListTransfers(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	list, err := h.transfer.ListTransfers(c.UserContext(), repository.TransferFilter{
		ItemID:      c.Query("item_id"),
		WarehouseID: c.Query("warehouse_id"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.TransferListResponse{
		Items: make([]dto.TransferResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, t := range list {
		out.Items = append(out.Items, toTransferResponse(t))
	}
	return c.JSON(out)
}

// Withdraw godoc
// @Summary      Registrar salida de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.WithdrawRequest  true  "item_id, warehouse_id, quantity, reason"
// @Success      201   {object}  dto.WithdrawResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/withdrawals [post]
func (h *InventoryHandler) Withdraw(c *fiber.Ctx) error {
	var in dto.WithdrawRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.withdraw.Withdraw(c.UserContext(), inventory.WithdrawInput{
		ItemID:      in.ItemID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		CreatedBy:   actor(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.WithdrawResponse{
		TransactionID: res.Entry.ID,
		ItemID:        res.Entry.ItemID,
		WarehouseID:   res.Entry.WarehouseID,
		Quantity:      res.Entry.Quantity,
		Remaining:     res.Remaining,
	})
}

// GetStockLevels godoc
// @Summary      Nivel de stock
// @Description  Con item_id devuelve el nivel de ese ítem; sin él, un mapa item_id → nivel.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id  query  string  false  "Ítem (UUID)"
// @Success      200  {object}  dto.StockLevelDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-levels [get]
func (h *InventoryHandler) GetStockLevels(c *fiber.Ctx) error {
	if itemID := c.Query("item_id"); itemID != "" {
		level, err := h.levels.GetStockLevel(c.UserContext(), itemID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(level)
	}
	all, err := h.levels.GetAllStockLevels(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(all)
}

// GetItemWarehouses godoc
// @Summary      Stock de un ítem por bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  dto.ItemStockBreakdownDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/warehouses [get]
func (h *InventoryHandler) GetItemWarehouses(c *fiber.Ctx) error {
	out, err := h.levels.GetItemWarehouses(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Ítems bajos o agotados con la cantidad sugerida para volver al nivel ideal,
//
//	los más urgentes primero.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega (UUID). Vacío = stock global."
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

func toTransferResponse(t *entity.Transfer) dto.TransferResponse {
	return dto.TransferResponse{
		ID:              t.ID,
		ItemID:          t.ItemID,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Quantity:        t.Quantity,
		Status:          t.Status,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
	}
}

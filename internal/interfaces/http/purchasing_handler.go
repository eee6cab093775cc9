package http

import (
	"mime"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/purchasing"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// PurchasingHandler órdenes de compra y recepción de envíos (protegido).
type PurchasingHandler struct {
	record  *purchasing.RecordBatchUseCase
	query   *purchasing.BatchQueryUseCase
	receive *purchasing.ReceiveShipmentUseCase
}

// NewPurchasingHandler construye el handler.
func NewPurchasingHandler(
	record *purchasing.RecordBatchUseCase,
	query *purchasing.BatchQueryUseCase,
	receive *purchasing.ReceiveShipmentUseCase,
) *PurchasingHandler {
	return &PurchasingHandler{record: record, query: query, receive: receive}
}

// RecordPurchaseOrder godoc
// @Summary      Registrar orden de compra
// @Description  Crea una entrada stock_in Pending y un envío Pending por línea. Idempotente por
//
//	invoice_no: repetir la factura devuelve lo ya registrado con replayed=true (HTTP 200).
//
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.PurchaseOrderRequest  true  "Líneas, proveedor (source) e invoice_no opcional"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Success      200   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchasingHandler) RecordPurchaseOrder(c *fiber.Ctx) error {
	var in dto.PurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]purchasing.BatchLine, 0, len(in.Items))
	for _, l := range in.Items {
		lines = append(lines, purchasing.BatchLine{
			ItemID:     l.ItemID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			TotalPrice: l.TotalPrice,
		})
	}
	res, err := h.record.RecordBatch(c.UserContext(), purchasing.BatchInput{
		InvoiceNo:     in.InvoiceNo,
		Lines:         lines,
		Source:        in.Source,
		CreatedBy:     actor(c),
		TotalQuantity: in.TotalQuantity,
		TotalAmount:   in.TotalAmount,
	})
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusCreated
	if res.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(toPurchaseOrderResponse(res))
}

// GetPurchaseOrder godoc
// @Summary      Consultar orden de compra
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        invoiceNo  path      string  true  "Número de factura"
// @Success      200        {object}  dto.PurchaseOrderResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{invoiceNo} [get]
func (h *PurchasingHandler) GetPurchaseOrder(c *fiber.Ctx) error {
	res, err := h.query.GetBatch(c.UserContext(), c.Params("invoiceNo"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseOrderResponse(res))
}

// GetPurchaseOrderPDF godoc
// @Summary      PDF de la orden de compra
// @Tags         purchasing
// @Security     Bearer
// @Produce      application/pdf
// @Param        invoiceNo  path  string  true  "Número de factura"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{invoiceNo}/pdf [get]
func (h *PurchasingHandler) GetPurchaseOrderPDF(c *fiber.Ctx) error {
	invoiceNo := c.Params("invoiceNo")
	doc, err := h.query.RenderBatchPDF(c.UserContext(), invoiceNo)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	// Facturas anteriores a la validación del número pueden traer comillas o tildes.
	c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("inline", map[string]string{"filename": "orden-" + invoiceNo + ".pdf"}))
	return c.Send(doc)
}

// ListShipments godoc
// @Summary      Envíos entrantes
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        status  query     string  false  "Pending | Delivered"
// @Param        limit   query     int     false  "Límite (default 20)"
// @Param        offset  query     int     false  "Offset"
// @Success      200     {object}  dto.ShipmentListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/shipments [get]
func (h *PurchasingHandler) ListShipments(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	list, err := h.receive.ListShipments(c.UserContext(), c.Query("status"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ShipmentListResponse{
		Items: make([]dto.ShipmentDTO, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, s := range list {
		out.Items = append(out.Items, toShipmentDTO(s))
	}
	return c.JSON(out)
}

// ReceiveShipment godoc
// @Summary      Recibir envío en bodega
// @Description  Pending → Delivered: suma la cantidad a la bodega y completa la entrada del libro.
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                      true  "Shipment ID"
// @Param        body  body      dto.ReceiveShipmentRequest  true  "warehouse_id"
// @Success      200   {object}  dto.ShipmentDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/receive [post]
func (h *PurchasingHandler) ReceiveShipment(c *fiber.Ctx) error {
	var in dto.ReceiveShipmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	s, err := h.receive.Receive(c.UserContext(), purchasing.ReceiveInput{
		ShipmentID:  c.Params("id"),
		WarehouseID: in.WarehouseID,
		ReceivedBy:  actor(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toShipmentDTO(s))
}

func toPurchaseOrderResponse(res *purchasing.BatchResult) dto.PurchaseOrderResponse {
	out := dto.PurchaseOrderResponse{
		InvoiceNo:     res.Order.InvoiceNo,
		Source:        res.Order.Source,
		SupplierID:    res.Order.SupplierID,
		TotalQuantity: res.Order.TotalQuantity,
		TotalAmount:   res.Order.TotalAmount,
		Status:        res.Order.Status,
		CreatedAt:     res.Order.CreatedAt,
		Replayed:      res.Replayed,
		Transactions:  make([]dto.LedgerEntryDTO, 0, len(res.Transactions)),
	}
	for _, e := range res.Transactions {
		out.Transactions = append(out.Transactions, dto.LedgerEntryDTO{
			ID:          e.ID,
			InvoiceNo:   e.InvoiceNo,
			ItemID:      e.ItemID,
			Type:        e.Type,
			Quantity:    e.Quantity,
			UnitPrice:   e.UnitPrice,
			TotalPrice:  e.TotalPrice,
			Status:      e.Status,
			WarehouseID: e.WarehouseID,
			Source:      e.Source,
			CreatedBy:   e.CreatedBy,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out
}

func toShipmentDTO(s *entity.Shipment) dto.ShipmentDTO {
	return dto.ShipmentDTO{
		ID:            s.ID,
		TransactionID: s.TransactionID,
		ItemID:        s.ItemID,
		Quantity:      s.Quantity,
		Date:          s.Date,
		Status:        s.Status,
		Note:          s.Note,
		WarehouseID:   s.WarehouseID,
		DeliveredAt:   s.DeliveredAt,
	}
}

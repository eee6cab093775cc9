package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.SummaryUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.SummaryUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve los contadores de stock y la ocupación de bodegas.
// GET /api/dashboard/summary?warehouse_id=
//
// Sin warehouse_id el resumen cubre todas las bodegas. Cada ítem cuenta en exactamente uno de
// agotado, bajo, normal o sobrestock.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.Summarize(c.UserContext(), appanalytics.Scope{WarehouseID: c.Query("warehouse_id")})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// GetStockReport descarga el reporte de stock en XLSX.
// GET /api/dashboard/stock-report.xlsx
func (h *DashboardHandler) GetStockReport(c *fiber.Ctx) error {
	doc, err := h.uc.ExportStockReport(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="stock-report.xlsx"`)
	return c.Send(doc)
}

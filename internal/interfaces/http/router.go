package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/purchasing"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC        *usecase.ItemUseCase
	WarehouseUC   *usecase.WarehouseUseCase
	SupplierUC    *usecase.SupplierUseCase
	Transfer      *inventory.TransferUseCase
	Withdraw      *inventory.WithdrawUseCase
	StockLevels   *inventory.StockLevelUseCase
	Replenishment *inventory.ReplenishmentUseCase
	RecordBatch   *purchasing.RecordBatchUseCase
	BatchQuery    *purchasing.BatchQueryUseCase
	Receive       *purchasing.ReceiveShipmentUseCase
	SummaryUC     *appanalytics.SummaryUseCase
	JWTSecret     string
	JWTIssuer     string
}

// Router registra las rutas de la API. Todo /api exige Bearer Token; las escrituras exigen
// además el rol de negocio correspondiente.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	warehouseOps := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)
	purchasingOps := RequireRole(entity.RoleAdmin, entity.RoleCompras)

	// Items
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", warehouseOps, itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", warehouseOps, itemHandler.Update)
	items.Delete("/:id", warehouseOps, itemHandler.Delete)

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseOps, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", warehouseOps, warehouseHandler.Update)

	// Suppliers
	suppliers := protected.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", purchasingOps, supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)

	// Inventory: traslados, salidas y consultas
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Transfer, deps.Withdraw, deps.StockLevels, deps.Replenishment)
	invGroup.Post("/transfers", warehouseOps, inventoryHandler.CreateTransfer)
	invGroup.Get("/transfers", inventoryHandler.ListTransfers)
	invGroup.Post("/withdrawals", warehouseOps, inventoryHandler.Withdraw)
	invGroup.Get("/stock-levels", inventoryHandler.GetStockLevels)
	invGroup.Get("/items/:id/warehouses", inventoryHandler.GetItemWarehouses)
	invGroup.Get("/replenishment", inventoryHandler.GetReplenishmentList)

	// Purchasing
	purchasingHandler := NewPurchasingHandler(deps.RecordBatch, deps.BatchQuery, deps.Receive)
	orders := protected.Group("/purchase-orders")
	orders.Post("/", purchasingOps, purchasingHandler.RecordPurchaseOrder)
	orders.Get("/:invoiceNo", purchasingHandler.GetPurchaseOrder)
	orders.Get("/:invoiceNo/pdf", purchasingHandler.GetPurchaseOrderPDF)

	shipments := protected.Group("/shipments")
	shipments.Get("/", purchasingHandler.ListShipments)
	shipments.Post("/:id/receive", warehouseOps, purchasingHandler.ReceiveShipment)

	// Dashboard
	dashboard := protected.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.SummaryUC)
	dashboard.Get("/summary", dashboardHandler.GetSummary)
	dashboard.Get("/stock-report.xlsx", dashboardHandler.GetStockReport)
}

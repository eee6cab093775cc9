package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryDTO respuesta de GET /api/dashboard/summary.
// Cada ítem cuenta en exactamente uno de: agotado, bajo, normal/sobrestock.
type SummaryDTO struct {
	WarehouseID      string                    `json:"warehouse_id,omitempty"` // vacío = todas las bodegas
	TotalItems       int                       `json:"total_items"`
	LowStockCount    int                       `json:"low_stock_count"`
	OutOfStockCount  int                       `json:"out_of_stock_count"`
	NormalCount      int                       `json:"normal_count"`
	OverstockedCount int                       `json:"overstocked_count"`
	TotalQuantity    int64                     `json:"total_quantity"`
	WarehouseCount   int                       `json:"warehouse_count"`
	Warehouses       []WarehouseUtilizationDTO `json:"warehouses"`
	GeneratedAt      time.Time                 `json:"generated_at"`
}

// WarehouseUtilizationDTO ocupación de una bodega.
type WarehouseUtilizationDTO struct {
	WarehouseID    string `json:"warehouse_id"`
	Name           string `json:"name"`
	Used           int64  `json:"used"`
	MaxCapacity    int64  `json:"max_capacity"`
	Available      int64  `json:"available"`
	UtilizationPct int    `json:"utilization_pct"`
	Status         string `json:"status"`
}

// StockReportDTO contenido del reporte XLSX de stock.
type StockReportDTO struct {
	GeneratedAt time.Time
	Items       []StockReportRowDTO
	Warehouses  []WarehouseUtilizationDTO
}

// StockReportRowDTO una fila por ítem activo.
type StockReportRowDTO struct {
	SKU         string
	Name        string
	OnHand      int64
	MinQuantity int64
	MaxQuantity int64
	Status      string
	UnitPrice   decimal.Decimal
	StockValue  decimal.Decimal
}

package entity

// StockStatus clasificación del stock disponible frente a los umbrales del ítem.
type StockStatus string

const (
	StockStatusOutOfStock  StockStatus = "out_of_stock"
	StockStatusLow         StockStatus = "low"
	StockStatusNormal      StockStatus = "normal"
	StockStatusOverstocked StockStatus = "overstocked"
)

// UtilizationStatus etiqueta de ocupación de una bodega.
type UtilizationStatus string

const (
	UtilizationAvailable UtilizationStatus = "available" // < 50%
	UtilizationMedium    UtilizationStatus = "medium"    // 50% – 74%
	UtilizationHigh      UtilizationStatus = "high"      // 75% – 89%
	UtilizationCritical  UtilizationStatus = "critical"  // 90% – 99%
	UtilizationFull      UtilizationStatus = "full"      // >= 100%
)

// Package spreadsheet lee y escribe libros XLSX: el reporte de stock del dashboard y la
// importación del catálogo inicial.
package spreadsheet

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

var _ analytics.StockReportGenerator = (*StockReportWriter)(nil)

// Nombres de las hojas del reporte.
const (
	SheetStock      = "Stock"
	SheetWarehouses = "Bodegas"
)

// StockReportWriter genera el reporte de stock con excelize.
type StockReportWriter struct{}

// NewStockReportWriter construye el generador.
func NewStockReportWriter() *StockReportWriter { return &StockReportWriter{} }

// GenerateStockReport escribe una hoja por ítem y otra con la utilización por bodega.
func (w *StockReportWriter) GenerateStockReport(_ context.Context, report *dto.StockReportDTO) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetStock); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	if _, err := f.NewSheet(SheetWarehouses); err != nil {
		return nil, fmt.Errorf("xlsx: crear hoja: %w", err)
	}

	header := []any{"SKU", "Nombre", "Disponible", "Mínimo", "Máximo", "Estado", "Precio unitario", "Valor en stock"}
	rows := make([][]any, 0, len(report.Items))
	for _, it := range report.Items {
		rows = append(rows, []any{
			it.SKU, it.Name, it.OnHand, it.MinQuantity, it.MaxQuantity, it.Status,
			it.UnitPrice.InexactFloat64(), it.StockValue.InexactFloat64(),
		})
	}
	if err := writeTable(f, SheetStock, header, rows); err != nil {
		return nil, err
	}

	header = []any{"Bodega", "Usado", "Capacidad", "Disponible", "Utilización %", "Estado"}
	rows = rows[:0]
	for _, wh := range report.Warehouses {
		rows = append(rows, []any{wh.Name, wh.Used, wh.MaxCapacity, wh.Available, wh.UtilizationPct, wh.Status})
	}
	if err := writeTable(f, SheetWarehouses, header, rows); err != nil {
		return nil, err
	}

	generated := fmt.Sprintf("Generado: %s", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if err := f.SetCellValue(SheetWarehouses, cellName(1, len(report.Warehouses)+3), generated); err != nil {
		return nil, fmt.Errorf("xlsx: pie: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: cabecera %s: %w", sheet, err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: estilo: %w", err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("xlsx: estilo cabecera: %w", err)
	}
	for i, r := range rows {
		if err := f.SetSheetRow(sheet, cellName(1, i+2), &r); err != nil {
			return fmt.Errorf("xlsx: fila %d de %s: %w", i+2, sheet, err)
		}
	}
	return nil
}

// cellName convierte (columna, fila) 1-based en "A1"; las coordenadas son siempre válidas.
func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

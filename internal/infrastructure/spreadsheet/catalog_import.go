package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// CatalogItem fila de la hoja de ítems del catálogo inicial.
type CatalogItem struct {
	SKU         string
	Name        string
	Description string
	CategoryID  string
	MinQuantity int64
	MaxQuantity int64
	UnitPrice   decimal.Decimal
}

// CatalogWarehouse fila de la hoja de bodegas.
type CatalogWarehouse struct {
	Name        string
	Location    string
	MaxCapacity int64
}

// Catalog contenido importado del libro.
type Catalog struct {
	Items      []CatalogItem
	Warehouses []CatalogWarehouse
}

// Columnas esperadas (la fila 1 es cabecera y se ignora).
//
//	Items:   sku | name | description | category_id | min_quantity | max_quantity | unit_price
//	Bodegas: name | location | max_capacity
const (
	SheetItems = "Items"
)

// ReadCatalog lee el libro. La hoja de ítems es obligatoria; la de bodegas es opcional.
// Las filas vacías se saltan; cualquier otra fila inválida aborta con su número.
func ReadCatalog(r io.Reader) (*Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: abrir: %w", err)
	}
	defer func() { _ = f.Close() }()

	itemRows, err := f.GetRows(SheetItems)
	if err != nil {
		return nil, fmt.Errorf("xlsx: hoja %s: %w", SheetItems, err)
	}
	out := &Catalog{}
	seen := make(map[string]int)
	for i, row := range skipHeader(itemRows) {
		line := i + 2
		if blank(row) {
			continue
		}
		it, err := parseItem(row)
		if err != nil {
			return nil, fmt.Errorf("xlsx: %s fila %d: %w", SheetItems, line, err)
		}
		if prev, ok := seen[it.SKU]; ok {
			return nil, fmt.Errorf("xlsx: %s fila %d: sku %s repetido (fila %d)", SheetItems, line, it.SKU, prev)
		}
		seen[it.SKU] = line
		out.Items = append(out.Items, it)
	}

	if idx, _ := f.GetSheetIndex(SheetWarehouses); idx >= 0 {
		whRows, err := f.GetRows(SheetWarehouses)
		if err != nil {
			return nil, fmt.Errorf("xlsx: hoja %s: %w", SheetWarehouses, err)
		}
		for i, row := range skipHeader(whRows) {
			if blank(row) {
				continue
			}
			wh, err := parseWarehouse(row)
			if err != nil {
				return nil, fmt.Errorf("xlsx: %s fila %d: %w", SheetWarehouses, i+2, err)
			}
			out.Warehouses = append(out.Warehouses, wh)
		}
	}
	return out, nil
}

func parseItem(row []string) (CatalogItem, error) {
	it := CatalogItem{
		SKU:         cell(row, 0),
		Name:        cell(row, 1),
		Description: cell(row, 2),
		CategoryID:  cell(row, 3),
	}
	if it.SKU == "" || it.Name == "" {
		return it, fmt.Errorf("sku y name son obligatorios")
	}
	var err error
	if it.MinQuantity, err = parseQty(cell(row, 4)); err != nil {
		return it, fmt.Errorf("min_quantity: %w", err)
	}
	if it.MaxQuantity, err = parseQty(cell(row, 5)); err != nil {
		return it, fmt.Errorf("max_quantity: %w", err)
	}
	if it.MaxQuantity > 0 && it.MinQuantity > it.MaxQuantity {
		return it, fmt.Errorf("min_quantity mayor que max_quantity")
	}
	it.UnitPrice = decimal.Zero
	if s := strings.ReplaceAll(cell(row, 6), ",", "."); s != "" {
		if it.UnitPrice, err = decimal.NewFromString(s); err != nil || it.UnitPrice.IsNegative() {
			return it, fmt.Errorf("unit_price inválido %q", s)
		}
	}
	return it, nil
}

func parseWarehouse(row []string) (CatalogWarehouse, error) {
	wh := CatalogWarehouse{Name: cell(row, 0), Location: cell(row, 1)}
	if wh.Name == "" {
		return wh, fmt.Errorf("name es obligatorio")
	}
	var err error
	if wh.MaxCapacity, err = parseQty(cell(row, 2)); err != nil {
		return wh, fmt.Errorf("max_capacity: %w", err)
	}
	return wh, nil
}

func parseQty(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("entero no negativo esperado, llegó %q", s)
	}
	return n, nil
}

func skipHeader(rows [][]string) [][]string {
	if len(rows) == 0 {
		return nil
	}
	return rows[1:]
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

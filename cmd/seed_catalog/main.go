// seed_catalog genera una migración goose con el catálogo inicial (ítems y bodegas) a partir
// de un libro XLSX.
//
// Uso: go run ./cmd/seed_catalog [ruta/catalogo.xlsx] [salida.sql]
// Por defecto lee catalogo.xlsx del directorio actual y escribe
// internal/infrastructure/postgres/migrations/00002_seed_catalog.sql
//
// Los ids se derivan del SKU (ítems) y del nombre (bodegas) con UUID v5, así que regenerar
// el archivo con el mismo libro produce el mismo SQL.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/spreadsheet"
)

func main() {
	xlsxPath := "catalogo.xlsx"
	if len(os.Args) > 1 {
		xlsxPath = os.Args[1]
	}
	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "00002_seed_catalog.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	f, err := os.Open(xlsxPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XLSX: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	catalog, err := spreadsheet.ReadCatalog(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSeed(out, catalog); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d ítems, %d bodegas\n", outPath, len(catalog.Items), len(catalog.Warehouses))
}

// writeSeed escribe la migración: Up inserta (idempotente por id), Down borra lo insertado.
func writeSeed(w io.Writer, catalog *spreadsheet.Catalog) error {
	var b strings.Builder
	b.WriteString("-- Catálogo inicial generado por cmd/seed_catalog\n\n")
	b.WriteString("-- +goose Up\n")

	if len(catalog.Warehouses) > 0 {
		b.WriteString("INSERT INTO warehouses (id, name, location, max_capacity) VALUES\n")
		for i, wh := range catalog.Warehouses {
			fmt.Fprintf(&b, "  ('%s', '%s', '%s', %d)%s\n",
				warehouseID(wh.Name), escapeSQL(wh.Name), escapeSQL(wh.Location), wh.MaxCapacity,
				separator(i, len(catalog.Warehouses)))
		}
		b.WriteString("ON CONFLICT (id) DO NOTHING;\n\n")
	}

	if len(catalog.Items) > 0 {
		b.WriteString("INSERT INTO items (id, sku, name, description, category_id, min_quantity, max_quantity, unit_price) VALUES\n")
		for i, it := range catalog.Items {
			category := "NULL"
			if it.CategoryID != "" {
				category = "'" + escapeSQL(it.CategoryID) + "'"
			}
			fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s', %s, %d, %d, %s)%s\n",
				itemID(it.SKU), escapeSQL(it.SKU), escapeSQL(it.Name), escapeSQL(it.Description),
				category, it.MinQuantity, it.MaxQuantity, it.UnitPrice.StringFixed(2),
				separator(i, len(catalog.Items)))
		}
		b.WriteString("ON CONFLICT (sku) DO NOTHING;\n\n")
	}

	b.WriteString("-- +goose Down\n")
	if len(catalog.Items) > 0 {
		ids := make([]string, 0, len(catalog.Items))
		for _, it := range catalog.Items {
			ids = append(ids, "'"+itemID(it.SKU)+"'")
		}
		fmt.Fprintf(&b, "DELETE FROM items WHERE id IN (%s);\n", strings.Join(ids, ", "))
	}
	if len(catalog.Warehouses) > 0 {
		ids := make([]string, 0, len(catalog.Warehouses))
		for _, wh := range catalog.Warehouses {
			ids = append(ids, "'"+warehouseID(wh.Name)+"'")
		}
		fmt.Fprintf(&b, "DELETE FROM warehouses WHERE id IN (%s);\n", strings.Join(ids, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func itemID(sku string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("stock-ledger:item:"+sku)).String()
}

func warehouseID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("stock-ledger:warehouse:"+strings.ToLower(name))).String()
}

func separator(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

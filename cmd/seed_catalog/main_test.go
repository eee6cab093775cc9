package main

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/spreadsheet"
)

func TestWriteSeed_GeneraMigracionGoose(t *testing.T) {
	catalog := &spreadsheet.Catalog{
		Items: []spreadsheet.CatalogItem{
			{SKU: "TOR-001", Name: "Tornillo 1/4\"", MinQuantity: 5, MaxQuantity: 50, UnitPrice: decimal.RequireFromString("120.5")},
			{SKU: "LLA-002", Name: "Llave d'ajuste", CategoryID: "herramientas", UnitPrice: decimal.Zero},
		},
		Warehouses: []spreadsheet.CatalogWarehouse{{Name: "Principal", Location: "Bogotá", MaxCapacity: 1000}},
	}

	var sb strings.Builder
	require.NoError(t, writeSeed(&sb, catalog))
	sql := sb.String()

	assert.Contains(t, sql, "-- +goose Up")
	assert.Contains(t, sql, "-- +goose Down")
	assert.Contains(t, sql, "'Llave d''ajuste'", "las comillas simples se escapan")
	assert.Contains(t, sql, "120.50")
	assert.Contains(t, sql, "'herramientas'")
	assert.Contains(t, sql, "NULL, 5, 50")
	assert.Less(t, strings.Index(sql, "INSERT INTO warehouses"), strings.Index(sql, "INSERT INTO items"))
}

func TestItemID_DeterministaPorSKU(t *testing.T) {
	assert.Equal(t, itemID("TOR-001"), itemID("TOR-001"))
	assert.NotEqual(t, itemID("TOR-001"), itemID("TOR-002"))
	assert.Equal(t, warehouseID("Principal"), warehouseID("principal"), "el nombre de bodega no distingue mayúsculas")
}

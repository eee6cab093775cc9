package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("desconocido"), "nivel inválido cae en info")
}

func TestNop_NoEscribe(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		l.Info().Str("item_id", "x").Msg("ignorado")
		l.Component("transfer").Warn().Msg("ignorado")
	})
}

func TestNew_JSONConComponenteYNivel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "warn", Out: &buf})

	l.Component("transfer").Info().Msg("filtrado por nivel")
	l.Component("transfer").Warn().Str("item_id", "item-1").Msg("stock bajo")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), "una sola línea JSON")
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "transfer", entry["component"])
	assert.Equal(t, "item-1", entry["item_id"])
	assert.Equal(t, "stock bajo", entry["message"])
}

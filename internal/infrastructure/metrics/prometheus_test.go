package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLedgerMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.TransferCompleted(5)
	m.TransferCompleted(3)
	m.StockWithdrawn(2)
	m.StockRejected("transfer")
	m.BatchRecorded(4, false)
	m.BatchRecorded(4, true)
	m.ShipmentDelivered(7)
	m.SummaryComputed(true, time.Millisecond)
	m.ObserveHTTP("POST", "/api/inventory/transfers", 201, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transfers))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.transferredUnits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.withdrawnUnits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("transfer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batches.WithLabelValues("true")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.batchLines), "los reintentos no suman líneas")
	assert.Equal(t, 7.0, testutil.ToFloat64(m.deliveredUnits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/inventory/transfers", "201")))
}

func TestNew_RegistrosIndependientes(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

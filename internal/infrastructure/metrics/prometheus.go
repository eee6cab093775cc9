// Package metrics expone los contadores del libro de stock en Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
)

var _ ports.LedgerMetrics = (*LedgerMetrics)(nil)

const namespace = "stock_ledger"

// LedgerMetrics implementación Prometheus de ports.LedgerMetrics.
type LedgerMetrics struct {
	transfers        prometheus.Counter
	transferredUnits prometheus.Counter
	withdrawnUnits   prometheus.Counter
	rejected         *prometheus.CounterVec
	batches          *prometheus.CounterVec
	batchLines       prometheus.Counter
	deliveredUnits   prometheus.Counter
	summary          *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registra los colectores en reg. Pasar prometheus.DefaultRegisterer en producción y
// un registro nuevo en las pruebas.
func New(reg prometheus.Registerer) *LedgerMetrics {
	f := promauto.With(reg)
	return &LedgerMetrics{
		transfers: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "transfers_total",
			Help: "Traslados completados.",
		}),
		transferredUnits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "transferred_units_total",
			Help: "Unidades movidas entre bodegas.",
		}),
		withdrawnUnits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "withdrawn_units_total",
			Help: "Unidades descontadas por salidas.",
		}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rejected_total",
			Help: "Mutaciones rechazadas por stock insuficiente o capacidad.",
		}, []string{"operation"}),
		batches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "purchase_batches_total",
			Help: "Órdenes de compra procesadas; replayed=true si la factura ya existía.",
		}, []string{"replayed"}),
		batchLines: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "purchase_lines_total",
			Help: "Líneas de compra registradas.",
		}),
		deliveredUnits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "delivered_units_total",
			Help: "Unidades recibidas en bodega.",
		}),
		summary: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "summary_seconds",
			Help:    "Tiempo de cálculo del resumen del dashboard.",
			Buckets: prometheus.DefBuckets,
		}, []string{"cached"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "Peticiones HTTP por ruta y código.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_seconds",
			Help:    "Latencia de las peticiones HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *LedgerMetrics) TransferCompleted(quantity int64) {
	m.transfers.Inc()
	m.transferredUnits.Add(float64(quantity))
}

func (m *LedgerMetrics) StockWithdrawn(quantity int64) { m.withdrawnUnits.Add(float64(quantity)) }

func (m *LedgerMetrics) StockRejected(operation string) { m.rejected.WithLabelValues(operation).Inc() }

func (m *LedgerMetrics) BatchRecorded(lines int, replayed bool) {
	m.batches.WithLabelValues(strconv.FormatBool(replayed)).Inc()
	if !replayed {
		m.batchLines.Add(float64(lines))
	}
}

func (m *LedgerMetrics) ShipmentDelivered(quantity int64) { m.deliveredUnits.Add(float64(quantity)) }

func (m *LedgerMetrics) SummaryComputed(cached bool, d time.Duration) {
	m.summary.WithLabelValues(strconv.FormatBool(cached)).Observe(d.Seconds())
}

// ObserveHTTP registra una petición; route es el patrón de la ruta, no el path concreto.
func (m *LedgerMetrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

package ports

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/events"
)

// EventPublisher puerto de publicación de eventos de stock (Kafka en producción).
// Publicar es best-effort: la mutación ya está confirmada cuando se llama.
type EventPublisher interface {
	Publish(ctx context.Context, evs ...events.Event) error
}

// SummaryCache caché del resumen del dashboard por alcance (key = bodega o "all"). Las
// entradas pertenecen a una generación: quien calcula un resumen lee la generación antes de
// leer los datos y guarda bajo esa misma generación, así un cálculo que se cruzó con una
// invalidación queda en una generación que nadie vuelve a leer.
type SummaryCache interface {
	// Generation devuelve la generación vigente.
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, key string) (*dto.SummaryDTO, bool, error)
	Set(ctx context.Context, gen int64, key string, summary *dto.SummaryDTO) error
	// Invalidate avanza la generación; toda mutación lo llama tras el commit.
	Invalidate(ctx context.Context) error
}

// LedgerMetrics contadores del libro de stock (Prometheus en producción).
type LedgerMetrics interface {
	TransferCompleted(quantity int64)
	StockWithdrawn(quantity int64)
	StockRejected(operation string)
	BatchRecorded(lines int, replayed bool)
	ShipmentDelivered(quantity int64)
	SummaryComputed(cached bool, d time.Duration)
}

// NoopPublisher descarta los eventos (Kafka desactivado).
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...events.Event) error { return nil }

// NoopCache nunca encuentra nada (Redis desactivado).
type NoopCache struct{}

func (NoopCache) Generation(context.Context) (int64, error) { return 0, nil }
func (NoopCache) Get(context.Context, int64, string) (*dto.SummaryDTO, bool, error) {
	return nil, false, nil
}
func (NoopCache) Set(context.Context, int64, string, *dto.SummaryDTO) error { return nil }
func (NoopCache) Invalidate(context.Context) error                          { return nil }

// NoopMetrics no registra nada.
type NoopMetrics struct{}

func (NoopMetrics) TransferCompleted(int64)             {}
func (NoopMetrics) StockWithdrawn(int64)                {}
func (NoopMetrics) StockRejected(string)                {}
func (NoopMetrics) BatchRecorded(int, bool)             {}
func (NoopMetrics) ShipmentDelivered(int64)             {}
func (NoopMetrics) SummaryComputed(bool, time.Duration) {}

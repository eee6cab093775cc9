package ports

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/events"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// AfterCommit agrupa los efectos que siguen a una mutación confirmada: invalidar el resumen
// cacheado y publicar eventos. Una falla aquí se registra en warn y nunca llega al cliente.
type AfterCommit struct {
	cache     SummaryCache
	publisher EventPublisher
	metrics   LedgerMetrics
	log       *logger.Logger
}

// NewAfterCommit construye los efectos; cualquier dependencia nil se reemplaza por su Noop.
func NewAfterCommit(cache SummaryCache, publisher EventPublisher, metrics LedgerMetrics, log *logger.Logger) *AfterCommit {
	if cache == nil {
		cache = NoopCache{}
	}
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AfterCommit{cache: cache, publisher: publisher, metrics: metrics, log: log}
}

// Metrics contadores del libro.
func (a *AfterCommit) Metrics() LedgerMetrics { return a.metrics }

// Apply invalida la caché del resumen y publica evs. Usa un contexto sin cancelación: si el
// cliente se desconecta tras el commit la invalidación igual debe ocurrir.
func (a *AfterCommit) Apply(ctx context.Context, evs ...events.Event) {
	ctx = context.WithoutCancel(ctx)
	if err := a.cache.Invalidate(ctx); err != nil {
		a.log.Warn().Err(err).Msg("no se pudo invalidar la caché del resumen")
	}
	if len(evs) == 0 {
		return
	}
	if err := a.publisher.Publish(ctx, evs...); err != nil {
		a.log.Warn().Err(err).Int("events", len(evs)).Str("event_type", evs[0].EventType()).
			Msg("no se pudieron publicar los eventos")
	}
}

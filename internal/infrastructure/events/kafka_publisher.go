// Package events publica los eventos del libro de stock en Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	appevents "github.com/jhoicas/stock-ledger/internal/application/events"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// HeaderEventType header con el tipo de evento; el valor es el JSON del evento.
const HeaderEventType = "event-type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher escribe un mensaje por evento. La llave es AggregateKey, así el balanceo
// por hash deja los eventos de un mismo ítem en la misma partición y en orden.
type KafkaPublisher struct {
	w messageWriter
}

// NewKafkaPublisher construye el publisher sobre un kafka.Writer.
func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}}
}

// Publish envía evs en un solo WriteMessages.
func (p *KafkaPublisher) Publish(ctx context.Context, evs ...appevents.Event) error {
	if len(evs) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(evs))
	for _, ev := range evs {
		value, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("codificar %s: %w", ev.EventType(), err)
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(ev.AggregateKey()),
			Value:   value,
			Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte(ev.EventType())}},
		})
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka: publicar %d eventos: %w", len(msgs), err)
	}
	return nil
}

// Close vacía los mensajes pendientes y cierra las conexiones.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

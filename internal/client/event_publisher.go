// Package client holds outbound integrations.
package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/thezig/be-sow-service/internal/metrics"
)

// Document event types published to the broker.
//
// Routing key convention: sow.<event_type>
const (
	EventDocumentSubmitted = "document_submitted"
	EventDocumentApproved  = "document_approved"
	EventDocumentRejected  = "document_rejected"
	EventStatusOverridden  = "status_overridden"
	EventProjectCreated    = "project_created"
)

// DocumentEvent is the JSON schema published for every lifecycle event.
type DocumentEvent struct {
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	DocumentID string         `json:"document_id"`
	ActorID    string         `json:"actor_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// EventPublisher publishes document lifecycle events to a topic exchange.
//
// All publish operations are non-fatal: errors are logged and counted but
// never propagated, so broker trouble never interrupts an approval operation.
// A nil publisher or a disabled one (empty URL) is safe to call.
type EventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      zerolog.Logger
}

// NewEventPublisher connects to the broker and declares the topic exchange.
// An empty URL returns a disabled publisher and no error.
func NewEventPublisher(url, exchange string, log zerolog.Logger) (*EventPublisher, error) {
	if url == "" {
		log.Info().Msg("Event publishing disabled (no broker URL)")
		return &EventPublisher{log: log}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open broker channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &EventPublisher{conn: conn, channel: ch, exchange: exchange, log: log}, nil
}

// Close releases the broker connection.
func (p *EventPublisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// PublishDocumentEvent publishes one lifecycle event with routing key
// sow.<eventType>.
func (p *EventPublisher) PublishDocumentEvent(eventType, documentID, actorID string, payload map[string]any) {
	if p == nil || p.channel == nil {
		return
	}

	event := DocumentEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		DocumentID: documentID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Warn().Err(err).Str("event_type", eventType).Msg("event: failed to marshal")
		metrics.EventsPublished.WithLabelValues(eventType, "error").Inc()
		return
	}

	routingKey := "sow." + eventType
	err = p.channel.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    event.OccurredAt,
	})
	if err != nil {
		p.log.Warn().Err(err).
			Str("routing_key", routingKey).
			Str("document_id", documentID).
			Msg("event: publish failed (non-fatal)")
		metrics.EventsPublished.WithLabelValues(eventType, "error").Inc()
		return
	}

	metrics.EventsPublished.WithLabelValues(eventType, "ok").Inc()
	p.log.Debug().
		Str("routing_key", routingKey).
		Str("document_id", documentID).
		Msg("event: published")
}

// Package events publishes archive notifications to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"tgdocs/internal/config"
	"tgdocs/internal/model"
)

// DocumentArchivedV1 is the event type and routing key of archive notifications.
const DocumentArchivedV1 = "documents.archived.v1"

const producer = "tgdocs"

type Meta struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Time     time.Time `json:"time"`
	Producer string    `json:"producer"`
}

type Envelope[T any] struct {
	Meta Meta `json:"meta"`
	Data T    `json:"data"`
}

// NewEnvelope wraps data with a fresh event id and timestamp.
func NewEnvelope[T any](eventType string, data T) Envelope[T] {
	return Envelope[T]{
		Meta: Meta{
			ID:       uuid.NewString(),
			Type:     eventType,
			Time:     time.Now().UTC(),
			Producer: producer,
		},
		Data: data,
	}
}

// Publisher announces archived documents.
type Publisher interface {
	PublishDocumentArchived(ctx context.Context, doc *model.Document) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishDocumentArchived(context.Context, *model.Document) error { return nil }
func (Nop) Close() error                                                  { return nil }

type rabbitPublisher struct {
	conn     *amqp.Connection
	exchange string
	logger   *slog.Logger
}

// NewRabbitMQ dials the broker and declares a durable topic exchange.
func NewRabbitMQ(cfg config.AMQPConfig, logger *slog.Logger) (Publisher, error) {
	if cfg.Exchange == "" {
		return nil, fmt.Errorf("amqp exchange is required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	return &rabbitPublisher{
		conn:     conn,
		exchange: cfg.Exchange,
		logger:   logger.With(slog.String("component", "events")),
	}, nil
}

func (p *rabbitPublisher) PublishDocumentArchived(ctx context.Context, doc *model.Document) error {
	env := NewEnvelope(DocumentArchivedV1, doc)
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx, p.exchange, DocumentArchivedV1, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.Meta.ID,
		Timestamp:    env.Meta.Time,
		Type:         DocumentArchivedV1,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", DocumentArchivedV1, err)
	}
	p.logger.Debug("published", slog.String("event_id", env.Meta.ID), slog.String("document_id", doc.ID))
	return nil
}

func (p *rabbitPublisher) Close() error {
	return p.conn.Close()
}

// Package events publishes storefront lifecycle events for downstream
// consumers (fulfilment, analytics). Publishing is best-effort: a confirmed
// order is never rolled back because the broker was unavailable.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

const OrderConfirmedQueue = "order.confirmed"

const producerName = "storefront"

// Envelope is the common wrapper for all emitted events.
type Envelope[T any] struct {
	EventName     string    `json:"eventName"`
	EventID       string    `json:"eventId"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Producer      string    `json:"producer"`
	OccurredAt    time.Time `json:"occurredAt"`
	Payload       T         `json:"payload"`
}

type LineEvent struct {
	ItemID    string          `json:"itemId"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// OrderConfirmed is emitted once per confirmed checkout attempt.
type OrderConfirmed struct {
	OrderID     string          `json:"orderId"`
	AttemptID   string          `json:"attemptId"`
	UserID      string          `json:"userId"`
	Items       []LineEvent     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the queue so publish never fails due to missing infra
	if _, err := ch.QueueDeclare(OrderConfirmedQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", OrderConfirmedQueue, err)
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderConfirmed(ctx context.Context, correlationID string, ev OrderConfirmed) error {
	env := Envelope[OrderConfirmed]{
		EventName:     "OrderConfirmed",
		EventID:       uuid.NewString(),
		CorrelationID: correlationID,
		Producer:      producerName,
		OccurredAt:    time.Now().UTC(),
		Payload:       ev,
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal OrderConfirmed: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",                  // default exchange
		OrderConfirmedQueue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

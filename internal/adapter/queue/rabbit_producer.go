package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ViduraMC/Bakery-App/internal/notifier"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RoutingKeyCreated       = "order.created"
	RoutingKeyStatusUpdated = "order.status_updated"
	bindingPattern          = "order.#"
)

// Envelope is the wire format on the order-events exchange.
type Envelope struct {
	Event      notifier.EventName `json:"event"`
	OccurredAt time.Time          `json:"occurred_at"`
	Data       json.RawMessage    `json:"data"`
}

func routingKey(name notifier.EventName) (string, bool) {
	switch name {
	case notifier.OrderCreated:
		return RoutingKeyCreated, true
	case notifier.OrderStatusUpdated:
		return RoutingKeyStatusUpdated, true
	}
	return "", false
}

type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitPublisher forwards notifier events to a topic exchange.
type RabbitPublisher struct {
	ch       amqpPublisher
	exchange string
	timeout  time.Duration
	now      func() time.Time
}

// NewRabbitPublisher sets up the exchange, the notification queue and its
// binding once at startup.
func NewRabbitPublisher(ch *amqp.Channel, exchange, queue string) (*RabbitPublisher, error) {
	// 1. declare exchange (topic type, durable)
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	// 2. declare queue
	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	// 3. bind queue → exchange for every order event
	if err := ch.QueueBind(q.Name, bindingPattern, exchange, false, nil); err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}

	return newRabbitPublisher(ch, exchange), nil
}

func newRabbitPublisher(ch amqpPublisher, exchange string) *RabbitPublisher {
	return &RabbitPublisher{ch: ch, exchange: exchange, timeout: 5 * time.Second, now: time.Now}
}

func (p *RabbitPublisher) Name() string { return "rabbitmq" }

func (p *RabbitPublisher) Update(ctx context.Context, ev notifier.Event) error {
	key, ok := routingKey(ev.Name)
	if !ok {
		return nil
	}
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	body, err := json.Marshal(Envelope{Event: ev.Name, OccurredAt: p.now().UTC(), Data: data})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		Timestamp:    p.now().UTC(),
		Type:         string(ev.Name),
		Body:         body,
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.ch.PublishWithContext(ctx, p.exchange, key, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/ViduraMC/Bakery-App/internal/notifier"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
)

type analyticsRecord struct {
	Event      notifier.EventName `json:"event"`
	OccurredAt time.Time          `json:"occurred_at"`
	Data       any                `json:"data"`
}

// AnalyticsPublisher streams order lifecycle events to a Kafka topic, keyed
// by order id so one order's events stay on one partition.
type AnalyticsPublisher struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

func NewAnalyticsPublisher(producer sarama.SyncProducer, topic string) *AnalyticsPublisher {
	return &AnalyticsPublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *AnalyticsPublisher) Name() string { return "kafka-analytics" }

func (p *AnalyticsPublisher) Update(_ context.Context, ev notifier.Event) error {
	var key string
	switch v := ev.Payload.(type) {
	case usecase.OrderCreatedEvent:
		key = v.OrderID
	case usecase.OrderStatusUpdatedEvent:
		key = v.OrderID
	default:
		return nil
	}

	body, err := json.Marshal(analyticsRecord{Event: ev.Name, OccurredAt: p.now().UTC(), Data: ev.Payload})
	if err != nil {
		return fmt.Errorf("marshal analytics record: %w", err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event"), Value: []byte(ev.Name)},
		},
	})
	if err != nil {
		return fmt.Errorf("send to %s: %w", p.topic, err)
	}
	return nil
}

func (p *AnalyticsPublisher) Close() error { return p.producer.Close() }

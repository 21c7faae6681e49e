package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// OrderStatusEvent announces a reconciled status change so interested
// consumers (mail, analytics, cart UI invalidation) can react without polling
// the orders table.
type OrderStatusEvent struct {
	OrderID        string    `json:"order_id"`
	UserID         string    `json:"user_id"`
	PreviousStatus string    `json:"previous_status"`
	Status         string    `json:"status"`
	Total          int64     `json:"total"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-status",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

// PublishStatusChange writes one event keyed by order id, so per-order
// ordering is preserved within a partition.
func (p *KafkaPublisher) PublishStatusChange(ctx context.Context, event OrderStatusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order status event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish order status event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

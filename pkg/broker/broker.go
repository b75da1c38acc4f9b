// Package broker publishes stock-affecting mutations to a Kafka topic.
//
// Publication is synchronous: the caller waits for the broker ack and a
// failure propagates to it. Creation and field updates are announced;
// deductions and deletions are intentionally not.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event names carried in the payload and the "event" message header.
const (
	EventStockCreated = "stock.created"
	EventStockUpdated = "stock.updated"
)

// StockEvent is the wire payload for a stock-affecting mutation.
type StockEvent struct {
	Event  string `json:"event"`
	ItemID string `json:"id"`
	Name   string `json:"name"`
	Stock  int64  `json:"stock"`
}

// Publisher announces stock events to the broker.
type Publisher interface {
	Publish(ctx context.Context, event StockEvent) error
	Close() error
}

// msgWriter is the slice of *kafka.Writer the publisher needs.
type msgWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher is the Kafka-backed Publisher.
type KafkaPublisher struct {
	writer msgWriter
}

// NewKafkaPublisher builds a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchSize:              1,
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish writes the event keyed by item ID so all events for one item
// land on the same partition, in order.
func (p *KafkaPublisher) Publish(ctx context.Context, event StockEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("broker: marshal %s: %w", event.Event, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.ItemID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event.Event)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("broker: publish %s: %w", event.Event, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Topic carries every storefront analytics event, keyed by session id
// so one shopper's events stay ordered within a partition.
const Topic = "storefront.events"

// KafkaTracker publishes events to a Kafka topic.
type KafkaTracker struct {
	writer *kafka.Writer
}

// NewKafkaTracker creates a tracker writing to the given brokers.
func NewKafkaTracker(brokers []string) (*KafkaTracker, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka tracker requires at least one broker")
	}
	return &KafkaTracker{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        Topic,
			RequiredAcks: kafka.RequireOne,
			Balancer:     &kafka.Hash{},
		},
	}, nil
}

func (t *KafkaTracker) Track(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal analytics event: %w", err)
	}
	return t.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SessionID),
		Value: payload,
		Time:  event.Timestamp,
	})
}

func (t *KafkaTracker) Close() error {
	return t.writer.Close()
}

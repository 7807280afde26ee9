// Package kafka publishes domain events to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"
)

// Config holds Kafka connection details.
type Config struct {
	Brokers string // comma separated
	Topic   string
}

// Publisher writes events to a single topic.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Publisher. Brokers are dialed lazily on first write.
func NewPublisher(cfg Config) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(strings.Split(cfg.Brokers, ",")...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{}, // same key, same partition
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish writes body keyed by routingKey, e.g. "order.created".
func (p *Publisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	msg := kafka.Message{
		Key:   []byte(routingKey),
		Value: body,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s event: %w", routingKey, err)
	}
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

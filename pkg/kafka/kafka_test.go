package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublisher(t *testing.T) {
	p := NewPublisher(Config{Brokers: "kafka-1:9092,kafka-2:9092", Topic: "storefront-events"})
	defer p.Close()

	require.NotNil(t, p.writer)
	assert.Equal(t, "storefront-events", p.writer.Topic)
	assert.NotNil(t, p.writer.Addr)
	assert.True(t, p.writer.AllowAutoTopicCreation)
	assert.IsType(t, &kafka.Hash{}, p.writer.Balancer)
}

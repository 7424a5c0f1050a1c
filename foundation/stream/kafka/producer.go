package kafka

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"
)

// Producer writes values to a Kafka topic.
type Producer struct {
	writer *kafkago.Writer
}

// NewProducer constructs a producer for the topic.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers provided")
	}

	w := kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}

	return &Producer{writer: &w}, nil
}

// Publish writes the values in order as separate messages.
func (p *Producer) Publish(ctx context.Context, values ...[]byte) error {
	msgs := make([]kafkago.Message, len(values))
	for i, v := range values {
		msgs[i] = kafkago.Message{Value: v}
	}

	return p.writer.WriteMessages(ctx, msgs...)
}

// Close flushes pending writes and releases the connections.
func (p *Producer) Close() error {
	return p.writer.Close()
}

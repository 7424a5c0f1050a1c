// Package kafka implements a stream source that reads from a Kafka topic
// as a member of a consumer group.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ardanlabs/blockledger/foundation/stream"
	kafkago "github.com/segmentio/kafka-go"
)

// Config represents the settings for reading from Kafka.
type Config struct {
	Brokers        []string
	Topic          string
	GroupID        string
	MinBytes       int
	MaxBytes       int
	MaxWait        time.Duration
	SessionTimeout time.Duration
}

// Kafka represents a consumer group reader. This implements the
// stream.Source interface.
type Kafka struct {
	reader *kafkago.Reader
	topic  string
}

// New constructs a Kafka source. No connection is made until the first
// call to Fetch.
func New(cfg Config) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers provided")
	}

	if cfg.Topic == "" {
		return nil, errors.New("kafka: no topic provided")
	}

	if cfg.MinBytes <= 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10e6
	}
	if cfg.MinBytes > cfg.MaxBytes {
		return nil, fmt.Errorf("kafka: min bytes %d is greater than max bytes %d", cfg.MinBytes, cfg.MaxBytes)
	}

	rc := kafkago.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		MaxWait:        cfg.MaxWait,
		SessionTimeout: cfg.SessionTimeout,
	}

	if err := rc.Validate(); err != nil {
		return nil, fmt.Errorf("kafka: %w", err)
	}

	k := Kafka{
		reader: kafkago.NewReader(rc),
		topic:  cfg.Topic,
	}

	return &k, nil
}

// Name returns the name of the source.
func (k *Kafka) Name() string {
	return "kafka:" + k.topic
}

// Fetch blocks until the next message is read from the topic.
func (k *Kafka) Fetch(ctx context.Context) (stream.Message, error) {
	m, err := k.reader.FetchMessage(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return stream.Message{}, stream.ErrClosed
		}
		return stream.Message{}, err
	}

	return toMessage(k.Name(), m), nil
}

// toMessage converts a record read from the topic. Kafka encodes a zero
// length value the same as a null one and the reader hands both back as
// nil, so absence can't be signalled through this source and every value
// is delivered as a present payload.
func toMessage(source string, m kafkago.Message) stream.Message {
	value := m.Value
	if value == nil {
		value = []byte{}
	}

	return stream.Message{
		Source:    source,
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     value,
		Time:      m.Time,
	}
}

// Commit marks the message as consumed for the consumer group.
func (k *Kafka) Commit(ctx context.Context, msg stream.Message) error {
	m := kafkago.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	}

	return k.reader.CommitMessages(ctx, m)
}

// Close leaves the consumer group and releases the connections.
func (k *Kafka) Close() error {
	return k.reader.Close()
}

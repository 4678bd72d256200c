package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

const (
	_defaultWriteTimeout = 10 * time.Second
	_defaultBatchSize    = 100
	_defaultBatchTimeout = 50 * time.Millisecond
	_defaultDialTimeout  = 5 * time.Second
)

// Producer - Kafka message producer.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer checks that the first broker is reachable and returns a synchronous producer.
func NewProducer(brokers []string, topic string, opts ...ProducerOption) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka producer: brokers list is empty")
	}

	if topic == "" {
		return nil, errors.New("kafka producer: topic is empty")
	}

	config := &producerConfig{
		writeTimeout: _defaultWriteTimeout,
		batchSize:    _defaultBatchSize,
		batchTimeout: _defaultBatchTimeout,
		compression:  kafka.Snappy,
	}

	for _, opt := range opts {
		opt(config)
	}

	ctx, cancel := context.WithTimeout(context.Background(), _defaultDialTimeout)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return nil, fmt.Errorf("kafka producer: dial %s: %w", brokers[0], err)
	}
	_ = conn.Close()

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           config.writeTimeout,
		BatchSize:              config.batchSize,
		BatchTimeout:           config.batchTimeout,
		Compression:            config.compression,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &Producer{writer: writer}, nil
}

// WriteMessage encodes value as JSON and writes it under key.
func (p *Producer) WriteMessage(ctx context.Context, key string, value interface{}) error {
	msg, err := NewMessage(key, value)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka producer - write message: %w", err)
	}

	return nil
}

// Close - закрывает продюсер
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// producerConfig - internal options
type producerConfig struct {
	writeTimeout time.Duration
	batchSize    int
	batchTimeout time.Duration
	compression  kafka.Compression
}

// ProducerOption - настройки
type ProducerOption func(*producerConfig)

func WithWriteTimeout(timeout time.Duration) ProducerOption {
	return func(c *producerConfig) {
		if timeout > 0 {
			c.writeTimeout = timeout
		}
	}
}

func WithBatchTimeout(timeout time.Duration) ProducerOption {
	return func(c *producerConfig) {
		if timeout > 0 {
			c.batchTimeout = timeout
		}
	}
}

func WithCompression(compression kafka.Compression) ProducerOption {
	return func(c *producerConfig) {
		c.compression = compression
	}
}

// ParseCompression maps a codec name to kafka.Compression. An empty string
// keeps snappy, "none" disables compression.
func ParseCompression(s string) (kafka.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "snappy":
		return kafka.Snappy, nil
	case "none":
		return 0, nil
	case "gzip":
		return kafka.Gzip, nil
	case "lz4":
		return kafka.Lz4, nil
	case "zstd":
		return kafka.Zstd, nil
	}
	return 0, fmt.Errorf("unknown kafka compression %q", s)
}

// NewMessage - helper
func NewMessage(key string, value interface{}) (kafka.Message, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal message: %w", err)
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}, nil
}

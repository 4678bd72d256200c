package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

const (
	_defaultMaxWait        = 10 * time.Second
	_defaultMinBytes       = 1
	_defaultMaxBytes       = 10e6 // 10MB
	_defaultCommitInterval = time.Second
	_defaultRetryBackoff   = time.Second
)

// Consumer -.
type Consumer struct {
	reader       *kafka.Reader
	retryBackoff time.Duration
}

// NewConsumer -.
func NewConsumer(brokers []string, topic, groupID string, opts ...ConsumerOption) *Consumer {
	config := &consumerConfig{
		maxWait:        _defaultMaxWait,
		minBytes:       _defaultMinBytes,
		maxBytes:       _defaultMaxBytes,
		commitInterval: _defaultCommitInterval,
		retryBackoff:   _defaultRetryBackoff,
		startOffset:    kafka.FirstOffset,
	}

	for _, opt := range opts {
		opt(config)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       config.minBytes,
		MaxBytes:       config.maxBytes,
		MaxWait:        config.maxWait,
		CommitInterval: config.commitInterval,
		StartOffset:    config.startOffset,
		QueueCapacity:  100,
	})

	return &Consumer{
		reader:       reader,
		retryBackoff: config.retryBackoff,
	}
}

func (c *Consumer) FetchMessage(ctx context.Context) (kafka.Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka consumer - fetch message: %w", err)
	}
	return msg, nil
}

func (c *Consumer) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if err := c.reader.CommitMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka consumer - commit messages: %w", err)
	}
	return nil
}

// Close -.
func (c *Consumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}

// consumerConfig -.
type consumerConfig struct {
	maxWait        time.Duration
	minBytes       int
	maxBytes       int
	commitInterval time.Duration
	retryBackoff   time.Duration
	startOffset    int64
}

// ConsumerOption -.
type ConsumerOption func(*consumerConfig)

// WithMaxWait -.
func WithMaxWait(duration time.Duration) ConsumerOption {
	return func(c *consumerConfig) {
		if duration > 0 {
			c.maxWait = duration
		}
	}
}

// WithCommitInterval -.
func WithCommitInterval(interval time.Duration) ConsumerOption {
	return func(c *consumerConfig) {
		if interval > 0 {
			c.commitInterval = interval
		}
	}
}

// WithRetryBackoff sets the base delay between handler retries; attempt n waits n*backoff.
func WithRetryBackoff(backoff time.Duration) ConsumerOption {
	return func(c *consumerConfig) {
		if backoff > 0 {
			c.retryBackoff = backoff
		}
	}
}

// WithStartOffset is applied only when the group has no committed offset.
func WithStartOffset(offset int64) ConsumerOption {
	return func(c *consumerConfig) {
		c.startOffset = offset
	}
}

// ParseStartOffset maps "first" or "last" to the reader start offset.
// An empty string means "first".
func ParseStartOffset(s string) (int64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return kafka.FirstOffset, nil
	case "last":
		return kafka.LastOffset, nil
	}
	return 0, fmt.Errorf("unknown kafka start offset %q", s)
}

type MessageHandler interface {
	Handle(ctx context.Context, msg kafka.Message) error
}

type MessageHandlerFunc func(ctx context.Context, msg kafka.Message) error

// Handle -.
func (f MessageHandlerFunc) Handle(ctx context.Context, msg kafka.Message) error {
	return f(ctx, msg)
}

// ConsumeWithRetry fetches messages one by one and commits each after the
// handler succeeds. A message still failing after maxRetries stops the loop.
func (c *Consumer) ConsumeWithRetry(ctx context.Context, handler MessageHandler, maxRetries int) error {
	for {
		msg, err := c.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := c.handleWithRetry(ctx, handler, msg, maxRetries); err != nil {
			return err
		}

		if err := c.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit message: %w", err)
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, handler MessageHandler, msg kafka.Message, maxRetries int) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if lastErr = handler.Handle(ctx, msg); lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryBackoff * time.Duration(attempt+1)):
		}
	}

	return fmt.Errorf("message processing failed after %d retries: %w", maxRetries, lastErr)
}

func UnmarshalMessage(msg kafka.Message, v interface{}) error {
	if err := json.Unmarshal(msg.Value, v); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	return nil
}

// Package rabbitmq publishes JSON messages to a durable topic exchange.
package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = 2 * time.Second
)

type Publisher struct {
	exchange     string
	connAttempts int
	connTimeout  time.Duration

	conn    *amqp.Connection
	channel *amqp.Channel
}

type Option func(*Publisher)

// ConnAttempts - число попыток подключения, <= 0 оставляет значение по умолчанию
func ConnAttempts(attempts int) Option {
	return func(p *Publisher) {
		if attempts > 0 {
			p.connAttempts = attempts
		}
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(p *Publisher) {
		if timeout > 0 {
			p.connTimeout = timeout
		}
	}
}

// New dials url and declares exchange as a durable topic exchange.
func New(url, exchange string, opts ...Option) (*Publisher, error) {
	p := &Publisher{
		exchange:     exchange,
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
	}

	for _, opt := range opts {
		opt(p)
	}

	var err error
	for p.connAttempts > 0 {
		if p.conn, err = amqp.Dial(url); err == nil {
			break
		}

		time.Sleep(p.connTimeout)
		p.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("rabbitmq - New - connAttempts == 0: %w", err)
	}

	if p.channel, err = p.conn.Channel(); err != nil {
		_ = p.conn.Close()
		return nil, fmt.Errorf("rabbitmq - New - channel: %w", err)
	}

	if err := p.channel.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("rabbitmq - New - exchange declare: %w", err)
	}

	return p, nil
}

// Publish sends v as a persistent JSON message with the given routing key.
func (p *Publisher) Publish(ctx context.Context, routingKey string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("rabbitmq - Publish - marshal: %w", err)
	}

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq - Publish: %w", err)
	}

	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

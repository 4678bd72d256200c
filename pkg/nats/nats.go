// Package nats wraps a NATS connection for JSON publishing.
package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

const (
	_defaultName          = "wishlist-tracker"
	_defaultMaxReconnects = 60
	_defaultReconnectWait = 2 * time.Second
)

type Client struct {
	Conn *nats.Conn
}

type Option func(*[]nats.Option)

// Name sets the connection name shown in server monitoring.
func Name(name string) Option {
	return func(opts *[]nats.Option) {
		*opts = append(*opts, nats.Name(name))
	}
}

func New(url string, opts ...Option) (*Client, error) {
	natsOpts := []nats.Option{
		nats.Name(_defaultName),
		nats.MaxReconnects(_defaultMaxReconnects),
		nats.ReconnectWait(_defaultReconnectWait),
	}
	for _, opt := range opts {
		opt(&natsOpts)
	}

	conn, err := nats.Connect(url, natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("nats - New - connect: %w", err)
	}

	return &Client{Conn: conn}, nil
}

// Publish encodes v as JSON and publishes it on subject.
func (c *Client) Publish(ctx context.Context, subject string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("nats - Publish - marshal: %w", err)
	}

	if err := c.Conn.Publish(subject, data); err != nil {
		return fmt.Errorf("nats - Publish: %w", err)
	}

	return nil
}

// Close drains pending messages before closing.
func (c *Client) Close() error {
	if c.Conn == nil {
		return nil
	}
	return c.Conn.Drain()
}

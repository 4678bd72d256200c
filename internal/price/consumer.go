package price

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
	"github.com/kedr891/wishlist-tracker/pkg/kafka"
)

// PriceUpdater is satisfied by *Service.
type PriceUpdater interface {
	RecordObserved(ctx context.Context, itemID uuid.UUID, price decimal.NullDecimal, observedAt time.Time) (*entity.PriceUpdate, error)
}

// Consumer - консьюмер наблюдаемых цен из Kafka
type Consumer struct {
	consumer   *kafka.Consumer
	updater    PriceUpdater
	log        domain.Logger
	maxRetries int
}

func NewConsumer(consumer *kafka.Consumer, updater PriceUpdater, log domain.Logger, maxRetries int) *Consumer {
	return &Consumer{
		consumer:   consumer,
		updater:    updater,
		log:        log,
		maxRetries: maxRetries,
	}
}

// Start blocks until ctx is cancelled or a message keeps failing after retries.
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info("Price consumer started")

	if err := c.consumer.ConsumeWithRetry(ctx, kafka.MessageHandlerFunc(c.Handle), c.maxRetries); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("consume messages: %w", err)
	}

	return nil
}

// Handle applies one price-observed event, stamped with its observed_at when
// present. Undecodable events, unknown items, invalid prices and events older
// than the latest observation are logged and skipped so they are committed.
func (c *Consumer) Handle(ctx context.Context, msg kafkago.Message) error {
	var event entity.PriceObservedEvent
	if err := kafka.UnmarshalMessage(msg, &event); err != nil {
		c.log.Warn("Skipping malformed price event", "offset", msg.Offset, "error", err)
		return nil
	}

	update, err := c.updater.RecordObserved(ctx, event.ItemID, event.Price, event.ObservedAt)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) || errors.Is(err, entity.ErrInvalidInput) {
			c.log.Warn("Skipping price event",
				"item_id", event.ItemID,
				"source", event.Source,
				"error", err,
			)
			return nil
		}
		return fmt.Errorf("update price: %w", err)
	}

	c.log.Debug("Price event processed",
		"item_id", event.ItemID,
		"source", event.Source,
		"changed", update.Changed(),
	)

	return nil
}

package bootstrap

import (
	"fmt"

	"github.com/kedr891/wishlist-tracker/config"
	"github.com/kedr891/wishlist-tracker/internal/price"
	"github.com/kedr891/wishlist-tracker/pkg/logger"
)

// InitPriceConsumer wires the price-observed topic to the price updater.
func InitPriceConsumer(cfg *config.Config, services *Services, log *logger.Logger) (*price.Consumer, func(), error) {
	consumer, err := InitKafkaConsumer(cfg, cfg.Kafka.TopicPriceObserved, cfg.Kafka.GroupPriceConsumer)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka consumer: %w", err)
	}

	return price.NewConsumer(consumer, services.Prices, log.With("component", "price-consumer"), cfg.Kafka.MaxRetries),
		closer(log, "kafka consumer", consumer.Close), nil
}

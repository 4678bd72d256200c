package bootstrap

import (
	"github.com/kedr891/wishlist-tracker/config"
	"github.com/kedr891/wishlist-tracker/pkg/kafka"
)

func InitKafkaConsumer(cfg *config.Config, topic, groupID string) (*kafka.Consumer, error) {
	startOffset, err := kafka.ParseStartOffset(cfg.Kafka.StartOffset)
	if err != nil {
		return nil, err
	}

	return kafka.NewConsumer(cfg.Kafka.Brokers, topic, groupID,
		kafka.WithMaxWait(cfg.Kafka.MaxWait),
		kafka.WithCommitInterval(cfg.Kafka.CommitInterval),
		kafka.WithRetryBackoff(cfg.Kafka.RetryBackoff),
		kafka.WithStartOffset(startOffset),
	), nil
}

func InitKafkaProducer(cfg *config.Config, topic string) (*kafka.Producer, error) {
	compression, err := kafka.ParseCompression(cfg.Kafka.Compression)
	if err != nil {
		return nil, err
	}

	return kafka.NewProducer(cfg.Kafka.Brokers, topic,
		kafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		kafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		kafka.WithCompression(compression),
	)
}

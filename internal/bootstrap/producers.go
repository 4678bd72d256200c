package bootstrap

import (
	"fmt"

	"github.com/kedr891/wishlist-tracker/config"
	"github.com/kedr891/wishlist-tracker/internal/notification"
	"github.com/kedr891/wishlist-tracker/pkg/logger"
	"github.com/kedr891/wishlist-tracker/pkg/nats"
	"github.com/kedr891/wishlist-tracker/pkg/rabbitmq"
)

// InitPublisher connects the configured notification broker. With broker
// "none" it returns a nil Publisher.
func InitPublisher(cfg *config.Config, log *logger.Logger) (notification.Publisher, func(), error) {
	switch cfg.Notify.Broker {
	case config.BrokerKafka:
		producer, err := InitKafkaProducer(cfg, cfg.Kafka.TopicNotifications)
		if err != nil {
			return nil, nil, fmt.Errorf("kafka producer: %w", err)
		}
		log.Info("Publishing notifications to Kafka", "topic", cfg.Kafka.TopicNotifications)
		return notification.NewKafkaPublisher(producer), closer(log, "kafka producer", producer.Close), nil

	case config.BrokerNATS:
		client, err := nats.New(cfg.Notify.NATSURL, nats.Name(cfg.App.Name))
		if err != nil {
			return nil, nil, fmt.Errorf("nats.New: %w", err)
		}
		log.Info("Publishing notifications to NATS", "subject", cfg.Notify.NATSSubject+".<kind>")
		return notification.NewRoutedPublisher(client, cfg.Notify.NATSSubject), closer(log, "nats", client.Close), nil

	case config.BrokerAMQP:
		pub, err := rabbitmq.New(cfg.Notify.AMQPURL, cfg.Notify.AMQPExchange,
			rabbitmq.ConnAttempts(cfg.Notify.AMQPConnAttempts),
			rabbitmq.ConnTimeout(cfg.Notify.AMQPConnTimeout),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("rabbitmq.New: %w", err)
		}
		log.Info("Publishing notifications to RabbitMQ", "exchange", cfg.Notify.AMQPExchange)
		return notification.NewRoutedPublisher(pub, ""), closer(log, "rabbitmq", pub.Close), nil
	}

	return nil, func() {}, nil
}

func closer(log *logger.Logger, name string, closeFn func() error) func() {
	return func() {
		if err := closeFn(); err != nil {
			log.Warn("Failed to close "+name, "error", err)
		}
	}
}

package notification

import (
	"context"

	"github.com/kedr891/wishlist-tracker/internal/entity"
)

type messageWriter interface {
	WriteMessage(ctx context.Context, key string, value interface{}) error
}

// KafkaPublisher writes notifications keyed by user id, so one user's
// notifications stay ordered within a partition.
type KafkaPublisher struct {
	producer messageWriter
}

func NewKafkaPublisher(producer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, n *entity.Notification) error {
	return p.producer.WriteMessage(ctx, n.UserID.String(), n)
}

// routePublisher is implemented by the NATS client (route = subject) and the
// RabbitMQ publisher (route = routing key).
type routePublisher interface {
	Publish(ctx context.Context, route string, v interface{}) error
}

// RoutedPublisher routes each notification by its kind.
type RoutedPublisher struct {
	pub    routePublisher
	prefix string
}

// NewRoutedPublisher - prefix "wishlist.notifications" gives routes like
// "wishlist.notifications.price_drop"; an empty prefix routes by kind alone.
func NewRoutedPublisher(pub routePublisher, prefix string) *RoutedPublisher {
	return &RoutedPublisher{pub: pub, prefix: prefix}
}

func (p *RoutedPublisher) Publish(ctx context.Context, n *entity.Notification) error {
	return p.pub.Publish(ctx, p.route(n.Kind), n)
}

func (p *RoutedPublisher) route(kind entity.NotificationKind) string {
	if p.prefix == "" {
		return string(kind)
	}
	return p.prefix + "." + string(kind)
}

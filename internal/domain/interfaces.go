package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kedr891/wishlist-tracker/internal/entity"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *entity.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *entity.Item) error
	GetItem(ctx context.Context, id uuid.UUID) (*entity.Item, error)
	// GetItemForUpdate locks the item row until the surrounding transaction ends.
	GetItemForUpdate(ctx context.Context, id uuid.UUID) (*entity.Item, error)
	ListItems(ctx context.Context, userID uuid.UUID, filter entity.ItemFilter) ([]entity.Item, error)
	UpdateItem(ctx context.Context, item *entity.Item) error
	UpdateItemPrices(ctx context.Context, item *entity.Item) error
	DeleteItem(ctx context.Context, id uuid.UUID) error
}

type PriceRepository interface {
	AppendObservation(ctx context.Context, obs *entity.PriceObservation) error
	// ListObservations returns the item's history newest first.
	ListObservations(ctx context.Context, itemID uuid.UUID) ([]entity.PriceObservation, error)
}

type CouponRepository interface {
	CreateCoupon(ctx context.Context, coupon *entity.Coupon) error
	GetCoupon(ctx context.Context, id uuid.UUID) (*entity.Coupon, error)
	ListCouponsByItem(ctx context.Context, itemID uuid.UUID) ([]entity.Coupon, error)
	ListCouponsByUser(ctx context.Context, userID uuid.UUID) ([]entity.Coupon, error)
	UpdateCoupon(ctx context.Context, coupon *entity.Coupon) error
	DeleteCoupon(ctx context.Context, id uuid.UUID) error
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *entity.Notification) error
	GetNotification(ctx context.Context, id uuid.UUID) (*entity.Notification, error)
	// ListNotifications orders by created_at descending, ties in insertion order.
	ListNotifications(ctx context.Context, userID uuid.UUID, filter entity.NotificationFilter) ([]entity.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkNotificationRead(ctx context.Context, id uuid.UUID, at time.Time) (*entity.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID, at time.Time) (int, error)
	DeleteNotification(ctx context.Context, id uuid.UUID) error
}

// Repository is the full set of persistence operations. A Repository handed
// to an InTx callback is bound to that transaction.
type Repository interface {
	UserRepository
	ItemRepository
	PriceRepository
	CouponRepository
	NotificationRepository
}

// Store is a Repository that can open transactions.
type Store interface {
	Repository
	InTx(ctx context.Context, fn func(repo Repository) error) error
	HealthCheck(ctx context.Context) error
}

type Logger interface {
	Debug(message interface{}, args ...interface{})
	Info(message interface{}, args ...interface{})
	Warn(message interface{}, args ...interface{})
	Error(message interface{}, args ...interface{})
}

type MessageProducer interface {
	WriteMessage(ctx context.Context, key string, value interface{}) error
	Close() error
}

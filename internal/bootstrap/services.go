package bootstrap

import (
	"github.com/kedr891/wishlist-tracker/internal/coupon"
	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/notification"
	"github.com/kedr891/wishlist-tracker/internal/price"
	"github.com/kedr891/wishlist-tracker/internal/wishlist"
	"github.com/kedr891/wishlist-tracker/pkg/logger"
)

type Services struct {
	Store         domain.Store
	Notifications *notification.Service
	Prices        *price.Service
	Coupons       *coupon.Service
	Wishlist      *wishlist.Service
}

func InitServices(store domain.Store, cache price.HistoryCache, publisher notification.Publisher, log *logger.Logger) *Services {
	notifications := notification.NewService(store, publisher, log.With("component", "notification"))
	prices := price.NewService(store, cache, notifications, log.With("component", "price"))

	return &Services{
		Store:         store,
		Notifications: notifications,
		Prices:        prices,
		Coupons:       coupon.NewService(store, notifications, log.With("component", "coupon")),
		Wishlist:      wishlist.NewService(store, prices, log.With("component", "wishlist")),
	}
}

package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/kedr891/wishlist-tracker/docs"
	"github.com/kedr891/wishlist-tracker/internal/api/handler"
	"github.com/kedr891/wishlist-tracker/internal/metrics"
)

type Handlers struct {
	User         *handler.UserHandler
	Item         *handler.ItemHandler
	Price        *handler.PriceHandler
	Coupon       *handler.CouponHandler
	Notification *handler.NotificationHandler
	Health       *handler.HealthHandler
}

func SetupRoutes(r *gin.Engine, h Handlers, withMetrics bool) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", h.Health.Health)
	if withMetrics {
		r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))
	}

	v1 := r.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("", h.User.CreateUser)
			users.GET("/:user_id", h.User.GetUser)
			users.POST("/:user_id/items", h.Item.CreateItem)
			users.GET("/:user_id/items", h.Item.ListItems)
			users.GET("/:user_id/price-drops", h.Price.GetPriceDrops)
			users.GET("/:user_id/coupons", h.Coupon.ListUserCoupons)
			users.GET("/:user_id/notifications", h.Notification.ListNotifications)
			users.POST("/:user_id/notifications/read-all", h.Notification.MarkAllRead)
		}

		items := v1.Group("/items")
		{
			items.GET("/:item_id", h.Item.GetItem)
			items.PATCH("/:item_id", h.Item.UpdateItem)
			items.DELETE("/:item_id", h.Item.DeleteItem)
			items.POST("/:item_id/coupons", h.Coupon.CreateCoupon)
			items.POST("/:item_id/coupons/simulate", h.Coupon.SimulateCoupon)
			items.GET("/:item_id/coupons", h.Coupon.ListItemCoupons)
		}

		prices := v1.Group("/prices")
		{
			prices.PUT("/:item_id", h.Price.UpdatePrice)
			prices.GET("/:item_id/history", h.Price.GetHistory)
			prices.POST("/:item_id/simulate-drop", h.Price.SimulateDrop)
		}

		coupons := v1.Group("/coupons")
		{
			coupons.GET("/:coupon_id", h.Coupon.GetCoupon)
			coupons.PATCH("/:coupon_id", h.Coupon.UpdateCoupon)
			coupons.DELETE("/:coupon_id", h.Coupon.DeleteCoupon)
		}

		notifications := v1.Group("/notifications")
		{
			notifications.POST("/:notification_id/read", h.Notification.MarkRead)
			notifications.DELETE("/:notification_id", h.Notification.DeleteNotification)
		}
	}
}

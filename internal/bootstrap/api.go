package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kedr891/wishlist-tracker/config"
	"github.com/kedr891/wishlist-tracker/internal/api/handler"
	"github.com/kedr891/wishlist-tracker/internal/api/middleware"
	"github.com/kedr891/wishlist-tracker/internal/api/router"
	"github.com/kedr891/wishlist-tracker/pkg/logger"
)

func InitHandlers(cfg *config.Config, services *Services, log *logger.Logger) router.Handlers {
	l := log.With("component", "http")

	return router.Handlers{
		User:         handler.NewUserHandler(services.Wishlist, l),
		Item:         handler.NewItemHandler(services.Wishlist, l),
		Price:        handler.NewPriceHandler(services.Prices, l),
		Coupon:       handler.NewCouponHandler(services.Coupons, l),
		Notification: handler.NewNotificationHandler(services.Notifications, l),
		Health:       handler.NewHealthHandler(services.Store, cfg.App.Name, cfg.App.Version),
	}
}

// InitHTTPServer builds the gin engine. X-Forwarded-For is honored only from
// cfg.HTTP.TrustedProxies; with none configured ClientIP is the peer address.
func InitHTTPServer(cfg *config.Config, handlers router.Handlers, log *logger.Logger) (*http.Server, error) {
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	engine.Use(gin.Recovery())
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.CORS())
	engine.Use(middleware.RateLimit(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst,
		middleware.WithIdleTTL(cfg.HTTP.RateLimitIdleTTL)))
	if cfg.Metrics.Enabled {
		engine.Use(middleware.Metrics())
	}

	router.SetupRoutes(engine, handlers, cfg.Metrics.Enabled)

	return &http.Server{
		Addr:           ":" + cfg.HTTP.Port,
		Handler:        engine,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}, nil
}

// RunHTTPServer serves until ctx is cancelled, then shuts down gracefully.
func RunHTTPServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down API server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		return err
	}

	log.Info("API server stopped successfully")
	return nil
}

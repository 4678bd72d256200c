package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kedr891/wishlist-tracker/config"
	"github.com/kedr891/wishlist-tracker/internal/bootstrap"
	"github.com/kedr891/wishlist-tracker/pkg/logger"
)

// RunAPI serves the HTTP API until ctx is cancelled. With
// kafka.embeddedConsumer set it also consumes price observations in-process.
func RunAPI(ctx context.Context, cfg *config.Config) error {
	log := bootstrap.InitLogger(cfg)
	log.Info("Starting Wishlist Tracker API", "version", cfg.App.Version)

	services, closeAll, err := initServices(cfg, log)
	if err != nil {
		return err
	}
	defer closeAll()

	handlers := bootstrap.InitHandlers(cfg, services, log)
	server, err := bootstrap.InitHTTPServer(cfg, handlers, log)
	if err != nil {
		return fmt.Errorf("init http server: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bootstrap.RunHTTPServer(ctx, server, cfg.HTTP.ShutdownTimeout, log)
	})

	if cfg.Kafka.EmbeddedConsumer {
		consumer, closeConsumer, err := bootstrap.InitPriceConsumer(cfg, services, log)
		if err != nil {
			return err
		}
		defer closeConsumer()

		g.Go(func() error {
			log.Info("Starting embedded price consumer", "topic", cfg.Kafka.TopicPriceObserved)
			return consumer.Start(ctx)
		})
	}

	return g.Wait()
}

// RunPriceConsumer consumes price observations until ctx is cancelled.
func RunPriceConsumer(ctx context.Context, cfg *config.Config) error {
	log := bootstrap.InitLogger(cfg)
	log.Info("Starting Wishlist Price Consumer", "version", cfg.App.Version)

	services, closeAll, err := initServices(cfg, log)
	if err != nil {
		return err
	}
	defer closeAll()

	consumer, closeConsumer, err := bootstrap.InitPriceConsumer(cfg, services, log)
	if err != nil {
		return err
	}
	defer closeConsumer()

	log.Info("Starting price consumer...", "topic", cfg.Kafka.TopicPriceObserved)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("price consumer: %w", err)
	}

	log.Info("Price consumer stopped successfully")
	return nil
}

func initServices(cfg *config.Config, log *logger.Logger) (*bootstrap.Services, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	store, closeStore, err := bootstrap.InitStorage(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	closers = append(closers, closeStore)

	cache, closeCache, err := bootstrap.InitHistoryCache(cfg, log)
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("init cache: %w", err)
	}
	closers = append(closers, closeCache)

	publisher, closePublisher, err := bootstrap.InitPublisher(cfg, log)
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("init publisher: %w", err)
	}
	closers = append(closers, closePublisher)

	return bootstrap.InitServices(store, cache, publisher, log), closeAll, nil
}

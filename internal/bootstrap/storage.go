package bootstrap

import (
	"fmt"

	"github.com/kedr891/wishlist-tracker/config"
	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/storage/memstore"
	"github.com/kedr891/wishlist-tracker/internal/storage/pgstorage"
	"github.com/kedr891/wishlist-tracker/pkg/logger"
	"github.com/kedr891/wishlist-tracker/pkg/postgres"
)

// InitStorage opens the configured store. The returned func releases it.
func InitStorage(cfg *config.Config, log *logger.Logger) (domain.Store, func(), error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		return memstore.New(), func() {}, nil
	}

	log.Info("Connecting to PostgreSQL...")
	pg, err := postgres.New(cfg.PG.URL,
		postgres.MaxPoolSize(cfg.PG.PoolMax),
		postgres.ConnAttempts(cfg.PG.ConnAttempts),
		postgres.ConnTimeout(cfg.PG.ConnTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres.New: %w", err)
	}

	storage, err := pgstorage.New(pg)
	if err != nil {
		pg.Close()
		return nil, nil, fmt.Errorf("pgstorage.New: %w", err)
	}
	log.Info("PostgreSQL connected, migrations applied")

	return storage, storage.Close, nil
}

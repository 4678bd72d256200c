package bootstrap

import (
	"os"

	"github.com/kedr891/wishlist-tracker/config"
	"github.com/kedr891/wishlist-tracker/pkg/logger"
)

func InitLogger(cfg *config.Config) *logger.Logger {
	return logger.NewWithWriter(cfg.Log.Level, logger.Format(cfg.Log.Format), os.Stdout).
		With("service", cfg.App.Name)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kedr891/wishlist-tracker/config"
	"github.com/kedr891/wishlist-tracker/internal/app"
)

//go:generate go tool swag init -g cmd/api/main.go -d ../../ -o ../../docs --outputTypes go,json

// @title Wishlist Tracker API
// @version 1.0
// @description Wishlists with price tracking, coupons and notifications.
// @BasePath /
func main() {
	_ = godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunAPI(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

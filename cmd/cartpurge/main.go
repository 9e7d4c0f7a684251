// Command cartpurge deletes guest carts whose expiry has passed. It is meant to run
// from a scheduler, e.g. once an hour.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/atelier-cart/internal/cache"
	"github.com/nikolayk812/atelier-cart/internal/config"
	"github.com/nikolayk812/atelier-cart/internal/logger"
	"github.com/nikolayk812/atelier-cart/internal/repository"
	"github.com/nikolayk812/atelier-cart/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config.Load: %v", err)
	}

	lg, err := logger.New(logger.Options{Service: "cartpurge", Env: cfg.AppEnv, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("logger.New: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Error("cartpurge failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, lg *zap.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer func() { _ = rdb.Close() }()

	svc := service.NewCartService(repository.NewCart(pool), cache.NewRedisCache(rdb), service.CartConfig{
		MaxCartItems: cfg.MaxCartItems,
		GuestCartTTL: cfg.GuestCartTTL,
		SummaryTTL:   cfg.SummaryCacheTTL,
	}, lg)

	purged, err := svc.PurgeExpired(ctx)
	if err != nil {
		return err
	}

	lg.Info("expired guest carts purged", zap.Int64("purged", purged))
	return nil
}

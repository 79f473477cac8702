// Package main is the entry point for the kardex background worker.
// It relays committed storefront-sync events from the outbox.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kardex/internal/app"
	"kardex/internal/infrastructure/storage/postgres"
	"kardex/internal/infrastructure/storefront"
	"kardex/pkg/logger"
)

func main() {
	cfg, err := app.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting kardex worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	client := storefront.NewHTTPClient(cfg.StorefrontURL, cfg.StorefrontTimeout)
	handler := storefront.NewOutboxHandler(client)
	relay := postgres.NewOutboxRelay(pool.Unwrap(), cfg.OutboxBatchSize, handler)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down worker...")
		cancel()
	}()

	ticker := time.NewTicker(cfg.OutboxPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopped")
			return
		case <-ticker.C:
			processed, err := relay.ProcessBatch(ctx)
			if err != nil {
				log.Errorw("outbox batch failed", "error", err)
				continue
			}
			if processed > 0 {
				log.Infow("outbox batch processed", "count", processed)
			}
		}
	}
}

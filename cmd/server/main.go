// Package main is the entry point for the kardex costing API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kardex/internal/app"
	"kardex/internal/core/sequence"
	"kardex/internal/domain/documents/purchase"
	"kardex/internal/domain/reports"
	v1 "kardex/internal/infrastructure/http/v1"
	"kardex/internal/infrastructure/storage/postgres"
	"kardex/internal/infrastructure/storage/postgres/catalog_repo"
	"kardex/internal/infrastructure/storage/postgres/document_repo"
	"kardex/internal/infrastructure/storage/postgres/register_repo"
	"kardex/internal/infrastructure/storage/postgres/report_repo"
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

	ctx := context.Background()
	log.Info("starting kardex server")

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	var allocator sequence.Allocator = postgres.NewSequenceStore(txManager)
	articleRepo := catalog_repo.NewArticleRepo(txManager)
	purchaseRepo := document_repo.NewPurchaseRepo(txManager)
	historyRepo := register_repo.NewCostHistoryRepo(txManager)
	valuationRepo := report_repo.NewValuationRepo(txManager)
	outbox := postgres.NewOutboxPublisher(txManager)

	changeLog, err := postgres.NewChangeLog(txManager)
	if err != nil {
		log.Fatalw("failed to initialize change log", "error", err)
	}

	purchaseService := purchase.NewService(
		purchaseRepo,
		articleRepo,
		articleRepo,
		articleRepo,
		historyRepo,
		allocator,
		txManager,
		outbox,
		changeLog,
	)
	reportService := reports.NewService(valuationRepo)

	router := v1.NewRouter(v1.RouterConfig{
		Pool:            pool,
		Logger:          log,
		PurchaseService: purchaseService,
		ReportService:   reportService,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

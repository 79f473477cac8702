// Package main provides a CLI tool for provisioning counters and demo data.
// Counter rows must exist before the server can allocate ids or numbers.
package main

import (
	"context"
	"fmt"
	"os"

	"kardex/internal/app"
	"kardex/internal/core/sequence"
	"kardex/internal/domain/documents/purchase"
	"kardex/internal/infrastructure/storage/postgres"
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
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	inserter := postgres.NewBatchInserter(txManager)

	err = txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := seedCounters(ctx, txManager); err != nil {
			return err
		}
		return seedArticles(ctx, inserter)
	})
	if err != nil {
		log.Fatalw("seeding failed", "error", err)
	}

	log.Info("seeding complete")
}

// seedCounters provisions the record counter and the purchase document type.
// Existing rows are left untouched so reseeding never resets a sequence.
func seedCounters(ctx context.Context, txManager *postgres.TxManager) error {
	querier := txManager.GetQuerier(ctx)

	if _, err := querier.Exec(ctx, `
		INSERT INTO seq_counters (name, value)
		VALUES ($1, 0)
		ON CONFLICT (name) DO NOTHING
	`, sequence.CounterRecords); err != nil {
		return fmt.Errorf("seed record counter: %w", err)
	}

	if _, err := querier.Exec(ctx, `
		INSERT INTO seq_document_types (doc_type, prefix, pad_width, value)
		VALUES ($1, 'COM', 6, 0)
		ON CONFLICT (doc_type) DO NOTHING
	`, purchase.DocTypePurchase); err != nil {
		return fmt.Errorf("seed document type: %w", err)
	}

	return nil
}

// seedArticles loads a demo catalog via the COPY protocol. All articles start
// uncosted: cost is established by the first registered purchase.
func seedArticles(ctx context.Context, inserter *postgres.BatchInserter) error {
	rows := [][]any{
		{"ART-0001", int64(1)},
		{"ART-0002", int64(1)},
		{"ART-0003", int64(2)},
		{"ART-0004", int64(2)},
		{"ART-0005", int64(3)},
	}

	n, err := inserter.CopyFromSlice(ctx, "cat_articles", []string{"article_ref", "subcategory_id"}, rows)
	if err != nil {
		return fmt.Errorf("seed articles: %w", err)
	}
	logger.Info(ctx, "demo articles loaded", "count", n)
	return nil
}

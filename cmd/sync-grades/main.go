package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/config"
	"github.com/jafarshop/gradeoverlay/internal/domain"
	"github.com/jafarshop/gradeoverlay/internal/repository/postgres"
	"github.com/jafarshop/gradeoverlay/internal/repository/redisstore"
	"github.com/jafarshop/gradeoverlay/internal/service"
	"github.com/jafarshop/gradeoverlay/internal/shopify"
)

func main() {
	restart := flag.Bool("restart", false, "discard the saved checkpoint and start from offset 0")
	maxBatches := flag.Int("max-batches", 0, "stop after this many batches (0 runs until done)")
	limit := flag.Int("limit", 0, "rows per batch (default SYNC_BATCH_LIMIT)")
	flag.Parse()

	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *limit > 0 {
		cfg.Sync.BatchLimit = *limit
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, cfg.Database, logger)
	if cfg.Redis.URL != "" {
		client, err := redisstore.Attach(ctx, repos, cfg.Redis.URL, cfg.Query.CacheTTL, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to redis: %v\n", err)
			os.Exit(1)
		}
		defer client.Close()
	} else {
		fmt.Println("REDIS_URL not set: the checkpoint lives only as long as this process")
	}

	catalog := shopify.NewCatalog(shopify.NewClient(cfg.Shopify, logger), cfg.Shopify, logger)
	runner := service.NewSyncService(repos.Source, repos.Mapping, catalog, logger)
	driver := service.NewSyncDriver(runner, repos.Checkpoints, cfg.Sync.BatchLimit, logger)

	if *limit > 0 && !*restart {
		if saved, err := driver.Checkpoint(ctx); err == nil && saved != nil && !saved.Done && saved.Limit != *limit {
			fmt.Printf("Resuming at offset %d with the saved limit %d; --limit %d applies only with --restart.\n",
				saved.Offset, saved.Limit, *limit)
		}
	}

	cp, err := driver.Run(ctx, service.RunOptions{
		Restart:    *restart,
		MaxBatches: *maxBatches,
		OnBatch: func(res *domain.BatchResult) {
			s := res.Summary
			fmt.Printf("batch %d: rows=%d handles=%d updated=%d inserted=%d missing=%d next=%d\n",
				res.BatchID, s.SourceRows, s.UniqueHandles, s.UpdatedHandles, s.InsertedProducts, s.MissingInShopify, s.NextOffset)
		},
	})
	if err != nil {
		logger.Error("Grade sync stopped", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Sync stopped: %v\n", err)
		if cp != nil {
			printTotals(cp)
			fmt.Fprintf(os.Stderr, "Re-run to resume from offset %d.\n", cp.Offset)
		}
		os.Exit(1)
	}
	printTotals(cp)
	if !cp.Done {
		fmt.Printf("Paused at offset %d; run again to continue.\n", cp.Offset)
	}
}

func printTotals(cp *domain.Checkpoint) {
	t := cp.RunTotals
	fmt.Println("")
	fmt.Printf("Batches:            %d\n", t.Batches)
	fmt.Printf("Unique handles:     %d\n", t.UniqueHandles)
	fmt.Printf("Updated handles:    %d (%d rows)\n", t.UpdatedHandles, t.UpdatedRows)
	fmt.Printf("Inserted products:  %d (%d rows)\n", t.InsertedProducts, t.InsertedRows)
	fmt.Printf("Missing in Shopify: %d\n", t.MissingInShopify)
	fmt.Printf("Done:               %t\n", cp.Done)
}

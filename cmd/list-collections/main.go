package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/config"
	"github.com/jafarshop/gradeoverlay/internal/shopify"
)

func main() {
	withOrder := flag.String("order", "", "also print the ordered product handles of this collection handle")
	flag.Parse()

	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	catalog := shopify.NewCatalog(shopify.NewClient(cfg.Shopify, logger), cfg.Shopify, logger)
	ctx := context.Background()

	fmt.Println("Fetching all collections from Shopify...")
	collections, err := catalog.ListCollectionsOrdered(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query collections: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nFound %d collection(s)\n\n", len(collections))
	fmt.Println(strings.Repeat("─", 80))
	for i, coll := range collections {
		fmt.Printf("%d. %s\n", i+1, coll.Title)
		fmt.Printf("   Handle: %s\n", coll.Handle)
		fmt.Printf("   ID: %s\n", coll.ID)
	}

	if *withOrder != "" {
		handles := catalog.ListCollectionProductHandlesOrdered(ctx, *withOrder)
		fmt.Printf("\nProducts of %s in storefront order (%d):\n", *withOrder, len(handles))
		for i, h := range handles {
			fmt.Printf("%4d  %s\n", i+1, h)
		}
	}
}

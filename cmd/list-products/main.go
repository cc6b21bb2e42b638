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
	pages := flag.Int("pages", 1, "number of product pages to print (0 prints all)")
	after := flag.String("after", "", "start after this cursor")
	handle := flag.String("handle", "", "print one product with all of its collections instead")
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

	if *handle != "" {
		printProduct(ctx, catalog, *handle)
		return
	}

	cursor := *after
	total := 0
	for page := 1; *pages == 0 || page <= *pages; page++ {
		res, err := catalog.ListProductsPage(ctx, cursor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to query products: %v\n", err)
			os.Exit(1)
		}
		for _, p := range res.Items {
			total++
			fmt.Printf("%d. %s (%s)\n", total, p.Title, p.Handle)
			fmt.Printf("   Grade: %s\n", orDash(p.Grade))
			fmt.Printf("   Size: %s  Type: %s  Range: %s\n", orDash(strings.Join(p.Size, ",")), orDash(p.SizeType), orDash(p.SizeRange))
			if p.Collection != nil {
				fmt.Printf("   Collection: %s (%s)\n", p.Collection.Title, p.Collection.Handle)
			}
		}
		if !res.HasNextPage {
			fmt.Printf("\nListed %d product(s); no more pages.\n", total)
			return
		}
		cursor = res.EndCursor
	}
	fmt.Printf("\nListed %d product(s). Continue with --after %s\n", total, cursor)
}

func printProduct(ctx context.Context, catalog *shopify.Catalog, handle string) {
	p, err := catalog.GetProductByHandle(ctx, handle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query product: %v\n", err)
		os.Exit(1)
	}
	if p == nil {
		fmt.Printf("No product with handle %q\n", handle)
		os.Exit(1)
	}
	fmt.Printf("%s (%s)\n", p.Title, p.Handle)
	fmt.Printf("ID: %s\n", p.ID)
	fmt.Printf("Size: %s\n", orDash(strings.Join(p.OptionValues("size"), ",")))
	fmt.Printf("Collections (%d):\n", len(p.Collections))
	for _, c := range p.Collections {
		fmt.Printf("  - %s (%s) %s\n", c.Title, c.Handle, c.ID)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

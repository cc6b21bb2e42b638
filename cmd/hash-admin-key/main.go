package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jafarshop/gradeoverlay/internal/api/middleware"
)

func main() {
	keyFlag := flag.String("key", "", "operator key to hash (save it; it cannot be recovered from the hash)")
	flag.Parse()

	key := *keyFlag
	if key == "" && flag.NArg() >= 1 {
		key = flag.Arg(0)
	}
	// The server trims the header value before comparing
	key = strings.TrimSpace(key)
	if key == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run cmd/hash-admin-key/main.go --key \"operator-key\"")
		os.Exit(1)
	}

	hash, err := middleware.HashAPIKey(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Add this to the server environment:")
	fmt.Printf("ADMIN_API_KEY_HASH=%s\n", hash)
	fmt.Printf("\nSend the key as header %s or as \"Authorization: Bearer <key>\".\n", middleware.AdminKeyHeader)
}

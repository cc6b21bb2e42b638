package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/config"
	"github.com/jafarshop/gradeoverlay/internal/repository/postgres"
)

func main() {
	dir := flag.String("dir", "migrations", "directory holding *.up.sql files")
	createDB := flag.Bool("create-db", true, "create the target database when it does not exist")
	flag.Parse()

	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if *createDB {
		if err := ensureDatabase(dbCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to prepare database: %v\n", err)
			os.Exit(1)
		}
	}

	db, err := postgres.NewConnection(dbCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.RunMigrations(context.Background(), db, *dir, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully!")
}

// ensureDatabase connects to the maintenance database and creates cfg.DBName when missing
func ensureDatabase(cfg config.DatabaseConfig) error {
	maintenance := cfg
	maintenance.DBName = "postgres"

	db, err := sql.Open("postgres", postgres.DSN(maintenance))
	if err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	defer db.Close()

	var exists bool
	err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}
	if exists {
		return nil
	}

	fmt.Printf("Database '%s' does not exist. Creating...\n", cfg.DBName)
	if _, err := db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(cfg.DBName)); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	return nil
}

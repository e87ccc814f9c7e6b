package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/vncsmyrnk/patients/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/patients/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("a direction is required: up or down.")
	}
	direction := os.Args[1]

	cfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch direction {
	case "up":
		applied, err := postgres.Migrate(ctx, db)
		if err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		if len(applied) == 0 {
			fmt.Println("Database is already up to date.")
			return
		}
		fmt.Printf("Applied migrations: %v\n", applied)
	case "down":
		version, err := postgres.Rollback(ctx, db)
		if err != nil {
			log.Fatalf("Failed to roll back migration: %v", err)
		}
		fmt.Printf("Rolled back migration %d.\n", version)
	default:
		log.Fatalf("unknown direction %q, expected up or down", direction)
	}
}

// apply-schema applies the engine schema to the database in DATABASE_URL.
// The schema is idempotent; re-running it on an existing database is safe.
//
// Usage: go run ./cmd/apply-schema [file]
package main

import (
	"context"
	"fmt"
	"os"

	"beet-backend/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		fmt.Printf("Failed to connect to DB: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	file := "migrations/001_schema.sql"
	if len(os.Args) > 1 {
		file = os.Args[1]
	}

	sqlFile, err := os.ReadFile(file)
	if err != nil {
		fmt.Printf("Failed to read sql file: %v\n", err)
		os.Exit(1)
	}

	if _, err := pool.Exec(ctx, string(sqlFile)); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Migration successful.")
}

// seed-units is a one-shot tool to load the canonical measurement unit
// catalog. Units are reference data; re-running upserts by name and leaves
// existing ids untouched, so nothing referencing a unit breaks.
//
// Usage: go run ./cmd/seed-units
package main

import (
	"context"
	"log"

	"beet-backend/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Upserting units...")
	_, err = tx.Exec(ctx, `
		INSERT INTO units (name, abbreviation, type, is_base) VALUES
		    ('Gram',       'g',   'MASS',   true),
		    ('Kilogram',   'kg',  'MASS',   false),
		    ('Milligram',  'mg',  'MASS',   false),
		    ('Pound',      'lb',  'MASS',   false),
		    ('Milliliter', 'ml',  'VOLUME', true),
		    ('Liter',      'L',   'VOLUME', false),
		    ('Gallon',     'gal', 'VOLUME', false)
		ON CONFLICT (name) DO UPDATE
		  SET abbreviation = EXCLUDED.abbreviation,
		      type         = EXCLUDED.type,
		      is_base      = EXCLUDED.is_base;
	`)
	if err != nil {
		log.Fatalf("Failed to upsert units: %v", err)
	}

	log.Println("Upserting conversion factors...")
	_, err = tx.Exec(ctx, `
		INSERT INTO unit_conversions (from_unit_id, to_unit_id, factor)
		SELECT f.id, t.id, v.factor
		FROM (VALUES
		    ('Kilogram',  'Gram',       1000::numeric),
		    ('Milligram', 'Gram',       0.001),
		    ('Pound',     'Gram',       453.592),
		    ('Liter',     'Milliliter', 1000),
		    ('Gallon',    'Milliliter', 3785.41)
		) AS v(from_name, to_name, factor)
		JOIN units f ON f.name = v.from_name
		JOIN units t ON t.name = v.to_name
		ON CONFLICT (from_unit_id, to_unit_id) DO UPDATE
		  SET factor = EXCLUDED.factor;
	`)
	if err != nil {
		log.Fatalf("Failed to upsert conversions: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	log.Println("Unit catalog seeded.")
}

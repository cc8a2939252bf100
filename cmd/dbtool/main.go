package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"trip-scheduler-service/internal/adapters/repositories"
	"trip-scheduler-service/internal/config"
	"trip-scheduler-service/internal/platform/db"
)

// dbtool initializes the SQLite schema and loads the location catalog and
// trips from a JSON seed file.
func main() {
	cfg := config.Load()

	dbPath := flag.String("db", cfg.SQLitePath, "path to the SQLite database")
	seedPath := flag.String("seed", cfg.SeedPath, "path to the JSON seed file")
	schemaOnly := flag.Bool("schema-only", false, "create tables without seeding")
	flag.Parse()

	conn, err := db.OpenSQLite(*dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	initAndSeed(context.Background(), conn, *seedPath, *schemaOnly)
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string, schemaOnly bool) {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	if schemaOnly {
		return
	}

	log.Println("Seeding database...")
	res, err := repositories.SeedFromJSON(ctx, conn, seedPath)
	if err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Printf("Seeding complete. locations=%d trips=%d skipped=%d", res.Locations, res.Trips, res.Skipped)
}
